// Package board implements the 15x15 gomoku grid: placement, clearing, and
// win/draw detection. It has no notion of turns, players, or the network —
// those live in internal/mesh.
package board

import "fmt"

// Size is the fixed board dimension (15x15).
const Size = 15

// Stone is the contents of a single cell. The zero value is intentionally
// invalid (Black is 1, White 2, Empty 3) so that a zeroed Board never looks legal on the wire;
// see internal/wire for the on-the-wire mapping.
type Stone int

const (
	Black Stone = iota + 1
	White
	Empty
)

func (s Stone) String() string {
	switch s {
	case Black:
		return "black"
	case White:
		return "white"
	case Empty:
		return "empty"
	default:
		return "invalid"
	}
}

// Opponent returns the other color. Calling it on Empty panics; it is only
// meaningful for Black/White.
func (s Stone) Opponent() Stone {
	switch s {
	case Black:
		return White
	case White:
		return Black
	default:
		panic("board: Opponent called on non-color stone")
	}
}

// State is the cached, derived verdict of a board's contents.
type State int

const (
	Unfinished State = iota
	BlackWins
	WhiteWins
	Draw
	// Impossible marks a grid where both colors simultaneously hold a
	// five-in-a-row. It is a sentinel emitted to callers, never silently
	// corrected.
	Impossible
)

func (s State) String() string {
	switch s {
	case Unfinished:
		return "unfinished"
	case BlackWins:
		return "black_wins"
	case WhiteWins:
		return "white_wins"
	case Draw:
		return "draw"
	case Impossible:
		return "impossible"
	default:
		return "invalid"
	}
}

// Move is one (x, y, color) triple in a game's history.
type Move struct {
	X, Y  int
	Color Stone
}

// Board is a mutable 15x15 grid plus the derived state the gomoku server
// recomputes after every mutation.
type Board struct {
	grid  [Size][Size]Stone
	empty int
	state State
}

// New returns an empty board.
func New() *Board {
	b := &Board{empty: Size * Size}
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			b.grid[y][x] = Empty
		}
	}
	b.state = Unfinished
	return b
}

// InRange reports whether (x, y) addresses a cell on the board.
func InRange(x, y int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size
}

var (
	// ErrOutOfRange is returned by Play/Clear for coordinates outside the grid.
	ErrOutOfRange = fmt.Errorf("board: coordinate out of range")
	// ErrOccupied is returned by Play when the target cell already holds a stone.
	ErrOccupied = fmt.Errorf("board: cell already occupied")
	// ErrAlreadyEmpty is returned by Clear when the target cell has no stone.
	ErrAlreadyEmpty = fmt.Errorf("board: cell already empty")
)

// Play places color at (x, y). On success it recomputes and caches State.
func (b *Board) Play(x, y int, color Stone) error {
	if !InRange(x, y) {
		return ErrOutOfRange
	}
	if b.grid[y][x] != Empty {
		return ErrOccupied
	}
	b.grid[y][x] = color
	b.empty--
	b.recompute()
	return nil
}

// Clear empties (x, y), the inverse of Play. On success it recomputes State.
func (b *Board) Clear(x, y int) error {
	if !InRange(x, y) {
		return ErrOutOfRange
	}
	if b.grid[y][x] == Empty {
		return ErrAlreadyEmpty
	}
	b.grid[y][x] = Empty
	b.empty++
	b.recompute()
	return nil
}

// Get returns the stone at (x, y); callers must check InRange themselves,
// this is a pure accessor used only with already-validated coordinates.
func (b *Board) Get(x, y int) Stone {
	return b.grid[y][x]
}

// Grid returns a copy of the full 15x15 grid.
func (b *Board) Grid() [Size][Size]Stone {
	return b.grid
}

// State returns the cached derived board state.
func (b *Board) State() State {
	return b.state
}

// EmptyCount returns the number of unoccupied cells.
func (b *Board) EmptyCount() int {
	return b.empty
}

// directions enumerates the four line orientations scanned for runs:
// horizontal, vertical, and the two diagonals.
var directions = [4][2]int{
	{1, 0},
	{0, 1},
	{1, 1},
	{1, -1},
}

// recompute scans all rows, columns, and diagonals of length >= 5 for the
// longest consecutive run of each color, then maps (blackMax, whiteMax,
// emptyCount) to a State per spec.md 4.1.
func (b *Board) recompute() {
	blackMax, whiteMax := 0, 0
	for _, d := range directions {
		bm, wm := b.longestRuns(d[0], d[1])
		if bm > blackMax {
			blackMax = bm
		}
		if wm > whiteMax {
			whiteMax = wm
		}
	}

	blackWon := blackMax >= 5
	whiteWon := whiteMax >= 5
	switch {
	case blackWon && whiteWon:
		b.state = Impossible
	case blackWon:
		b.state = BlackWins
	case whiteWon:
		b.state = WhiteWins
	case b.empty == 0:
		b.state = Draw
	default:
		b.state = Unfinished
	}
}

// longestRuns scans every line in direction (dx, dy) of length >= 5 and
// returns the longest consecutive run of Black and of White seen anywhere.
func (b *Board) longestRuns(dx, dy int) (blackMax, whiteMax int) {
	for _, start := range lineStarts(dx, dy) {
		x, y := start[0], start[1]
		runColor := Empty
		run := 0
		for InRange(x, y) {
			c := b.grid[y][x]
			if c == runColor && c != Empty {
				run++
			} else {
				run = 1
				runColor = c
			}
			if runColor == Black && run > blackMax {
				blackMax = run
			} else if runColor == White && run > whiteMax {
				whiteMax = run
			}
			x += dx
			y += dy
		}
	}
	return blackMax, whiteMax
}

// lineStarts enumerates the starting cell of every maximal line in direction
// (dx, dy), restricted to lines of length >= 5 (the minimum to hold a
// five-in-a-row). For horizontal/vertical this is one line per row/column;
// for the two diagonal orientations it is the 21 diagonals of length >= 5.
func lineStarts(dx, dy int) [][2]int {
	var starts [][2]int
	switch {
	case dx == 1 && dy == 0: // horizontal: one line per row
		for y := 0; y < Size; y++ {
			starts = append(starts, [2]int{0, y})
		}
	case dx == 0 && dy == 1: // vertical: one line per column
		for x := 0; x < Size; x++ {
			starts = append(starts, [2]int{x, 0})
		}
	case dx == 1 && dy == 1: // diagonal \: start along left column and top row
		for y := Size - 1; y >= 0; y-- {
			if Size-y >= 5 {
				starts = append(starts, [2]int{0, y})
			}
		}
		for x := 1; x < Size; x++ {
			if Size-x >= 5 {
				starts = append(starts, [2]int{x, 0})
			}
		}
	case dx == 1 && dy == -1: // diagonal /: start along left column and bottom row
		for y := 0; y < Size; y++ {
			if y+1 >= 5 {
				starts = append(starts, [2]int{0, y})
			}
		}
		for x := 1; x < Size; x++ {
			if Size-x >= 5 {
				starts = append(starts, [2]int{x, Size - 1})
			}
		}
	}
	return starts
}
