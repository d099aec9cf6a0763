package wire

import "github.com/wuziqi-io/gomoku-server/internal/board"

// CompressedBoardSize is the on-wire size of a packed 15x15 board: 15 rows,
// each packed into 4 bytes of 2-bit cells (the 16th cell slot per row is
// padding and ignored), per spec.md section 4.3.
const CompressedBoardSize = board.Size * 4

const (
	emptyBitFlag = 0b0000_0010
	blackBitFlag = 0b0000_0001
	// whiteBitFlag is implicitly 0: neither the empty nor black flag set.
)

// CompressBoard packs a 15x15 grid into 60 bytes.
func CompressBoard(grid [board.Size][board.Size]board.Stone) [CompressedBoardSize]byte {
	var out [CompressedBoardSize]byte
	for y := 0; y < board.Size; y++ {
		row := grid[y]
		base := y * 4
		out[base+0] = packFour(row[0], row[1], row[2], row[3])
		out[base+1] = packFour(row[4], row[5], row[6], row[7])
		out[base+2] = packFour(row[8], row[9], row[10], row[11])
		out[base+3] = packFour(row[12], row[13], row[14], board.Empty)
	}
	return out
}

// DecompressBoard is the inverse of CompressBoard.
func DecompressBoard(data [CompressedBoardSize]byte) [board.Size][board.Size]board.Stone {
	var grid [board.Size][board.Size]board.Stone
	for y := 0; y < board.Size; y++ {
		base := y * 4
		p0, p1, p2, p3 := unpackFour(data[base+0])
		p4, p5, p6, p7 := unpackFour(data[base+1])
		p8, p9, p10, p11 := unpackFour(data[base+2])
		p12, p13, p14, _ := unpackFour(data[base+3])
		grid[y] = [board.Size]board.Stone{
			p0, p1, p2, p3, p4, p5, p6, p7, p8, p9, p10, p11, p12, p13, p14,
		}
	}
	return grid
}

func packFour(s1, s2, s3, s4 board.Stone) byte {
	return stoneBits(s1) | stoneBits(s2)<<2 | stoneBits(s3)<<4 | stoneBits(s4)<<6
}

func unpackFour(b byte) (board.Stone, board.Stone, board.Stone, board.Stone) {
	return unpackBits(b, 0), unpackBits(b, 2), unpackBits(b, 4), unpackBits(b, 6)
}

func stoneBits(s board.Stone) byte {
	switch s {
	case board.Empty:
		return emptyBitFlag
	case board.Black:
		return blackBitFlag
	case board.White:
		return 0
	default:
		panic("wire: invalid stone in grid")
	}
}

// unpackBits decodes the two bits of a cell starting at shift: bit1 is the
// empty flag, bit0 is the black flag. Empty takes priority if both flags are
// (illegally) set, then Black, else White — this decoder never errors, it
// always yields a legal Stone even for corrupt input, per spec.md 4.3.
func unpackBits(b byte, shift uint) board.Stone {
	isEmpty := (emptyBitFlag<<shift)&b != 0
	isBlack := (blackBitFlag<<shift)&b != 0
	switch {
	case isEmpty:
		return board.Empty
	case isBlack:
		return board.Black
	default:
		return board.White
	}
}
