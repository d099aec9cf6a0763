package wire

import (
	"fmt"
	"math/rand"
	"strings"
)

// TokenLength is the number of symbols in a RoomToken.
const TokenLength = 10

// alphabetSize is the number of distinct symbols a token digit is drawn
// from.
const alphabetSize = 116

// tokenAlphabet is the ordered set of symbols a RoomToken digit encodes to.
// The original server drew this alphabet from a public-domain liturgical
// text; this implementation substitutes 116 distinct box-drawing and
// geometric Unicode symbols instead, preserving only the bijection and
// length contract (SPEC_FULL.md, supplemented feature 2).
var tokenAlphabet = [alphabetSize]rune{
	'─', '━', '│', '┃', '┄', '┅', '┆', '┇', '┈', '┉',
	'┊', '┋', '┌', '┍', '┎', '┏', '┐', '┑', '┒', '┓',
	'└', '┕', '┖', '┗', '┘', '┙', '┚', '┛', '├', '┝',
	'┞', '┟', '┠', '┡', '┢', '┣', '┤', '┥', '┦', '┧',
	'┨', '┩', '┪', '┫', '┬', '┭', '┮', '┯', '┰', '┱',
	'┲', '┳', '┴', '┵', '┶', '┷', '┸', '┹', '┺', '┻',
	'┼', '┽', '┾', '┿', '╀', '╁', '╂', '╃', '╄', '╅',
	'╆', '╇', '╈', '╉', '╊', '╋', '╌', '╍', '╎', '╏',
	'═', '║', '╒', '╓', '╔', '╕', '╖', '╗', '╘', '╙',
	'╚', '╛', '╜', '╝', '╞', '╟', '╠', '╡', '╢', '╣',
	'╤', '╥', '╦', '╧', '╨', '╩', '╪', '╫', '╬', '▲',
	'▼', '◆', '●', '■', '▶', '◀',
}

var runeToCode map[rune]byte

func init() {
	runeToCode = make(map[rune]byte, alphabetSize)
	for code, r := range tokenAlphabet {
		runeToCode[r] = byte(code)
	}
}

// RoomToken is the ten-digit code a room's creator shares with the joiner,
// grounded on original_source's RoomToken bijection over a fixed alphabet.
type RoomToken [TokenLength]byte

// ErrBadTokenLength is returned by DecodeToken when the input has the wrong
// number of symbols.
var ErrBadTokenLength = fmt.Errorf("wire: token must have exactly %d symbols", TokenLength)

// ErrBadTokenChar is returned by DecodeToken when a symbol is outside the
// token alphabet.
var ErrBadTokenChar = fmt.Errorf("wire: token contains a symbol outside the token alphabet")

// RandomToken draws a new uniformly random RoomToken.
func RandomToken(rng *rand.Rand) RoomToken {
	var tok RoomToken
	for i := range tok {
		tok[i] = byte(rng.Intn(alphabetSize))
	}
	return tok
}

// String renders the token as its ten-symbol code.
func (t RoomToken) String() string {
	var b strings.Builder
	b.Grow(TokenLength * 3)
	for _, code := range t {
		b.WriteRune(tokenAlphabet[code])
	}
	return b.String()
}

// DecodeToken parses a ten-symbol code back into a RoomToken.
func DecodeToken(code string) (RoomToken, error) {
	var tok RoomToken
	i := 0
	for _, r := range code {
		if i >= TokenLength {
			return RoomToken{}, ErrBadTokenLength
		}
		c, ok := runeToCode[r]
		if !ok {
			return RoomToken{}, ErrBadTokenChar
		}
		tok[i] = c
		i++
	}
	if i < TokenLength {
		return RoomToken{}, ErrBadTokenLength
	}
	return tok, nil
}
