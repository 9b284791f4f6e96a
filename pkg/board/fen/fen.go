// Package fen reads and writes chess positions in Forsyth-Edwards Notation.
package fen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/castellan/core/pkg/board"
)

// Initial is the FEN of the standard starting position.
const Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Decode parses a six-field FEN record into a Position. Unlike board.NewPosition, every field of
// the returned position -- side to move, castling rights, en passant target, halfmove clock and
// fullmove number -- comes directly out of the string.
func Decode(s string) (*board.Position, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 6 {
		return nil, fmt.Errorf("invalid FEN %q: want 6 fields, got %d", s, len(fields))
	}

	pieces, err := parsePlacement(fields[0])
	if err != nil {
		return nil, fmt.Errorf("invalid FEN %q: %w", s, err)
	}

	whiteToMove, ok := parseColor(fields[1])
	if !ok {
		return nil, fmt.Errorf("invalid FEN %q: bad active color %q", s, fields[1])
	}

	rights, ok := parseCastling(fields[2])
	if !ok {
		return nil, fmt.Errorf("invalid FEN %q: bad castling field %q", s, fields[2])
	}

	var ep board.Square
	if fields[3] != "-" {
		sq, err := board.ParseSquareStr(fields[3])
		if err != nil {
			return nil, fmt.Errorf("invalid FEN %q: bad en passant field: %w", s, err)
		}
		ep = sq
	}

	staticPlies, err := strconv.Atoi(fields[4])
	if err != nil || staticPlies < 0 {
		return nil, fmt.Errorf("invalid FEN %q: bad halfmove clock %q", s, fields[4])
	}

	totalPlies, err := strconv.Atoi(fields[5])
	if err != nil || totalPlies < 0 {
		return nil, fmt.Errorf("invalid FEN %q: bad fullmove number %q", s, fields[5])
	}
	// Store in half-move units, matching Position.TotalPlies; fullmove 1 before black has moved
	// is ply 0.
	ply := (totalPlies - 1) * 2
	if !whiteToMove {
		ply++
	}
	if ply < 0 {
		ply = 0
	}

	pos, err := board.NewPosition(pieces, rights, ep, whiteToMove, staticPlies, ply)
	if err != nil {
		return nil, fmt.Errorf("invalid FEN %q: %w", s, err)
	}
	return pos, nil
}

func parsePlacement(field string) ([]board.Placement, error) {
	var pieces []board.Placement

	sq := board.A8
	for _, r := range field {
		switch {
		case r == '/':
			// Rank separator; purely cosmetic.

		case unicode.IsDigit(r):
			sq -= board.Square(r - '0')

		case unicode.IsLetter(r):
			p, ok := board.ParsePieceKind(r)
			if !ok {
				return nil, fmt.Errorf("invalid piece %q", r)
			}
			color := board.Black
			if unicode.IsUpper(r) {
				color = board.White
			}
			pieces = append(pieces, board.Placement{Square: sq, Color: color, Piece: p})
			sq--

		default:
			return nil, fmt.Errorf("invalid character %q", r)
		}
	}
	if sq+1 != board.H1 {
		return nil, fmt.Errorf("wrong number of squares described")
	}
	return pieces, nil
}

func parseColor(field string) (whiteToMove bool, ok bool) {
	switch field {
	case "w":
		return true, true
	case "b":
		return false, true
	default:
		return false, false
	}
}

func parseCastling(field string) (board.CastlingRight, bool) {
	var ret board.CastlingRight
	if field == "-" {
		return ret, true
	}
	for _, r := range field {
		switch r {
		case 'K':
			ret |= board.WhiteKingSideCastle
		case 'Q':
			ret |= board.WhiteQueenSideCastle
		case 'k':
			ret |= board.BlackKingSideCastle
		case 'q':
			ret |= board.BlackQueenSideCastle
		default:
			return 0, false
		}
	}
	return ret, true
}

// Encode renders a position as a six-field FEN record.
func Encode(pos *board.Position) string {
	var sb strings.Builder
	for r := board.Rank8; ; r-- {
		blanks := 0
		for f := board.FileA; ; f-- {
			if color, piece, ok := pos.Square(board.NewSquare(f, r)); ok {
				if blanks > 0 {
					sb.WriteString(strconv.Itoa(blanks))
					blanks = 0
				}
				sb.WriteRune(printPiece(color, piece))
			} else {
				blanks++
			}
			if f == board.FileH {
				break
			}
		}
		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if r == board.Rank1 {
			break
		}
		sb.WriteString("/")
	}

	turn := "b"
	if pos.WhiteToMove() {
		turn = "w"
	}

	ep := "-"
	if sq, ok := pos.EnPassant(); ok {
		ep = sq.String()
	}

	fullmoves := pos.TotalPlies()/2 + 1

	return fmt.Sprintf("%s %s %v %s %d %d", sb.String(), turn, pos.Castling(), ep, pos.StaticPlies(), fullmoves)
}

func printPiece(c board.Color, p board.PieceKind) rune {
	r := []rune(p.String())[0]
	if c == board.White {
		return unicode.ToUpper(r)
	}
	return r
}
