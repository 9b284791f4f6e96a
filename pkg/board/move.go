package board

import "fmt"

// MoveType tags the semantics of a Move. Exactly one tag applies per move; the no-progress
// (halfmove) clock resets for every tag except MoveQuiet and the two castling tags.
type MoveType uint32

const (
	MoveQuiet MoveType = iota
	MoveCapture
	MovePawnPush
	MovePawnDouble
	MoveEnPassant
	MoveCastleKingSide
	MoveCastleQueenSide
	MovePromotion
)

func (t MoveType) String() string {
	switch t {
	case MoveQuiet:
		return "quiet"
	case MoveCapture:
		return "capture"
	case MovePawnPush:
		return "push"
	case MovePawnDouble:
		return "double-push"
	case MoveEnPassant:
		return "en-passant"
	case MoveCastleKingSide:
		return "O-O"
	case MoveCastleQueenSide:
		return "O-O-O"
	case MovePromotion:
		return "promotion"
	default:
		return "?"
	}
}

// Move is a packed 32-bit encoding of a pseudo-legal move: source square, target square, moved
// piece kind, captured piece kind (NoPiece if none), promotion piece kind (NoPiece if none) and
// a MoveType tag. Unused bits are always zero. Immutable once composed.
//
//	bits  0.. 5: source square   (6 bits)
//	bits  6..11: target square   (6 bits)
//	bits 12..14: moved piece     (3 bits)
//	bits 15..17: captured piece  (3 bits)
//	bits 18..20: promotion piece (3 bits)
//	bits 21..24: move type       (4 bits)
type Move uint32

const (
	moveFromShift, moveFromMask           = 0, 0x3f
	moveToShift, moveToMask               = 6, 0x3f
	moveMovedShift, moveMovedMask         = 12, 0x7
	moveCapturedShift, moveCapturedMask   = 15, 0x7
	movePromotionShift, movePromotionMask = 18, 0x7
	moveTypeShift, moveTypeMask           = 21, 0xf
)

// NewMove composes a packed Move from its fields.
func NewMove(from, to Square, moved, captured, promotion PieceKind, typ MoveType) Move {
	return Move(uint32(from)&moveFromMask)<<0 |
		Move(uint32(to)&moveToMask)<<moveToShift |
		Move(uint32(moved)&moveMovedMask)<<moveMovedShift |
		Move(uint32(captured)&moveCapturedMask)<<moveCapturedShift |
		Move(uint32(promotion)&movePromotionMask)<<movePromotionShift |
		Move(uint32(typ)&moveTypeMask)<<moveTypeShift
}

func (m Move) From() Square      { return Square((m >> moveFromShift) & moveFromMask) }
func (m Move) To() Square        { return Square((m >> moveToShift) & moveToMask) }
func (m Move) Moved() PieceKind  { return PieceKind((m >> moveMovedShift) & moveMovedMask) }
func (m Move) Captured() PieceKind {
	return PieceKind((m >> moveCapturedShift) & moveCapturedMask)
}
func (m Move) Promotion() PieceKind {
	return PieceKind((m >> movePromotionShift) & movePromotionMask)
}
func (m Move) Type() MoveType { return MoveType((m >> moveTypeShift) & moveTypeMask) }

func (m Move) IsCapture() bool {
	return m.Type() == MoveCapture || m.Type() == MoveEnPassant || (m.Type() == MovePromotion && m.Captured() != NoPiece)
}

// NullMove is the absence of a move, rendered as "0000" in coordinate notation.
const NullMove Move = 0

func (m Move) IsNull() bool {
	return m == NullMove
}

// ParseMove parses a move in pure coordinate (UCI) notation, e.g. "e2e4" or "a7a8q". The
// promotion suffix, if any, is lower-case regardless of color. The result carries only From/To/
// Promotion -- the board-dependent fields (Moved, Captured, Type) must be filled in by matching
// the parsed move against the current position's pseudo-legal move list.
func ParseMove(str string) (from, to Square, promotion PieceKind, err error) {
	if str == "0000" {
		return ZeroSquare, ZeroSquare, NoPiece, nil
	}

	runes := []rune(str)
	if len(runes) < 4 || len(runes) > 5 {
		return 0, 0, 0, fmt.Errorf("invalid move %q: wrong length", str)
	}

	from, err = ParseSquare(runes[0], runes[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid move %q: %w", str, err)
	}
	to, err = ParseSquare(runes[2], runes[3])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid move %q: %w", str, err)
	}

	if len(runes) == 5 {
		p, ok := ParsePieceKind(runes[4])
		if !ok || p == Pawn || p == King {
			return 0, 0, 0, fmt.Errorf("invalid move %q: invalid promotion", str)
		}
		promotion = p
	}
	return from, to, promotion, nil
}

// String renders the move in pure coordinate (UCI) notation.
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	if m.Promotion() != NoPiece {
		return fmt.Sprintf("%v%v%v", m.From(), m.To(), m.Promotion())
	}
	return fmt.Sprintf("%v%v", m.From(), m.To())
}
