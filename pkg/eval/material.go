package eval

import "github.com/castellan/core/pkg/board"

// Evaluator is a static position evaluator, returning an advantage from the perspective of the
// side to move.
type Evaluator interface {
	Evaluate(pos *board.Position) Evaluation
}

// Material is a static evaluator that sums nominal piece values. It does not consider position,
// mobility, king safety or pawn structure.
type Material struct{}

// Evaluate returns the material balance in centipawns, from the perspective of the side to move.
func (Material) Evaluate(pos *board.Position) Evaluation {
	turn := pos.Turn()
	opp := turn.Opponent()

	var centipawns int
	for k := board.Pawn; k <= board.King; k++ {
		delta := pos.Piece(turn, k).PopCount() - pos.Piece(opp, k).PopCount()
		centipawns += delta * NominalValue(k)
	}
	return Continuous(centipawns)
}

// NominalValue is the nominal centipawn value of a piece kind. The king is given an arbitrary
// large value since it is never actually captured; it exists only to keep PieceKindOn lookups and
// move-ordering keys total functions over every PieceKind.
func NominalValue(k board.PieceKind) int {
	switch k {
	case board.Pawn:
		return 100
	case board.Knight, board.Bishop:
		return 300
	case board.Rook:
		return 500
	case board.Queen:
		return 900
	case board.King:
		return 10000
	default:
		return 0
	}
}

// CaptureGain is the nominal material gain of playing m: the value of whatever it captures (by
// normal capture or en passant) plus the value a promotion adds over the pawn it replaces. Used
// by the search package to order moves before exhaustively searching them.
func CaptureGain(m board.Move) int {
	gain := 0
	switch m.Type() {
	case board.MoveCapture:
		gain += NominalValue(m.Captured())
	case board.MoveEnPassant:
		gain += NominalValue(board.Pawn)
	case board.MovePromotion:
		if m.Captured() != board.NoPiece {
			gain += NominalValue(m.Captured())
		}
		gain += NominalValue(m.Promotion()) - NominalValue(board.Pawn)
	}
	return gain
}
