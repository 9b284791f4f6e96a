package search

import (
	"context"
	"sort"
	"time"

	"github.com/seekerror/stdlib/pkg/util/contextx"

	"github.com/castellan/core/pkg/board"
	"github.com/castellan/core/pkg/eval"
)

// searcher holds the mutable state threaded through one call to Search: a single contiguous move
// buffer shared by every recursion level (ply p writes into the slice window starting at
// p*board.MaxMovesPerPosition, so no allocation happens once the buffer is sized) and a flat
// triangular table recording the best line found under each node visited so far.
type searcher struct {
	ctx       context.Context
	stack     []board.Move
	evaluator eval.Evaluator
	maxDepth  int
	deadline  time.Time
	nodes     uint64

	pvTable  []board.Move
	pvLength []int
	rootEval eval.Evaluation // eval.LossIn(0) (an improvable sentinel) until the root's first move completes
}

// pvOffset returns the index into pvTable where ply d's principal variation row begins. Row d
// holds up to maxDepth-d moves; offsets are cumulative row lengths, so the whole table needs
// exactly maxDepth*(maxDepth+1)/2 entries.
func (s *searcher) pvOffset(d int) int {
	D := s.maxDepth
	return d * (2*D + 1 - d) / 2
}

func (s *searcher) recordPV(ply int, m board.Move) {
	off := s.pvOffset(ply)
	s.pvTable[off] = m
	childLen := s.pvLength[ply+1]
	childOff := s.pvOffset(ply + 1)
	copy(s.pvTable[off+1:off+1+childLen], s.pvTable[childOff:childOff+childLen])
	s.pvLength[ply] = 1 + childLen
}

// orderMoves sorts a ply's pseudo-legal moves so that captures and promotions -- the moves most
// likely to produce an early beta cutoff -- are searched first, ranked by nominal material gain.
func orderMoves(moves []board.Move) {
	sort.SliceStable(moves, func(i, j int) bool {
		return eval.CaptureGain(moves[i]) > eval.CaptureGain(moves[j])
	})
}

// negateBound maps a window bound at this node to the child's perspective. It is the inverse of
// Evaluation.Negate, so that a child result equal to the returned bound negates back to exactly
// this node's bound (a mate bound loses a ply instead of gaining one).
func negateBound(e eval.Evaluation) eval.Evaluation {
	if plies, ok := e.IsMate(); ok {
		if e.IsWin() {
			return eval.LossIn(plies - 1)
		}
		return eval.WinIn(plies - 1)
	}
	return e.Negate()
}

func (s *searcher) deadlineExceeded() bool {
	return !s.deadline.IsZero() && !time.Now().Before(s.deadline)
}

// negamax searches pos to depthLeft further plies and returns its evaluation from the perspective
// of the side to move; an interior node's result is fail-hard clipped into [alpha, beta], while a
// leaf (depthLeft == 0) returns the static evaluation unclipped. The deadline/ctx are checked only
// here, at node entry -- never between moves within a node; an abort detected at any descendant
// unwinds through every enclosing node without finishing it.
func (s *searcher) negamax(pos *board.Position, ply, depthLeft int, alpha, beta eval.Evaluation) (eval.Evaluation, error) {
	if s.deadlineExceeded() || contextx.IsCancelled(s.ctx) {
		return eval.Evaluation{}, ErrAborted
	}

	s.nodes++
	s.pvLength[ply] = 0

	if depthLeft == 0 {
		return s.evaluator.Evaluate(pos), nil
	}

	cursor := ply * board.MaxMovesPerPosition
	end := board.GenerateMoves(pos, s.stack, cursor)
	orderMoves(s.stack[cursor:end])

	alphaOrig := alpha
	best := eval.LossIn(0)
	legal := 0

	for i := cursor; i < end; i++ {
		m := s.stack[i]

		pos.MakeMove(m)
		if pos.DefendersKingIsInCheck() {
			pos.UnmakeMove(m)
			continue
		}
		legal++

		child, err := s.negamax(pos, ply+1, depthLeft-1, negateBound(beta), negateBound(alpha))
		pos.UnmakeMove(m)
		if err != nil {
			return eval.Evaluation{}, err
		}
		score := child.Negate()

		if eval.Compare(score, best) > 0 {
			best = score
			s.recordPV(ply, m)
			if ply == 0 {
				s.rootEval = best
			}
		}
		if eval.Compare(score, alpha) > 0 {
			alpha = score
		}
		if eval.Compare(alpha, beta) >= 0 {
			break // beta cutoff
		}
	}

	if legal == 0 {
		s.pvLength[ply] = 0
		if pos.IsChecked(pos.Turn()) {
			return eval.LossIn(0), nil
		}
		return eval.Drawn(), nil
	}

	switch {
	case eval.Compare(best, alphaOrig) <= 0:
		return alphaOrig, nil
	case eval.Compare(best, beta) >= 0:
		return beta, nil
	default:
		return best, nil
	}
}
