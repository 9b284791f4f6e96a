// Package search implements exhaustive fixed-depth search over board positions.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/castellan/core/pkg/board"
	"github.com/castellan/core/pkg/eval"
)

// ErrAborted is returned by Search when the deadline passed to it elapses, or its context is
// cancelled, before the first root move has been completely searched. The deadline is only
// checked as each node is entered, not mid-node, so a single node a few plies deep can run
// slightly past it.
var ErrAborted = errors.New("search aborted: deadline exceeded")

// PV is the principal variation and associated statistics produced by a completed search.
type PV struct {
	Moves []board.Move    // the best line found, root move first
	Eval  eval.Evaluation // the root position's evaluation, from the perspective of the side to move
	Nodes uint64          // interior and leaf nodes visited
	Time  time.Duration   // wall-clock time taken
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%d eval=%v nodes=%d time=%v pv=%v", len(p.Moves), p.Eval, p.Nodes, p.Time, p.Moves)
}

// Search exhaustively searches pos to maxDepth plies using fail-hard alpha-beta pruning under
// negamax, returning the principal variation. deadline, if non-zero, aborts the search the next
// time a node is entered after it has passed; so does ctx being cancelled. Per the abort contract,
// an abort with at least one completed root move is reported as success with the best line found
// so far; ErrAborted is returned only when not even the first root move finished searching.
func Search(ctx context.Context, pos *board.Position, evaluator eval.Evaluator, maxDepth int, deadline time.Time) (PV, error) {
	if maxDepth < 1 {
		maxDepth = 1
	}

	start := time.Now()
	s := &searcher{
		ctx:       ctx,
		stack:     board.NewMoveStack(maxDepth),
		evaluator: evaluator,
		maxDepth:  maxDepth,
		deadline:  deadline,
		pvTable:   make([]board.Move, maxDepth*(maxDepth+1)/2),
		pvLength:  make([]int, maxDepth+1),
		rootEval:  eval.LossIn(0),
	}

	alpha, beta := eval.LossIn(0), eval.WinIn(0)
	result, err := s.negamax(pos, 0, maxDepth, alpha, beta)
	if err != nil {
		if errors.Is(err, ErrAborted) && s.pvLength[0] > 0 {
			return PV{
				Moves: append([]board.Move(nil), s.pvTable[:s.pvLength[0]]...),
				Eval:  s.rootEval,
				Nodes: s.nodes,
				Time:  time.Since(start),
			}, nil
		}
		return PV{}, err
	}

	return PV{
		Moves: append([]board.Move(nil), s.pvTable[:s.pvLength[0]]...),
		Eval:  result,
		Nodes: s.nodes,
		Time:  time.Since(start),
	}, nil
}
