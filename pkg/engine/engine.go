// Package engine wires together the position, evaluator and search into a single game-playing
// driver that the UCI and console frontends both sit on top of.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"

	"github.com/castellan/core/pkg/board"
	"github.com/castellan/core/pkg/board/fen"
	"github.com/castellan/core/pkg/eval"
	"github.com/castellan/core/pkg/search"
)

var version = build.NewVersion(0, 1, 0)

// DefaultDepth is the search depth used when no explicit depth is requested.
const DefaultDepth = 5

// ErrIllegalMove is returned by Move when the candidate is not a legal move in the current
// position -- either it does not match any pseudo-legal move, or playing it leaves the mover's
// own king in check.
var ErrIllegalMove = errors.New("illegal move")

// ErrSearchInProgress is returned by Reset, Move and TakeBack while a search is running; callers
// must Stop it first.
var ErrSearchInProgress = errors.New("search in progress")

// Engine encapsulates game-playing logic: the current position, its move history (for takeback
// and FEN reporting), and a fixed-depth negamax search over a pluggable Evaluator.
//
// Three independent atomic flags separate the concerns a concurrent driver (UCI or console) needs
// to reason about without holding the position mutex across a potentially long search:
// searching (a FindBestMove call is in flight), resetting (Reset is rewriting the position) and
// quitting (Quit has been called; only Quitting reads it, FindBestMove does not).
type Engine struct {
	name, author string
	evaluator    eval.Evaluator
	depth        int

	mu      sync.Mutex
	pos     *board.Position
	history []board.Move
	cancel  context.CancelFunc // cancels the in-flight FindBestMove search, if any

	searching atomic.Bool
	resetting atomic.Bool
	quitting  atomic.Bool
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithDepth sets the default search depth (plies). DefaultDepth is used if never set.
func WithDepth(depth int) Option {
	return func(e *Engine) { e.depth = depth }
}

// WithEvaluator overrides the static evaluator. eval.Material{} is used if never set.
func WithEvaluator(evaluator eval.Evaluator) Option {
	return func(e *Engine) { e.evaluator = evaluator }
}

// New constructs an Engine at the standard starting position.
func New(ctx context.Context, name, author string, opts ...Option) *Engine {
	e := &Engine{
		name:      name,
		author:    author,
		evaluator: eval.Material{},
		depth:     DefaultDepth,
	}
	for _, fn := range opts {
		fn(e)
	}

	if err := e.Reset(ctx, fen.Initial); err != nil {
		logw.Exitf(ctx, "Invalid initial position: %v", err)
	}

	logw.Infof(ctx, "Initialized engine: %v (depth=%d)", e.Name(), e.depth)
	return e
}

// Name returns the engine name and version, e.g. "castellan 0.1.0".
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the engine author.
func (e *Engine) Author() string { return e.author }

// Depth returns the default search depth.
func (e *Engine) Depth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.depth
}

// SetDepth changes the default search depth used by FindBestMove when no override is given.
func (e *Engine) SetDepth(depth int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if depth > 0 {
		e.depth = depth
	}
}

// Position returns the current position in FEN.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fen.Encode(e.pos)
}

// History returns the moves played since the last Reset, in coordinate notation.
func (e *Engine) History() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.history))
	for i, m := range e.history {
		out[i] = m.String()
	}
	return out
}

// Reset replaces the current position with the one described by the given FEN, clearing history.
// Fails with ErrSearchInProgress if a search is currently running.
func (e *Engine) Reset(ctx context.Context, position string) error {
	if !e.resetting.CAS(false, true) {
		return ErrSearchInProgress
	}
	defer e.resetting.Store(false)

	if e.searching.Load() {
		return ErrSearchInProgress
	}

	pos, err := fen.Decode(position)
	if err != nil {
		return fmt.Errorf("invalid position %q: %w", position, err)
	}

	e.mu.Lock()
	e.pos = pos
	e.history = nil
	e.mu.Unlock()

	logw.Infof(ctx, "Reset to %v", position)
	return nil
}

// Move plays move (in coordinate notation, e.g. "e2e4" or "a7a8q") against the current position.
// It is rejected with ErrIllegalMove if it does not match a legal move.
func (e *Engine) Move(ctx context.Context, move string) error {
	if e.searching.Load() {
		return ErrSearchInProgress
	}

	from, to, promotion, err := board.ParseMove(move)
	if err != nil {
		return fmt.Errorf("invalid move %q: %w", move, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.matchMove(from, to, promotion)
	if !ok {
		return fmt.Errorf("%w: %v", ErrIllegalMove, move)
	}

	e.pos.MakeMove(m)
	if e.pos.DefendersKingIsInCheck() {
		e.pos.UnmakeMove(m)
		return fmt.Errorf("%w: %v leaves king in check", ErrIllegalMove, move)
	}
	e.history = append(e.history, m)

	logw.Infof(ctx, "Played %v", m)
	return nil
}

// matchMove finds the pseudo-legal move with the given from/to/promotion fields, filling in the
// board-dependent fields (moved/captured/type) that ParseMove cannot determine on its own.
func (e *Engine) matchMove(from, to board.Square, promotion board.PieceKind) (board.Move, bool) {
	stack := make([]board.Move, board.MaxMovesPerPosition)
	n := board.GenerateMoves(e.pos, stack, 0)
	for i := 0; i < n; i++ {
		m := stack[i]
		if m.From() == from && m.To() == to && m.Promotion() == promotion {
			return m, true
		}
	}
	return board.NullMove, false
}

// TakeBack undoes the most recent move played via Move.
func (e *Engine) TakeBack(ctx context.Context) error {
	if e.searching.Load() {
		return ErrSearchInProgress
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.history) == 0 {
		return fmt.Errorf("no move to take back")
	}

	n := len(e.history) - 1
	m := e.history[n]
	e.pos.UnmakeMove(m)
	e.history = e.history[:n]

	logw.Infof(ctx, "Took back %v", m)
	return nil
}

// FindBestMove searches the current position to depth plies (falling back to the engine's default
// depth if depth <= 0), stopping early if deadline passes or Stop is called, and returns the
// principal variation found so far. It runs against a private clone of the position, so the
// engine's own position is never touched by the search; Move, TakeBack and Reset are refused with
// ErrSearchInProgress until it returns. Only one search may run at a time.
func (e *Engine) FindBestMove(ctx context.Context, depth int, deadline time.Time) (search.PV, error) {
	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The searching flag and the cancel func are set in one critical section, so a Stop that
	// observes Searching() == true always finds the cancel func in place.
	e.mu.Lock()
	if !e.searching.CAS(false, true) {
		e.mu.Unlock()
		return search.PV{}, ErrSearchInProgress
	}
	defer e.searching.Store(false)

	if depth <= 0 {
		depth = e.depth
	}
	snapshot := e.pos.Clone()
	e.cancel = cancel
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.cancel = nil
		e.mu.Unlock()
	}()

	logw.Infof(ctx, "Searching depth=%d deadline=%v", depth, deadline)

	pv, err := search.Search(searchCtx, snapshot, e.evaluator, depth, deadline)
	if err != nil {
		logw.Warningf(ctx, "Search ended early: %v", err)
		return pv, err
	}

	logw.Infof(ctx, "Search done: %v", pv)
	return pv, nil
}

// Stop cancels the in-flight FindBestMove search, if any. A no-op otherwise.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Searching reports whether a FindBestMove call is currently in flight.
func (e *Engine) Searching() bool { return e.searching.Load() }

// Quit marks the engine as shutting down. Idempotent; intended for a driver's "quit" command.
func (e *Engine) Quit(ctx context.Context) {
	if e.quitting.CAS(false, true) {
		logw.Infof(ctx, "Quitting")
	}
}

// Quitting reports whether Quit has been called.
func (e *Engine) Quitting() bool { return e.quitting.Load() }
