// Package console contains a human-readable driver for the engine, useful for interactive
// debugging outside of a GUI.
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/seekerror/logw"
	"go.uber.org/atomic"

	"github.com/castellan/core/pkg/board"
	"github.com/castellan/core/pkg/board/fen"
	"github.com/castellan/core/pkg/engine"
)

// ProtocolName is the command that switches the driver into console mode.
const ProtocolName = "console"

// Driver implements a console driver for debugging: reset/undo/print/analyze/depth/quit, plus
// bare coordinate moves.
type Driver struct {
	e   *engine.Engine
	out chan<- string

	active atomic.Bool // user is waiting for engine to move
	quit   chan struct{}
	closed atomic.Bool
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		e:    e,
		out:  out,
		quit: make(chan struct{}),
	}
	go d.process(ctx, in)
	return d, out
}

func (d *Driver) Close() {
	if d.closed.CAS(false, true) {
		close(d.quit)
	}
}

func (d *Driver) Closed() <-chan struct{} { return d.quit }

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "Console protocol initialized")

	d.out <- fmt.Sprintf("engine %v (%v)", d.e.Name(), d.e.Author())
	d.printBoard()

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}
			if !d.dispatch(ctx, line) {
				return
			}

		case <-d.quit:
			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) dispatch(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "reset", "r":
		pos := fen.Initial
		if len(args) >= 6 && args[0] != "moves" {
			pos = strings.Join(args[0:6], " ")
		}
		if err := d.e.Reset(ctx, pos); err != nil {
			d.out <- fmt.Sprintf("invalid position: %v", err)
			return true
		}
		apply := false
		for _, arg := range args {
			if arg == "moves" {
				apply = true
				continue
			}
			if !apply {
				continue
			}
			if err := d.e.Move(ctx, arg); err != nil {
				d.out <- fmt.Sprintf("invalid move %q: %v", arg, err)
				return true
			}
		}
		d.printBoard()

	case "undo", "u":
		if err := d.e.TakeBack(ctx); err != nil {
			d.out <- fmt.Sprintf("nothing to undo: %v", err)
		} else {
			d.printBoard()
		}

	case "print", "p":
		d.printBoard()

	case "depth", "d":
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				d.e.SetDepth(n)
			}
		}
		d.out <- fmt.Sprintf("depth %v", d.e.Depth())

	case "analyze", "a", "go":
		depth := 0
		if len(args) > 0 {
			depth, _ = strconv.Atoi(args[0])
		}
		d.analyze(ctx, depth)

	case "halt", "stop":
		d.e.Stop()

	case "quit", "exit", "q":
		d.e.Stop()
		return false

	default:
		// Assume a bare coordinate move, e.g. "e2e4".
		if err := d.e.Move(ctx, cmd); err != nil {
			d.out <- fmt.Sprintf("invalid move %q: %v", cmd, err)
		} else {
			d.printBoard()
		}
	}
	return true
}

func (d *Driver) analyze(ctx context.Context, depth int) {
	if !d.active.CAS(false, true) {
		d.out <- "search already in progress"
		return
	}
	go func() {
		defer d.active.Store(false)

		pv, err := d.e.FindBestMove(ctx, depth, time.Time{})
		if err != nil {
			d.out <- fmt.Sprintf("search failed: %v", err)
			return
		}
		d.out <- pv.String()
		if len(pv.Moves) > 0 {
			d.out <- fmt.Sprintf("bestmove %v", pv.Moves[0])
		}
	}()
}

const (
	files      = "    a   b   c   d   e   f   g   h"
	horizontal = "  ---------------------------------"
	vertical   = " | "
)

func (d *Driver) printBoard() {
	d.out <- ""
	d.out <- fmt.Sprintf("fen %v", d.e.Position())
	d.out <- files
	d.out <- horizontal

	pos, err := fen.Decode(d.e.Position())
	if err != nil {
		return
	}

	for r := board.Rank8; ; r-- {
		var sb strings.Builder
		sb.WriteString(r.String())
		sb.WriteString(vertical)
		for f := board.FileA; ; f-- { // FileA..FileH descends since FileH=0, giving algebraic a..h
			if c, k, ok := pos.Square(board.NewSquare(f, r)); ok {
				sb.WriteString(printPiece(c, k))
			} else {
				sb.WriteString(" ")
			}
			sb.WriteString(vertical)
			if f == board.FileH {
				break
			}
		}
		d.out <- sb.String()
		d.out <- horizontal
		if r == board.Rank1 {
			break
		}
	}
}

func printPiece(c board.Color, k board.PieceKind) string {
	if c == board.White {
		return strings.ToUpper(k.String())
	}
	return k.String()
}
