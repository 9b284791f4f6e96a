// Package uci contains a driver for using the engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
package uci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/seekerror/logw"
	"go.uber.org/atomic"

	"github.com/castellan/core/pkg/board/fen"
	"github.com/castellan/core/pkg/engine"
	"github.com/castellan/core/pkg/search"
)

// ProtocolName is the command that switches the driver into UCI mode.
const ProtocolName = "uci"

// Driver implements a UCI driver in front of an Engine. It is activated by the "uci" command.
type Driver struct {
	e   *engine.Engine
	out chan<- string

	active       atomic.Bool // a "go" is outstanding and awaiting its "bestmove"
	lastPosition string      // last "position ..." line seen, for incremental move application

	quit   chan struct{}
	closed atomic.Bool
}

// NewDriver starts a Driver reading commands from in and returns the channel it writes replies to.
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

// Close shuts the driver down, idempotently.
func (d *Driver) Close() {
	if d.closed.CAS(false, true) {
		close(d.quit)
	}
}

// Closed reports whether the driver has shut down.
func (d *Driver) Closed() <-chan struct{} { return d.quit }

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "UCI protocol initialized")

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())
	d.out <- "option name Depth type spin default 5 min 1 max 12"
	d.out <- "uciok"

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

// dispatch handles a single input line. It returns false if the driver should stop.
func (d *Driver) dispatch(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "isready":
		// Synchronize with the GUI: must always be answered with "readyok", even while searching,
		// since FindBestMove below runs on its own goroutine.
		d.out <- "readyok"

	case "debug", "register":
		// No-ops: no debug-mode logging toggle, no registration scheme.

	case "setoption":
		d.setOption(args)

	case "ucinewgame":
		d.lastPosition = ""

	case "position":
		if err := d.handlePosition(ctx, line, args); err != nil {
			logw.Errorf(ctx, "Invalid position: %v: %v", line, err)
			return false
		}

	case "go":
		d.handleGo(ctx, args)

	case "stop":
		d.e.Stop()

	case "ponderhit":
		// Pondering is not implemented; nothing to switch over to.

	case "quit":
		return false

	default:
		logw.Warningf(ctx, "Unknown command %q: %v", cmd, args)
	}
	return true
}

func (d *Driver) setOption(args []string) {
	var name, value string
	if len(args) > 1 {
		name = args[1]
	}
	if len(args) > 3 {
		value = args[3]
	}
	switch name {
	case "Depth":
		if n, err := strconv.Atoi(value); err == nil {
			d.e.SetDepth(n)
		}
	}
}

func (d *Driver) handlePosition(ctx context.Context, line string, args []string) error {
	if d.lastPosition != "" && strings.HasPrefix(line, d.lastPosition) {
		moves := strings.TrimSpace(strings.TrimPrefix(line, d.lastPosition))
		for _, arg := range strings.Fields(moves) {
			if arg == "moves" {
				continue
			}
			if err := d.e.Move(ctx, arg); err != nil {
				return fmt.Errorf("move %q: %w", arg, err)
			}
		}
		d.lastPosition = line
		return nil
	}

	position := fen.Initial
	if len(args) >= 7 && args[0] == "fen" {
		position = strings.Join(args[1:7], " ")
	}
	if err := d.e.Reset(ctx, position); err != nil {
		return err
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
			return fmt.Errorf("move %q: %w", arg, err)
		}
	}
	d.lastPosition = line
	return nil
}

func (d *Driver) handleGo(ctx context.Context, args []string) {
	depth := 0
	deadline := time.Time{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth", "movetime":
			cmd := args[i]
			i++
			if i == len(args) {
				logw.Errorf(ctx, "No argument for %v", cmd)
				return
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				logw.Errorf(ctx, "Invalid argument for %v: %v", cmd, err)
				return
			}
			switch cmd {
			case "depth":
				depth = n
			case "movetime":
				deadline = time.Now().Add(time.Millisecond * time.Duration(n))
			}

		default:
			// wtime/btime/winc/binc/movestogo/ponder/infinite/searchmoves: silently ignored, since
			// there is no time-control model or pondering support.
		}
	}

	d.active.Store(true)
	go func() {
		pv, err := d.e.FindBestMove(ctx, depth, deadline)
		if err != nil {
			logw.Warningf(ctx, "Search ended early: %v", err)
		}
		d.searchCompleted(pv)
	}()
}

func (d *Driver) searchCompleted(pv search.PV) {
	if !d.active.CAS(true, false) {
		return
	}
	if len(pv.Moves) > 0 {
		d.out <- printPV(pv)
		d.out <- fmt.Sprintf("bestmove %v", pv.Moves[0])
	} else {
		d.out <- "bestmove 0000"
	}
}

func printPV(pv search.PV) string {
	parts := []string{"info", fmt.Sprintf("depth %v", len(pv.Moves))}

	if plies, ok := pv.Eval.IsMate(); ok {
		moves := (plies + 1) / 2
		if !pv.Eval.IsWin() {
			moves = -moves
		}
		parts = append(parts, fmt.Sprintf("score mate %v", moves))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %v", pv.Eval.Centipawns()))
	}

	parts = append(parts, fmt.Sprintf("nodes %v", pv.Nodes))
	parts = append(parts, fmt.Sprintf("time %v", pv.Time.Milliseconds()))
	if pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %v", uint64(time.Second)*pv.Nodes/uint64(pv.Time)))
	}

	if len(pv.Moves) > 0 {
		parts = append(parts, "pv")
		for _, m := range pv.Moves {
			parts = append(parts, m.String())
		}
	}
	return strings.Join(parts, " ")
}
