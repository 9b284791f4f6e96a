// Command castellan is a simple UCI/console chess engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/seekerror/logw"

	"github.com/castellan/core/pkg/engine"
	"github.com/castellan/core/pkg/engine/console"
	"github.com/castellan/core/pkg/engine/uci"
)

var depth = flag.Int("depth", engine.DefaultDepth, "Default search depth in plies")

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: castellan [options]

castellan is a simple UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	e := engine.New(ctx, "castellan", "castellan contributors", engine.WithDepth(*depth))

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)
		<-driver.Closed()

	case console.ProtocolName:
		driver, out := console.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)
		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}
