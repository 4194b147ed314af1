// Command pcomb-served runs a QUIC/HTTP3 daemon serving pcomb's worked
// example grammars at POST /parse, using an in-memory self-signed TLS
// certificate for local/dev use.
//
//	-addr  address to listen on (default ":4433")
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/orizon-lang/pcomb/examples/arith"
	"github.com/orizon-lang/pcomb/examples/sexpr"
	"github.com/orizon-lang/pcomb/internal/cli"
	"github.com/orizon-lang/pcomb/internal/pcombrpc"
	"github.com/orizon-lang/pcomb/internal/runtime/netstack"
)

func main() {
	var addr string
	flag.StringVar(&addr, "addr", ":4433", "address to listen on")
	flag.Parse()

	logger := cli.NewLogger(true, false)

	tlsCfg, err := netstack.GenerateSelfSignedTLS([]string{"localhost", "127.0.0.1"}, 0)
	if err != nil {
		cli.ExitWithError("generating TLS config: %v", err)
	}

	reg := pcombrpc.NewRegistry()
	reg.Register("arith", func(input string) (interface{}, error) { return arith.Parse(input) })
	reg.Register("sexpr", func(input string) (interface{}, error) { return sexpr.Parse(input) })

	srv := pcombrpc.NewServer(addr, tlsCfg, reg)
	boundAddr, err := srv.Start()
	if err != nil {
		cli.ExitWithError("starting server: %v", err)
	}
	logger.Info("pcomb-served listening on %s (grammars: arith, sexpr)", boundAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	if err := srv.Stop(); err != nil {
		cli.ExitWithError("stopping server: %v", err)
	}
}
