package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/flourish/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string     server address
//	-t duration   request timeout
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")

	return fs.Parse(flagx.FilterArgs(args, []string{"-a", "-t"}))
}
