package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/flourish/internal/flagx"
)

var serverFlags = []string{"-a", "-m", "-d", "-l", "-f", "-i", "-r", "-j", "-n", "-k", "-u", "-p", "-b", "-g", "-e"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     protocol bind address (e.g. ":2555")
//	-m string     health service bind address
//	-d string     PostgreSQL DSN
//	-l string     log level
//	-f int        max frame size, bytes
//	-i duration   idle session timeout
//	-r duration   reset token validity
//	-j duration   token cleanup interval
//	-n int        search result limit
//	-k int        bcrypt cost
//	-u, -p, -b, -g, -e  S3 user, password, bucket, region, endpoint
//
// Arguments not in the list above are ignored so the JSON config flags can
// share os.Args.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrTCP, "a", config.EndpointAddrTCP, "address and port to run server")
	fs.StringVar(&config.EndpointAddrHealth, "m", config.EndpointAddrHealth, "health endpoint address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.IntVar(&config.MaxFrameSize, "f", config.MaxFrameSize, "max frame size in bytes")
	fs.DurationVar(&config.IdleTimeout, "i", config.IdleTimeout, "idle session timeout")
	fs.DurationVar(&config.ResetTokenValidityDuration, "r", config.ResetTokenValidityDuration, "reset token validity")
	fs.DurationVar(&config.TokenCleanupInterval, "j", config.TokenCleanupInterval, "token cleanup interval")
	fs.IntVar(&config.SearchLimit, "n", config.SearchLimit, "search result limit")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	return fs.Parse(flagx.FilterArgs(args, serverFlags))
}
