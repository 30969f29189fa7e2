// Package config handles configuration for the flourish CLI client.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the protocol server.
//   - RequestTimeout: upper bound for one request/response round trip.
type Config struct {
	ServerEndpointAddr string
	DialTimeout        time.Duration
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with local development defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:2555"
	c.DialTimeout = 5 * time.Second
	c.RequestTimeout = 10 * time.Second
}

// Load applies defaults, then JSON (-c/-config) and finally flags.
// Later sources take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
