package config

import "github.com/urfave/cli/v3"

// Server holds server configuration
type Server struct {
	Addr           string
	APITokenSecret string
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("LOOM_ADDR"),
		},
		&cli.StringFlag{
			Name:        "api-token-secret",
			Usage:       "HS256 secret for query API bearer tokens (disabled if empty)",
			Destination: &c.APITokenSecret,
			Sources:     cli.EnvVars("LOOM_API_TOKEN_SECRET"),
		},
	}
}
