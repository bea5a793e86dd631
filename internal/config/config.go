package config

import (
	"path/filepath"
	"time"

	"github.com/paularlott/cli"
)

type Config struct {
	DataDir      string
	ListenAddr   string
	ServerURL    string
	APIAuthToken string
	PollInterval time.Duration
	LogLevel     string
	LogFormat    string
}

var (
	dataDir      string
	listenAddr   string
	serverURL    string
	apiAuthToken string
	pollSeconds  int
	logLevel     string
	logFormat    string
)

// ServerFlags are the flags for running the device API server.
func ServerFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:         "data-dir",
			Usage:        "Data directory path",
			EnvVars:      []string{"NETWATCH_DATA_DIR"},
			DefaultValue: filepath.Join(".", "data"),
			AssignTo:     &dataDir,
		},
		&cli.StringFlag{
			Name:         "addr",
			Usage:        "Server listen address",
			EnvVars:      []string{"NETWATCH_LISTEN_ADDR"},
			DefaultValue: ":8080",
			AssignTo:     &listenAddr,
		},
		&cli.StringFlag{
			Name:     "api-token",
			Usage:    "API bearer token",
			EnvVars:  []string{"NETWATCH_API_TOKEN"},
			AssignTo: &apiAuthToken,
		},
	}, logFlags()...)
}

// ClientFlags are the flags every command that talks to the device API
// carries.
func ClientFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:         "server",
			Usage:        "Device API base URL",
			EnvVars:      []string{"NETWATCH_SERVER_URL"},
			DefaultValue: "http://localhost:8080",
			AssignTo:     &serverURL,
		},
		&cli.StringFlag{
			Name:     "api-token",
			Usage:    "API authentication token",
			EnvVars:  []string{"NETWATCH_API_TOKEN"},
			AssignTo: &apiAuthToken,
		},
	}
}

// PollFlags configure the background status poll.
func PollFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:         "poll-interval",
			Usage:        "Status poll interval in seconds",
			EnvVars:      []string{"NETWATCH_POLL_INTERVAL"},
			DefaultValue: 15,
			AssignTo:     &pollSeconds,
		},
	}
}

func logFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:         "log-level",
			Usage:        "Log level (debug, info, warn, error)",
			EnvVars:      []string{"NETWATCH_LOG_LEVEL"},
			DefaultValue: "info",
			AssignTo:     &logLevel,
		},
		&cli.StringFlag{
			Name:         "log-format",
			Usage:        "Log format (console, json)",
			EnvVars:      []string{"NETWATCH_LOG_FORMAT"},
			DefaultValue: "console",
			AssignTo:     &logFormat,
		},
	}
}

func Load() *Config {
	return &Config{
		DataDir:      dataDir,
		ListenAddr:   listenAddr,
		ServerURL:    serverURL,
		APIAuthToken: apiAuthToken,
		PollInterval: time.Duration(pollSeconds) * time.Second,
		LogLevel:     logLevel,
		LogFormat:    logFormat,
	}
}

// IsAPIAuthEnabled checks if API authentication is configured
func (c *Config) IsAPIAuthEnabled() bool {
	return c.APIAuthToken != ""
}
