package main

import (
	"context"
	"fmt"
	"os"

	"github.com/paularlott/cli"

	"github.com/kavia-common/netwatch/cmd/device"
	"github.com/kavia-common/netwatch/cmd/server"
)

var version = "dev"

func main() {
	root := &cli.Command{
		Name:        "netwatch",
		Version:     version,
		Usage:       "Network device inventory with status monitoring",
		Description: "Manage network devices and keep their reachability status fresh",
		Commands: []*cli.Command{
			{
				Name:        "device",
				Usage:       "Manage devices",
				Description: "Create, inspect, update, delete, and check devices",
				Commands:    device.Commands(),
			},
			server.Command(),
		},
	}

	if err := root.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
