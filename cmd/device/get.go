package device

import (
	"context"
	"fmt"

	"github.com/paularlott/cli"

	"github.com/kavia-common/netwatch/internal/gateway"
	"github.com/kavia-common/netwatch/internal/log"
)

func GetCommand() *cli.Command {
	return &cli.Command{
		Name:        "get",
		Usage:       "Show a device",
		Description: "Show a single device by id",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Flags: serverFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.GetStringArg("id")
			log.Debug("Getting device", "id", id, "server", cmd.GetString("server"))

			device, err := newClient(cmd).Get(ctx, id)
			if err != nil {
				if gateway.IsNotFound(err) {
					return fmt.Errorf("device %s not found", id)
				}
				return fmt.Errorf("getting device: %w", err)
			}

			printDevice(device)
			return nil
		},
	}
}
