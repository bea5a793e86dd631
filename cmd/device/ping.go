package device

import (
	"context"
	"fmt"

	"github.com/paularlott/cli"

	"github.com/kavia-common/netwatch/internal/controller"
	"github.com/kavia-common/netwatch/internal/log"
	"github.com/kavia-common/netwatch/internal/store"
)

func PingCommand() *cli.Command {
	return &cli.Command{
		Name:        "ping",
		Usage:       "Check a device now",
		Description: "Trigger an immediate status check for one device",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Flags: serverFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.GetStringArg("id")
			log.Debug("Checking device status", "id", id, "server", cmd.GetString("server"))

			ctrl := controller.New(newClient(cmd), store.New())
			update, err := ctrl.Ping(ctx, id)
			if err != nil {
				return fmt.Errorf("status check: %w", err)
			}

			fmt.Printf("Status:       %s\n", update.Status)
			fmt.Printf("Last Checked: %s\n", formatChecked(update.LastChecked))
			return nil
		},
	}
}
