package device

import (
	"context"
	"fmt"

	"github.com/paularlott/cli"

	"github.com/kavia-common/netwatch/internal/controller"
	"github.com/kavia-common/netwatch/internal/log"
	"github.com/kavia-common/netwatch/internal/model"
	"github.com/kavia-common/netwatch/internal/store"
)

func AddCommand() *cli.Command {
	return &cli.Command{
		Name:        "add",
		Usage:       "Add a new device",
		Description: "Register a new device in the inventory",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Device name", Required: true},
			&cli.StringFlag{Name: "ip", Usage: "IPv4 address", Required: true},
			&cli.StringFlag{Name: "type", Usage: "Device type (router, switch, server, other)", DefaultValue: model.TypeRouter},
			&cli.StringFlag{Name: "location", Usage: "Device location", Required: true},
		}, serverFlags()...),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			input := model.DeviceInput{
				Name:      cmd.GetString("name"),
				IPAddress: cmd.GetString("ip"),
				Type:      cmd.GetString("type"),
				Location:  cmd.GetString("location"),
			}
			log.Debug("Adding device", "name", input.Name, "server", cmd.GetString("server"))

			ctrl := controller.New(newClient(cmd), store.New())
			device, err := ctrl.Create(ctx, input)
			if err != nil {
				printSubmissionError(err)
				return fmt.Errorf("device not created")
			}

			printDevice(device)
			return nil
		},
	}
}
