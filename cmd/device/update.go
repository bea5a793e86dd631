package device

import (
	"context"
	"fmt"

	"github.com/paularlott/cli"

	"github.com/kavia-common/netwatch/internal/controller"
	"github.com/kavia-common/netwatch/internal/gateway"
	"github.com/kavia-common/netwatch/internal/log"
	"github.com/kavia-common/netwatch/internal/model"
	"github.com/kavia-common/netwatch/internal/store"
)

func UpdateCommand() *cli.Command {
	return &cli.Command{
		Name:        "update",
		Usage:       "Update a device",
		Description: "Update an existing device; omitted flags keep their current values",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Device name"},
			&cli.StringFlag{Name: "ip", Usage: "IPv4 address"},
			&cli.StringFlag{Name: "type", Usage: "Device type (router, switch, server, other)"},
			&cli.StringFlag{Name: "location", Usage: "Device location"},
		}, serverFlags()...),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.GetStringArg("id")
			log.Debug("Updating device", "id", id, "server", cmd.GetString("server"))

			client := newClient(cmd)
			current, err := client.Get(ctx, id)
			if err != nil {
				if gateway.IsNotFound(err) {
					return fmt.Errorf("device %s not found", id)
				}
				return fmt.Errorf("getting device: %w", err)
			}

			input := model.DeviceInput{
				Name:      orDefault(cmd.GetString("name"), current.Name),
				IPAddress: orDefault(cmd.GetString("ip"), current.IPAddress),
				Type:      orDefault(cmd.GetString("type"), current.Type),
				Location:  orDefault(cmd.GetString("location"), current.Location),
			}

			ctrl := controller.New(client, store.New())
			device, err := ctrl.Update(ctx, id, input)
			if err != nil {
				printSubmissionError(err)
				return fmt.Errorf("device not updated")
			}

			printDevice(device)
			return nil
		},
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
