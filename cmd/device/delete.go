package device

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/paularlott/cli"

	"github.com/kavia-common/netwatch/internal/controller"
	"github.com/kavia-common/netwatch/internal/gateway"
	"github.com/kavia-common/netwatch/internal/log"
	"github.com/kavia-common/netwatch/internal/store"
)

func DeleteCommand() *cli.Command {
	return &cli.Command{
		Name:        "delete",
		Usage:       "Delete a device",
		Description: "Delete a device after confirmation",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Flags: append([]cli.Flag{
			&cli.BoolFlag{Name: "yes", Usage: "Skip the confirmation prompt"},
		}, serverFlags()...),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.GetStringArg("id")

			client := newClient(cmd)
			device, err := client.Get(ctx, id)
			if err != nil {
				if gateway.IsNotFound(err) {
					return fmt.Errorf("device %s not found", id)
				}
				return fmt.Errorf("getting device: %w", err)
			}

			if !cmd.GetBool("yes") && !confirm(fmt.Sprintf("Delete device %q?", device.Name)) {
				fmt.Println("Aborted")
				return nil
			}

			log.Debug("Deleting device", "id", id, "server", cmd.GetString("server"))
			ctrl := controller.New(client, store.New())
			if err := ctrl.Delete(ctx, id); err != nil {
				return fmt.Errorf("deleting device: %w", err)
			}

			fmt.Printf("Device %q deleted\n", device.Name)
			return nil
		},
	}
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
