package device

import (
	"context"
	"fmt"

	"github.com/paularlott/cli"

	"github.com/kavia-common/netwatch/internal/controller"
	"github.com/kavia-common/netwatch/internal/log"
	"github.com/kavia-common/netwatch/internal/model"
	"github.com/kavia-common/netwatch/internal/store"
	"github.com/kavia-common/netwatch/internal/view"
)

func ListCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List devices",
		Description: "List devices with optional filtering and sorting",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "type", Usage: "Filter by type (router, switch, server, other)"},
			&cli.StringFlag{Name: "status", Usage: "Filter by status (online, offline, unknown)"},
			&cli.StringFlag{Name: "sort", Usage: "Sort by field (name, type, status, location)", DefaultValue: "name"},
		}, serverFlags()...),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			sortKey, err := model.ParseSortKey(cmd.GetString("sort"))
			if err != nil {
				return err
			}
			filter := model.Filter{
				Type:   cmd.GetString("type"),
				Status: cmd.GetString("status"),
			}
			log.Debug("Listing devices", "filter_type", filter.Type, "filter_status", filter.Status, "sort", sortKey)

			st := store.New()
			ctrl := controller.New(newClient(cmd), st)
			if err := ctrl.Refresh(ctx); err != nil {
				return fmt.Errorf("loading devices: %w", err)
			}

			printDevices(view.Project(st.Snapshot(), filter, sortKey))
			return nil
		},
	}
}
