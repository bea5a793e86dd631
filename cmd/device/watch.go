package device

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paularlott/cli"

	"github.com/kavia-common/netwatch/internal/config"
	"github.com/kavia-common/netwatch/internal/controller"
	"github.com/kavia-common/netwatch/internal/log"
	"github.com/kavia-common/netwatch/internal/model"
	"github.com/kavia-common/netwatch/internal/store"
	"github.com/kavia-common/netwatch/internal/view"
)

func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:        "watch",
		Usage:       "Watch device statuses",
		Description: "Show the device table and keep statuses fresh with background polling",
		Flags: append(append([]cli.Flag{
			&cli.StringFlag{Name: "type", Usage: "Filter by type (router, switch, server, other)"},
			&cli.StringFlag{Name: "status", Usage: "Filter by status (online, offline, unknown)"},
			&cli.StringFlag{Name: "sort", Usage: "Sort by field (name, type, status, location)", DefaultValue: "name"},
		}, config.PollFlags()...), serverFlags()...),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			sortKey, err := model.ParseSortKey(cmd.GetString("sort"))
			if err != nil {
				return err
			}
			filter := model.Filter{
				Type:   cmd.GetString("type"),
				Status: cmd.GetString("status"),
			}
			interval := config.Load().PollInterval
			if interval <= 0 {
				interval = controller.DefaultPollInterval
			}

			client := newClient(cmd)
			st := store.New()
			ctrl := controller.New(client, st)
			if err := ctrl.Refresh(ctx); err != nil {
				return fmt.Errorf("loading devices: %w", err)
			}

			handle := controller.NewPoller(client, st, interval).Start()
			defer handle.Stop()
			log.Info("Watching devices", "interval", interval, "count", st.Len())

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			render(st, ctrl, filter, sortKey)
			for {
				select {
				case <-sigChan:
					fmt.Println()
					return nil
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					render(st, ctrl, filter, sortKey)
				}
			}
		},
	}
}

func render(st *store.Store, ctrl *controller.Controller, filter model.Filter, sortKey model.SortKey) {
	fmt.Print("\033[H\033[2J")
	fmt.Printf("netwatch  %s\n\n", time.Now().Local().Format(time.RFC1123))
	if msg := ctrl.GlobalError(); msg != "" {
		fmt.Printf("! %s\n\n", msg)
	}
	printDevices(view.Project(st.Snapshot(), filter, sortKey))
}
