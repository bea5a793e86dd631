package device

import (
	"errors"
	"fmt"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/paularlott/cli"

	"github.com/kavia-common/netwatch/internal/config"
	"github.com/kavia-common/netwatch/internal/gateway"
	"github.com/kavia-common/netwatch/internal/model"
)

func Commands() []*cli.Command {
	return []*cli.Command{
		ListCommand(),
		AddCommand(),
		GetCommand(),
		UpdateCommand(),
		DeleteCommand(),
		PingCommand(),
		WatchCommand(),
	}
}

func serverFlags() []cli.Flag {
	return config.ClientFlags()
}

func newClient(cmd *cli.Command) *gateway.Client {
	return gateway.NewClient(cmd.GetString("server"), cmd.GetString("api-token"))
}

func printDevices(devices []model.Device) {
	if len(devices) == 0 {
		fmt.Println("No devices found")
		return
	}
	fmt.Printf("%-36s  %-20s  %-15s  %-8s  %-15s  %-8s  %s\n",
		"ID", "NAME", "IP", "TYPE", "LOCATION", "STATUS", "LAST CHECKED")
	for i := range devices {
		d := &devices[i]
		fmt.Printf("%-36s  %-20s  %-15s  %-8s  %-15s  %-8s  %s\n",
			d.ID, d.Name, d.IPAddress, d.Type, d.Location,
			d.EffectiveStatus(), formatChecked(d.LastChecked))
	}
}

func printDevice(device *model.Device) {
	fmt.Printf("ID:           %s\n", device.ID)
	fmt.Printf("Name:         %s\n", device.Name)
	fmt.Printf("IP Address:   %s\n", device.IPAddress)
	fmt.Printf("Type:         %s\n", device.Type)
	fmt.Printf("Location:     %s\n", device.Location)
	fmt.Printf("Status:       %s\n", device.EffectiveStatus())
	fmt.Printf("Last Checked: %s\n", formatChecked(device.LastChecked))
}

func formatChecked(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.RFC3339)
}

// printSubmissionError renders field messages when the failure carries
// them, one line per field, and falls back to the plain message.
func printSubmissionError(err error) {
	if errs, ok := err.(validation.Errors); ok {
		fields := make([]string, 0, len(errs))
		for field := range errs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			fmt.Printf("  %s: %s\n", field, errs[field])
		}
		return
	}

	var apiErr *gateway.Error
	if errors.As(err, &apiErr) && apiErr.HasFieldErrors() {
		fmt.Println(apiErr.Message)
		fields := make([]string, 0, len(apiErr.Details))
		for field := range apiErr.Details {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			fmt.Printf("  %s: %s\n", field, apiErr.Details[field])
		}
		return
	}

	fmt.Println(err)
}
