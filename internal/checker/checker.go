// Package checker decides whether a device is reachable. It tries ICMP
// first when raw sockets are available, then ARP for hosts on the local
// segment, then a plain TCP dial against common management ports.
package checker

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/go-ping/ping"
	"github.com/j-keck/arping"

	"github.com/kavia-common/netwatch/internal/log"
	"github.com/kavia-common/netwatch/internal/model"
)

var fallbackPorts = []int{22, 80, 443}

// Checker probes device addresses and reports online/offline.
type Checker struct {
	timeout    time.Duration
	privileged bool
}

// New creates a checker with the given per-probe timeout.
func New(timeout time.Duration) *Checker {
	privileged := os.Geteuid() == 0 || canUseRawSocket()
	return &Checker{timeout: timeout, privileged: privileged}
}

// Check probes ip and returns its status. A malformed address is
// reported offline rather than erroring; the status columns must
// always end up in a defined state.
func (c *Checker) Check(ctx context.Context, ip string) string {
	addr := net.ParseIP(ip)
	if addr == nil {
		log.Debug("Unparseable device address", "ip", ip)
		return model.StatusOffline
	}

	if c.privileged {
		if alive, err := c.icmpProbe(ip); err == nil && alive {
			return model.StatusOnline
		}
		if c.arpProbe(addr) {
			return model.StatusOnline
		}
	}

	if c.tcpProbe(ctx, ip) {
		return model.StatusOnline
	}
	return model.StatusOffline
}

// icmpProbe sends a single ICMP echo request.
func (c *Checker) icmpProbe(ip string) (bool, error) {
	pinger, err := ping.NewPinger(ip)
	if err != nil {
		return false, fmt.Errorf("creating pinger: %w", err)
	}

	pinger.Count = 1
	pinger.Timeout = c.timeout
	pinger.SetPrivileged(true)
	pinger.Run()

	stats := pinger.Statistics()
	return stats.PacketsRecv > 0, nil
}

// arpProbe asks for the MAC of a host; an answer means the host is up
// even when it drops ICMP. Only works on the local segment.
func (c *Checker) arpProbe(addr net.IP) bool {
	arping.SetTimeout(c.timeout)
	_, _, err := arping.Ping(addr)
	return err == nil
}

// tcpProbe dials common service ports; any accepted connection counts
// as online.
func (c *Checker) tcpProbe(ctx context.Context, ip string) bool {
	dialer := &net.Dialer{Timeout: c.timeout}
	for _, port := range fallbackPorts {
		conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(ip, fmt.Sprintf("%d", port)))
		if err == nil {
			conn.Close()
			return true
		}
		if ctx.Err() != nil {
			return false
		}
	}
	return false
}

// canUseRawSocket checks if we can use raw sockets
func canUseRawSocket() bool {
	conn, err := net.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
