package network

import (
	"context"
	"slices"
	"strings"

	"github.com/pkg/errors"
	psnet "github.com/shirou/gopsutil/v4/net"
)

type Detector interface {
	CurrentLink(ctx context.Context) (Link, error)
}

// StaticDetector always reports the same link.
type StaticDetector Link

func (d StaticDetector) CurrentLink(ctx context.Context) (Link, error) {
	return Link(d), nil
}

// InterfaceDetector derives the current link from the host network
// interfaces, using interface name prefixes to tell wifi and cellular
// adapters apart.
type InterfaceDetector struct {
	wifiPrefixes     []string
	cellularPrefixes []string
	interfaces       func(ctx context.Context) (psnet.InterfaceStatList, error)
}

func (d *InterfaceDetector) CurrentLink(ctx context.Context) (Link, error) {
	interfaces, err := d.interfaces(ctx)
	if err != nil {
		return LinkNone, errors.Wrap(err, "could not list network interfaces")
	}

	return classifyInterfaces(interfaces, d.wifiPrefixes, d.cellularPrefixes), nil
}

// classifyInterfaces returns the preferred usable link: wifi first, then
// cellular, then any other connected interface.
func classifyInterfaces(interfaces psnet.InterfaceStatList, wifiPrefixes, cellularPrefixes []string) Link {
	link := LinkNone

	for _, iface := range interfaces {
		if !isConnected(iface) {
			continue
		}

		switch {
		case hasPrefix(iface.Name, wifiPrefixes):
			return LinkWifi
		case hasPrefix(iface.Name, cellularPrefixes):
			link = LinkCellular
		case link == LinkNone:
			link = LinkOther
		}
	}

	return link
}

func isConnected(iface psnet.InterfaceStat) bool {
	if !slices.Contains(iface.Flags, "up") || slices.Contains(iface.Flags, "loopback") {
		return false
	}

	return len(iface.Addrs) > 0
}

func hasPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func NewInterfaceDetector(wifiPrefixes, cellularPrefixes []string) *InterfaceDetector {
	return &InterfaceDetector{
		wifiPrefixes:     wifiPrefixes,
		cellularPrefixes: cellularPrefixes,
		interfaces:       psnet.InterfacesWithContext,
	}
}
