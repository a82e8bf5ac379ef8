// Network collector: the first active physical interface, its kind and
// negotiated link speed.
package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

// NetworkCollector fills the network section.
type NetworkCollector struct {
	src Source
}

func NewNetworkCollector(src Source) *NetworkCollector {
	return &NetworkCollector{src: src}
}

func (c *NetworkCollector) Name() string { return "network" }

// virtualPrefixes are interface names that never carry the machine's uplink.
var virtualPrefixes = []string{"lo", "docker", "veth", "br-", "virbr", "tun", "tap", "tailscale", "wg", "vmnet", "vEthernet"}

func (c *NetworkCollector) Collect(ctx context.Context, cfg Config) (Patch, error) {
	ifaces, err := c.src.Interfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("interfaces: %w", err)
	}

	sysRoot := sysRootOr(cfg)
	for _, iface := range ifaces {
		if !isUp(iface.Flags) || isVirtual(iface.Name) || len(iface.Addrs) == 0 {
			continue
		}
		link := model.Network{ConnectionType: connectionType(sysRoot, iface.Name)}
		if speed, ok := readSysInt(sysRoot, "class", "net", iface.Name, "speed"); ok && speed > 0 {
			link.SpeedMbps = model.Float(float64(speed))
		}
		return func(s *model.Scan) { s.Network = link }, nil
	}
	return nil, fmt.Errorf("no active network interface")
}

func isUp(flags []string) bool {
	for _, f := range flags {
		if f == "up" {
			return true
		}
	}
	return false
}

func isVirtual(name string) bool {
	for _, p := range virtualPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// connectionType classifies an interface as WiFi or Ethernet by its sysfs
// wireless directory or, failing that, its name.
func connectionType(sysRoot, name string) string {
	if _, err := os.Stat(filepath.Join(sysRoot, "class", "net", name, "wireless")); err == nil {
		return "WiFi"
	}
	upper := strings.ToUpper(name)
	for _, k := range []string{"WL", "WI-FI", "WIFI", "WIRELESS", "WLAN"} {
		if strings.HasPrefix(upper, k) {
			return "WiFi"
		}
	}
	for _, k := range []string{"ETH", "EN", "LAN", "REALTEK", "INTEL"} {
		if strings.HasPrefix(upper, k) {
			return "Ethernet"
		}
	}
	return "Connected"
}
