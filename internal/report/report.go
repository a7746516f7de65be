// Package report renders the resolved graph as text. Read-only over
// the store.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/projecteru2/ovsmap/internal/check"
	"github.com/projecteru2/ovsmap/internal/store"
	"github.com/projecteru2/ovsmap/internal/types"
)

// Summary renders per-kind entity counts and flow dump sizes.
func Summary(st *store.Store) string {
	var sb strings.Builder

	var dumpBytes uint64
	for _, br := range st.Bridges() {
		dumpBytes += uint64(len(br.FlowDump))
	}

	fmt.Fprintf(&sb, "bridges:    %s\n", humanize.Comma(int64(len(st.Bridges()))))
	fmt.Fprintf(&sb, "ports:      %s\n", humanize.Comma(int64(len(st.Ports()))))
	fmt.Fprintf(&sb, "flows:      %s (%s dumped)\n", humanize.Comma(int64(len(st.Flows()))), humanize.Bytes(dumpBytes))
	fmt.Fprintf(&sb, "vlans:      %s\n", humanize.Comma(int64(len(st.Vlans()))))
	fmt.Fprintf(&sb, "netns:      %s\n", humanize.Comma(int64(len(st.Netnses()))))
	fmt.Fprintf(&sb, "hostlinks:  %s\n", humanize.Comma(int64(len(st.HostLinks()))))
	fmt.Fprintf(&sb, "registers:  %s\n", humanize.Comma(int64(len(st.Registers()))))
	fmt.Fprintf(&sb, "ct zones:   %s\n", humanize.Comma(int64(len(st.CtZones()))))
	fmt.Fprintf(&sb, "mac flows:  %s\n", humanize.Comma(int64(len(st.MacFlows()))))

	return sb.String()
}

// Tree renders bridge → port → attachment lines, indented.
func Tree(st *store.Store) string {
	var sb strings.Builder

	for _, br := range st.Bridges() {
		fmt.Fprintf(&sb, "%s\n", br.Name)
		for _, p := range st.PortsOf(br.Name) {
			writePort(&sb, p)
		}
	}

	orphans := orphanPorts(st)
	if len(orphans) > 0 {
		sb.WriteString("(no bridge)\n")
		for _, p := range orphans {
			writePort(&sb, p)
		}
	}

	return sb.String()
}

func writePort(sb *strings.Builder, p *types.Port) {
	fmt.Fprintf(sb, "  %s", p.Name)
	if p.ID >= 0 && p.ID != types.OFPortLocal {
		fmt.Fprintf(sb, " (id %d)", p.ID)
	}
	if p.ID == types.OFPortLocal {
		sb.WriteString(" (local)")
	}
	if len(p.MAC) > 0 {
		fmt.Fprintf(sb, " %s", p.MAC)
	}
	sb.WriteString("\n")

	if p.VlanTag >= 0 {
		fmt.Fprintf(sb, "    vlan %d\n", p.VlanTag)
	}
	if len(p.Netns) > 0 {
		fmt.Fprintf(sb, "    netns %s\n", p.Netns)
	}
	if len(p.VethPeer) > 0 {
		fmt.Fprintf(sb, "    peer %s\n", p.VethPeer)
	}
	if p.Tunnel != nil {
		fmt.Fprintf(sb, "    tunnel %s %s -> %s\n", p.Tunnel.Type, p.Tunnel.LocalIP, p.Tunnel.RemoteIP)
	}
	if p.HostLink != nil {
		fmt.Fprintf(sb, "    link mtu %d state %s\n", p.HostLink.MTU, p.HostLink.State)
	}
}

func orphanPorts(st *store.Store) []*types.Port {
	var orphans []*types.Port
	for _, p := range st.Ports() {
		if len(p.Bridge) == 0 {
			orphans = append(orphans, p)
		}
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].Name < orphans[j].Name })
	return orphans
}

// Findings renders one line per finding.
func Findings(fs []check.Finding) string {
	if len(fs) == 0 {
		return "no findings\n"
	}

	var sb strings.Builder
	for _, f := range fs {
		fmt.Fprintf(&sb, "%s\n", f.String())
	}
	return sb.String()
}
