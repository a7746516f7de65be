// Package resolve builds the cross-referenced graph: it merges
// entities discovered independently and records forward/backward
// relation pairs. Stages depend on the store state their predecessors
// left behind, so their order is fixed.
package resolve

import (
	"context"
	"sort"
	"strconv"

	"github.com/samber/lo"

	"github.com/projecteru2/ovsmap/configs"
	"github.com/projecteru2/ovsmap/internal/extract"
	"github.com/projecteru2/ovsmap/internal/ovs"
	"github.com/projecteru2/ovsmap/internal/pipeline"
	"github.com/projecteru2/ovsmap/internal/store"
	"github.com/projecteru2/ovsmap/internal/types"
	"github.com/projecteru2/ovsmap/pkg/utils"
)

// Stage names, also the dependency vocabulary.
const (
	StageBridges     = "bridges"
	StageBridgePorts = "bridge-ports"
	StageFlows       = "flows"
	StageHostMerge   = "host-merge"
	StagePortVlans   = "port-vlans"
	StagePortMACs    = "port-macs"
	StageNetnsList   = "netns-list"
	StageNetnsAttach = "netns-attach"
	StageRegisters   = "registers"
	StageMacFlows    = "mac-flows"
	StageConntrack   = "conntrack"
)

// Resolver owns the full stage list over one source and store.
type Resolver struct {
	src ovs.Source
	st  *store.Store
	cfg *configs.Config
}

// New .
func New(src ovs.Source, st *store.Store, cfg *configs.Config) *Resolver {
	return &Resolver{src: src, st: st, cfg: cfg}
}

// Store .
func (r *Resolver) Store() *store.Store {
	return r.st
}

// Stages returns the pipeline in dependency order.
func (r *Resolver) Stages() []pipeline.Stage {
	return []pipeline.Stage{
		{Name: StageBridges, Units: r.bridgeUnits},
		{Name: StageBridgePorts, Deps: []string{StageBridges}, Units: r.bridgePortUnits},
		{Name: StageFlows, Deps: []string{StageBridges}, Units: r.flowUnits},
		{Name: StageHostMerge, Deps: []string{StageBridgePorts}, Units: r.hostMergeUnits},
		{Name: StagePortVlans, Deps: []string{StageBridgePorts, StageFlows}, Units: r.portVlanUnits},
		{Name: StagePortMACs, Deps: []string{StageBridgePorts}, Units: r.portMACUnits},
		{Name: StageNetnsList, Units: r.netnsListUnits},
		{Name: StageNetnsAttach, Deps: []string{StageNetnsList, StageHostMerge}, Units: r.netnsAttachUnits},
		{Name: StageRegisters, Deps: []string{StageFlows, StageBridgePorts, StagePortVlans}, Units: r.registerUnits},
		{Name: StageMacFlows, Deps: []string{StageFlows, StagePortMACs, StageHostMerge}, Units: r.macFlowUnits},
		{Name: StageConntrack, Deps: []string{StagePortVlans}, Units: r.conntrackUnits},
	}
}

func (r *Resolver) bridgeUnits(context.Context) ([]pipeline.Unit, error) {
	return []pipeline.Unit{{Name: "list-bridges", Fn: func(ctx context.Context) error {
		out, err := r.src.Query(ctx, ovs.BridgeList, "")
		if err != nil {
			return err
		}
		for _, name := range extract.Bridges(out) {
			r.st.EnsureBridge(name)
		}
		return nil
	}}}, nil
}

// bridgePortUnits attaches every port of a bridge's port map and
// links Bridge↔Port. One unit per bridge; a bridge's ports are its
// own keys, so units never collide.
func (r *Resolver) bridgePortUnits(context.Context) ([]pipeline.Unit, error) {
	var units []pipeline.Unit
	for _, br := range r.st.Bridges() {
		br := br
		units = append(units, pipeline.Unit{Name: br.Name, Fn: func(ctx context.Context) error {
			out, err := r.src.Query(ctx, ovs.BridgePortMap, br.Name)
			if err != nil {
				return err
			}

			for _, rec := range extract.PortMap(out) {
				p := r.st.EnsurePort(rec.Name)
				p.ID = rec.ID
				p.Bridge = br.Name
				if len(rec.MAC) > 0 {
					p.MAC = rec.MAC
				}
				br.Ports.Add(p.Name)
			}
			return nil
		}})
	}
	return units, nil
}

func (r *Resolver) flowUnits(context.Context) ([]pipeline.Unit, error) {
	var units []pipeline.Unit
	for _, br := range r.st.Bridges() {
		br := br
		units = append(units, pipeline.Unit{Name: br.Name, Fn: func(ctx context.Context) error {
			out, err := r.src.Query(ctx, ovs.FlowDump, br.Name)
			if err != nil {
				return err
			}

			br.FlowDump = out
			for seq, rec := range extract.Flows(out) {
				f := types.NewFlow(br.Name, seq, rec.Table, rec.Cookie, rec.Raw)
				r.st.UpsertFlow(f)
				br.Tables.Add(rec.Table)
				br.Cookies.Add(rec.Cookie)
			}
			return nil
		}})
	}
	return units, nil
}

// hostMergeUnits merges switch-side ports with host-side interfaces
// by name equality. Finding no counterpart is not an error; the port
// simply stays unmerged.
func (r *Resolver) hostMergeUnits(context.Context) ([]pipeline.Unit, error) {
	return []pipeline.Unit{{Name: "interface-list", Fn: func(ctx context.Context) error {
		out, err := r.src.Query(ctx, ovs.InterfaceList, "")
		if err != nil {
			return err
		}

		for _, rec := range extract.HostLinks(out) {
			hl := newHostLink(rec, "")
			if p, ok := r.st.Port(rec.Name); ok {
				p.HostLink = hl
				hl.PortRef = p.Name
			}
			r.st.UpsertHostLink(hl)
		}
		return nil
	}}}, nil
}

func (r *Resolver) portVlanUnits(context.Context) ([]pipeline.Unit, error) {
	units := []pipeline.Unit{{Name: "port-tags", Fn: func(ctx context.Context) error {
		out, err := r.src.Query(ctx, ovs.PortVlanMap, "")
		if err != nil {
			return err
		}

		for _, rec := range extract.PortVlans(out) {
			p := r.st.EnsurePort(rec.Name)
			p.VlanTag = rec.Tag
			r.st.EnsureVlan(rec.Tag).Ports.Add(p.Name)
		}
		return nil
	}}}

	if !r.cfg.CheckFlowVlans {
		return units, nil
	}

	// flow-tagged VLANs may legitimately have no port, which is why
	// this cross-link is opt-in
	for _, br := range r.st.Bridges() {
		br := br
		units = append(units, pipeline.Unit{Name: "flow-tags/" + br.Name, Fn: func(context.Context) error {
			for _, f := range r.st.FlowsOf(br.Name) {
				if tag := extract.FlowFields(f.Raw).DlVlan; tag >= 0 {
					v := r.st.EnsureVlan(tag)
					v.Flows.Add(f.Key)
					f.Vlans.Add(tag)
				}
			}
			return nil
		}})
	}
	return units, nil
}

// portMACUnits fills hardware addrs missing from the port map by
// cross-referencing tunnel-endpoint metadata, and carries the tunnel
// descriptor onto ports whose metadata block has endpoint options.
func (r *Resolver) portMACUnits(context.Context) ([]pipeline.Unit, error) {
	return []pipeline.Unit{{Name: "tunnel-metadata", Fn: func(ctx context.Context) error {
		out, err := r.src.Query(ctx, ovs.TunnelMetadata, "")
		if err != nil {
			return err
		}

		recs := extract.TunnelMeta(out)
		byName := lo.KeyBy(recs, func(rec extract.TunnelRec) string { return rec.Name })

		for _, p := range r.st.Ports() {
			rec, ok := byName[p.Name]
			if !ok {
				continue
			}
			if len(p.MAC) == 0 && len(rec.MAC) > 0 {
				p.MAC = rec.MAC
			}
			if len(rec.RemoteIP) > 0 {
				p.Tunnel = &types.Tunnel{Type: rec.Type, LocalIP: rec.LocalIP, RemoteIP: rec.RemoteIP}
			}
		}
		return nil
	}}}, nil
}

func (r *Resolver) netnsListUnits(context.Context) ([]pipeline.Unit, error) {
	return []pipeline.Unit{{Name: "list-netns", Fn: func(ctx context.Context) error {
		out, err := r.src.Query(ctx, ovs.NamespaceList, "")
		if err != nil {
			return err
		}
		for _, name := range extract.Namespaces(out) {
			r.st.EnsureNetns(name)
		}
		return nil
	}}}, nil
}

// netnsAttachUnits decides per namespace whether a port lives inside
// it directly (same name on both sides) or through a veth pair (the
// namespace-side name differs; the peer is paired by ifindex).
func (r *Resolver) netnsAttachUnits(context.Context) ([]pipeline.Unit, error) {
	var units []pipeline.Unit
	for _, ns := range r.st.Netnses() {
		ns := ns
		units = append(units, pipeline.Unit{Name: ns.Name, Fn: func(ctx context.Context) error {
			out, err := r.src.Query(ctx, ovs.NamespaceInterfaces, ns.Name)
			if err != nil {
				return err
			}

			recs := extract.HostLinks(out)
			names := lo.Map(recs, func(rec extract.HostLinkRec, _ int) string { return rec.Name })
			ns.Links = utils.MergeStrings(ns.Links, names)

			for _, rec := range recs {
				if rec.Name == "lo" {
					continue
				}
				r.st.UpsertHostLink(newHostLink(rec, ns.Name))

				if p, ok := r.st.Port(rec.Name); ok {
					p.Netns = ns.Name
					ns.Ports.Add(p.Name)
					continue
				}

				r.attachVethPeer(rec, ns)
			}
			return nil
		}})
	}
	return units, nil
}

func (r *Resolver) attachVethPeer(rec extract.HostLinkRec, ns *types.Netns) {
	peer, ok := r.peerPort(rec)
	if !ok {
		return
	}

	inside := r.st.EnsurePort(rec.Name)
	inside.Netns = ns.Name
	inside.MAC = rec.MAC
	ns.Ports.Add(inside.Name)

	inside.VethPeer = peer.Name
	peer.VethPeer = inside.Name
}

// peerPort pairs a namespace-side link with its root-side port, by
// ifindex first, then by a literal `@peer` name remainder.
func (r *Resolver) peerPort(rec extract.HostLinkRec) (*types.Port, bool) {
	if rec.PeerIndex >= 0 {
		if hl, ok := r.st.HostLinkByIndex("", rec.PeerIndex); ok {
			if p, ok := r.st.Port(hl.Name); ok {
				return p, true
			}
		}
		return nil, false
	}
	if len(rec.PeerName) > 0 {
		return r.st.Port(rec.PeerName)
	}
	return nil, false
}

// registerUnits resolves reg5 to a port and reg6 to a VLAN by
// hex-to-decimal conversion; every other register stays opaque.
func (r *Resolver) registerUnits(context.Context) ([]pipeline.Unit, error) {
	var units []pipeline.Unit
	for _, br := range r.st.Bridges() {
		br := br
		units = append(units, pipeline.Unit{Name: br.Name, Fn: func(context.Context) error {
			for _, f := range r.st.FlowsOf(br.Name) {
				fields := extract.FlowFields(f.Raw)
				for _, name := range sortedRegNames(fields.Regs) {
					r.resolveRegister(br.Name, f.Cookie, name, fields.Regs[name])
				}
			}
			return nil
		}})
	}
	return units, nil
}

func (r *Resolver) resolveRegister(bridge, cookie, name, value string) {
	reg := &types.Register{
		Key:     types.RegisterKey(bridge, cookie, name),
		Bridge:  bridge,
		Cookie:  cookie,
		Name:    name,
		Value:   value,
		VlanRef: -1,
	}

	dec, err := utils.HexToDec(value)
	switch {
	case err != nil:
		reg.Opaque = true

	case name == "reg5":
		if p, ok := r.st.PortByID(bridge, dec); ok {
			reg.PortRef = p.Name
			p.Registers.Add(reg.Key)
		}

	case name == "reg6":
		if v, ok := r.st.Vlan(dec); ok {
			reg.VlanRef = v.ID
			v.Registers.Add(reg.Key)
		}

	default:
		reg.Opaque = true
	}

	r.st.UpsertRegister(reg)
}

// macFlowUnits classifies every source-rewriting flow. A matched
// destination means the rewrite target is the externally visible addr
// and the destination is the local endpoint (ingress); otherwise the
// matched source is local (egress).
func (r *Resolver) macFlowUnits(context.Context) ([]pipeline.Unit, error) {
	var units []pipeline.Unit
	for _, br := range r.st.Bridges() {
		br := br
		units = append(units, pipeline.Unit{Name: br.Name, Fn: func(context.Context) error {
			for _, f := range r.st.FlowsOf(br.Name) {
				fields := extract.FlowFields(f.Raw)
				if len(fields.ModDlSrc) == 0 {
					continue
				}

				direction, local := types.DirectionEgress, fields.DlSrc
				if len(fields.DlDst) > 0 {
					direction, local = types.DirectionIngress, fields.DlDst
				}

				mf := &types.MacFlow{
					Key:       types.MacFlowKey(direction, fields.ModDlSrc, local),
					Direction: direction,
					Target:    fields.ModDlSrc,
					Local:     local,
				}
				if p, ok := r.portByMACWithFallback(local); ok {
					mf.PortRef = p.Name
				}
				// an unresolved local addr stays an empty leaf on purpose
				r.st.UpsertMacFlow(mf)
			}
			return nil
		}})
	}
	return units, nil
}

func (r *Resolver) portByMACWithFallback(mac string) (*types.Port, bool) {
	if p, ok := r.st.PortByMAC(mac); ok {
		return p, true
	}
	if !r.cfg.MACPrefixFallback {
		return nil, false
	}

	alias, swapped := utils.MACPrefixAlias(mac)
	if !swapped {
		return nil, false
	}
	return r.st.PortByMAC(alias)
}

func (r *Resolver) conntrackUnits(context.Context) ([]pipeline.Unit, error) {
	zones := []int{0}
	for _, v := range r.st.Vlans() {
		zones = append(zones, v.ID)
	}
	zones = lo.Uniq(zones)

	var units []pipeline.Unit
	for _, zone := range zones {
		zone := zone
		units = append(units, pipeline.Unit{Name: "zone-" + strconv.Itoa(zone), Fn: func(ctx context.Context) error {
			out, err := r.src.Query(ctx, ovs.ConntrackDump, strconv.Itoa(zone))
			if err != nil {
				return err
			}
			r.st.UpsertCtZone(&types.CtZone{VlanID: zone, Entries: extract.Conntrack(out)})
			return nil
		}})
	}
	return units, nil
}

func sortedRegNames(regs map[string]string) []string {
	names := lo.Keys(regs)
	sort.Strings(names)
	return names
}

func newHostLink(rec extract.HostLinkRec, netns string) *types.HostLink {
	return &types.HostLink{
		Name:      rec.Name,
		Index:     rec.Index,
		PeerIndex: rec.PeerIndex,
		MAC:       rec.MAC,
		MTU:       rec.MTU,
		State:     rec.State,
		Netns:     netns,
	}
}
