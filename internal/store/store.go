package store

import (
	"sort"

	"github.com/alphadose/haxmap"

	"github.com/projecteru2/ovsmap/internal/types"
)

// Store is the addressable entity graph.
//
// Buckets are insert-or-overwrite maps; the pipeline's stage-join
// discipline guarantees no two workers of one stage own the same key,
// so no transactional semantics are needed. Enumeration is always
// sorted by key, which is also the deterministic tie-break order for
// ambiguous resolution candidates.
type Store struct {
	bridges   *haxmap.Map[string, *types.Bridge]
	ports     *haxmap.Map[string, *types.Port]
	hostlinks *haxmap.Map[string, *types.HostLink]
	flows     *haxmap.Map[string, *types.Flow]
	vlans     *haxmap.Map[int, *types.Vlan]
	netns     *haxmap.Map[string, *types.Netns]
	registers *haxmap.Map[string, *types.Register]
	ctzones   *haxmap.Map[int, *types.CtZone]
	macflows  *haxmap.Map[string, *types.MacFlow]
}

// New .
func New() *Store {
	return &Store{
		bridges:   haxmap.New[string, *types.Bridge](),
		ports:     haxmap.New[string, *types.Port](),
		hostlinks: haxmap.New[string, *types.HostLink](),
		flows:     haxmap.New[string, *types.Flow](),
		vlans:     haxmap.New[int, *types.Vlan](),
		netns:     haxmap.New[string, *types.Netns](),
		registers: haxmap.New[string, *types.Register](),
		ctzones:   haxmap.New[int, *types.CtZone](),
		macflows:  haxmap.New[string, *types.MacFlow](),
	}
}

// EnsureBridge returns the bridge, creating it on first sight.
func (s *Store) EnsureBridge(name string) *types.Bridge {
	br, _ := s.bridges.GetOrSet(name, types.NewBridge(name))
	return br
}

// Bridge .
func (s *Store) Bridge(name string) (*types.Bridge, bool) {
	return s.bridges.Get(name)
}

// Bridges enumerates bridges sorted by name.
func (s *Store) Bridges() []*types.Bridge {
	return sortedValues(s.bridges)
}

// EnsurePort .
func (s *Store) EnsurePort(name string) *types.Port {
	p, _ := s.ports.GetOrSet(name, types.NewPort(name))
	return p
}

// Port .
func (s *Store) Port(name string) (*types.Port, bool) {
	return s.ports.Get(name)
}

// Ports enumerates ports sorted by name.
func (s *Store) Ports() []*types.Port {
	return sortedValues(s.ports)
}

// PortsOf lists the ports of one bridge, sorted by name.
func (s *Store) PortsOf(bridge string) []*types.Port {
	br, ok := s.bridges.Get(bridge)
	if !ok {
		return nil
	}

	names := br.Ports.ToSlice()
	sort.Strings(names)

	ports := make([]*types.Port, 0, len(names))
	for _, name := range names {
		if p, ok := s.ports.Get(name); ok {
			ports = append(ports, p)
		}
	}
	return ports
}

// PortByMAC finds the port with the hardware addr; the lowest port
// name wins when more than one carries the same addr.
func (s *Store) PortByMAC(mac string) (*types.Port, bool) {
	for _, p := range s.Ports() {
		if p.MAC == mac {
			return p, true
		}
	}
	return nil, false
}

// PortByID finds a bridge's port by its numeric id.
func (s *Store) PortByID(bridge string, id int) (*types.Port, bool) {
	for _, p := range s.PortsOf(bridge) {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// UpsertHostLink .
func (s *Store) UpsertHostLink(hl *types.HostLink) {
	s.hostlinks.Set(hostLinkKey(hl.Netns, hl.Name), hl)
}

// HostLink looks a link up by namespace ("" = root) and name.
func (s *Store) HostLink(netns, name string) (*types.HostLink, bool) {
	return s.hostlinks.Get(hostLinkKey(netns, name))
}

// HostLinks enumerates links sorted by (netns, name).
func (s *Store) HostLinks() []*types.HostLink {
	return sortedValues(s.hostlinks)
}

// HostLinkByIndex finds a link by ifindex within one namespace
// ("" = root); lowest key wins on the degenerate duplicate case.
func (s *Store) HostLinkByIndex(netns string, index int) (*types.HostLink, bool) {
	for _, hl := range s.HostLinks() {
		if hl.Netns == netns && hl.Index == index {
			return hl, true
		}
	}
	return nil, false
}

func hostLinkKey(netns, name string) string {
	return netns + "/" + name
}

// UpsertFlow .
func (s *Store) UpsertFlow(f *types.Flow) {
	s.flows.Set(f.Key, f)
}

// Flow .
func (s *Store) Flow(key string) (*types.Flow, bool) {
	return s.flows.Get(key)
}

// Flows enumerates flows sorted by key.
func (s *Store) Flows() []*types.Flow {
	return sortedValues(s.flows)
}

// FlowsOf lists one bridge's flows sorted by key.
func (s *Store) FlowsOf(bridge string) []*types.Flow {
	var flows []*types.Flow
	for _, f := range s.Flows() {
		if f.Bridge == bridge {
			flows = append(flows, f)
		}
	}
	return flows
}

// EnsureVlan .
func (s *Store) EnsureVlan(id int) *types.Vlan {
	v, _ := s.vlans.GetOrSet(id, types.NewVlan(id))
	return v
}

// Vlan .
func (s *Store) Vlan(id int) (*types.Vlan, bool) {
	return s.vlans.Get(id)
}

// Vlans enumerates VLANs sorted by id.
func (s *Store) Vlans() []*types.Vlan {
	var ids []int
	s.vlans.ForEach(func(id int, _ *types.Vlan) bool {
		ids = append(ids, id)
		return true
	})
	sort.Ints(ids)

	vlans := make([]*types.Vlan, 0, len(ids))
	for _, id := range ids {
		if v, ok := s.vlans.Get(id); ok {
			vlans = append(vlans, v)
		}
	}
	return vlans
}

// EnsureNetns .
func (s *Store) EnsureNetns(name string) *types.Netns {
	ns, _ := s.netns.GetOrSet(name, types.NewNetns(name))
	return ns
}

// Netns .
func (s *Store) Netns(name string) (*types.Netns, bool) {
	return s.netns.Get(name)
}

// Netnses enumerates namespaces sorted by name.
func (s *Store) Netnses() []*types.Netns {
	return sortedValues(s.netns)
}

// UpsertRegister .
func (s *Store) UpsertRegister(r *types.Register) {
	s.registers.Set(r.Key, r)
}

// Register .
func (s *Store) Register(key string) (*types.Register, bool) {
	return s.registers.Get(key)
}

// Registers enumerates registers sorted by key.
func (s *Store) Registers() []*types.Register {
	return sortedValues(s.registers)
}

// UpsertCtZone .
func (s *Store) UpsertCtZone(z *types.CtZone) {
	s.ctzones.Set(z.VlanID, z)
}

// CtZone .
func (s *Store) CtZone(vlanID int) (*types.CtZone, bool) {
	return s.ctzones.Get(vlanID)
}

// CtZones enumerates zones sorted by VLAN id.
func (s *Store) CtZones() []*types.CtZone {
	var ids []int
	s.ctzones.ForEach(func(id int, _ *types.CtZone) bool {
		ids = append(ids, id)
		return true
	})
	sort.Ints(ids)

	zones := make([]*types.CtZone, 0, len(ids))
	for _, id := range ids {
		if z, ok := s.ctzones.Get(id); ok {
			zones = append(zones, z)
		}
	}
	return zones
}

// UpsertMacFlow .
func (s *Store) UpsertMacFlow(mf *types.MacFlow) {
	s.macflows.Set(mf.Key, mf)
}

// MacFlows enumerates mod_dl_src groupings sorted by key.
func (s *Store) MacFlows() []*types.MacFlow {
	return sortedValues(s.macflows)
}

func sortedValues[V any](m *haxmap.Map[string, V]) []V {
	var keys []string
	m.ForEach(func(k string, _ V) bool {
		keys = append(keys, k)
		return true
	})
	sort.Strings(keys)

	vals := make([]V, 0, len(keys))
	for _, k := range keys {
		if v, ok := m.Get(k); ok {
			vals = append(vals, v)
		}
	}
	return vals
}
