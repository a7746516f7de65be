package types

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// Kind of an entity in the topology graph.
type Kind string

const (
	KindBridge   Kind = "bridge"
	KindPort     Kind = "port"
	KindFlow     Kind = "flow"
	KindVlan     Kind = "vlan"
	KindNetns    Kind = "netns"
	KindHostLink Kind = "hostlink"
	KindRegister Kind = "register"
	KindCtZone   Kind = "ctzone"
	KindMacFlow  Kind = "macflow"
)

// OFPortLocal is the numeric id carried by the LOCAL bridge port.
const OFPortLocal = 65534

// Bridge groups ports and flow tables of one virtual switch instance.
type Bridge struct {
	Name    string
	Ports   mapset.Set[string]
	Tables  mapset.Set[int]
	Cookies mapset.Set[string]
	// FlowDump keeps the raw dump the flows were derived from.
	FlowDump string
}

// NewBridge .
func NewBridge(name string) *Bridge {
	return &Bridge{
		Name:    name,
		Ports:   mapset.NewSet[string](),
		Tables:  mapset.NewSet[int](),
		Cookies: mapset.NewSet[string](),
	}
}

// Tunnel describes a tunnel endpoint attached to a port.
type Tunnel struct {
	Type     string
	LocalIP  string
	RemoteIP string
}

// HostLink is a host-side network interface observation.
//
// Before the merge stage it lives in the store on its own;
// after merging it is also carried by the matching Port.
type HostLink struct {
	Name      string
	Index     int
	PeerIndex int
	MAC       string
	MTU       int
	State     string
	// Netns is empty for root-namespace links.
	Netns string
	// PortRef back-links the merged Port, empty until merged.
	PortRef string
}

// Port is an attachment point on a bridge.
//
// A Port may be observed from the switch side, the host side, or
// both; both observations merge into the one entity keyed by name.
type Port struct {
	Name   string
	ID     int
	Bridge string
	MAC    string
	// VlanTag is -1 until a tag is observed.
	VlanTag  int
	HostLink *HostLink
	Netns    string
	VethPeer string
	Tunnel   *Tunnel
	// Registers holds keys of registers resolved to this port.
	Registers mapset.Set[string]
}

// NewPort .
func NewPort(name string) *Port {
	return &Port{
		Name:      name,
		ID:        -1,
		VlanTag:   -1,
		Registers: mapset.NewSet[string](),
	}
}

// Flow is one match/action rule; read-only once parsed.
type Flow struct {
	Key    string
	Bridge string
	Table  int
	Cookie string
	Raw    string
	// Vlans back-links VLAN entities when flow cross-linking is on.
	Vlans mapset.Set[int]
}

// NewFlow .
func NewFlow(bridge string, seq int, table int, cookie, raw string) *Flow {
	return &Flow{
		Key:    FlowKey(bridge, seq),
		Bridge: bridge,
		Table:  table,
		Cookie: cookie,
		Raw:    raw,
		Vlans:  mapset.NewSet[int](),
	}
}

// FlowKey .
func FlowKey(bridge string, seq int) string {
	return fmt.Sprintf("%s/%d", bridge, seq)
}

// Vlan segments traffic on ports and, optionally, flows.
type Vlan struct {
	ID        int
	Ports     mapset.Set[string]
	Flows     mapset.Set[string]
	Registers mapset.Set[string]
}

// NewVlan .
func NewVlan(id int) *Vlan {
	return &Vlan{
		ID:        id,
		Ports:     mapset.NewSet[string](),
		Flows:     mapset.NewSet[string](),
		Registers: mapset.NewSet[string](),
	}
}

// Netns is a network namespace and the ports attached inside it.
type Netns struct {
	Name  string
	Ports mapset.Set[string]
	Links []string
}

// NewNetns .
func NewNetns(name string) *Netns {
	return &Netns{
		Name:  name,
		Ports: mapset.NewSet[string](),
	}
}

// Register is a firewall metadata field pulled from a flow.
//
// reg5 resolves to a port, reg6 to a VLAN; other registers stay
// opaque literals.
type Register struct {
	Key    string
	Bridge string
	Cookie string
	Name   string
	Value  string
	// PortRef / VlanRef are the resolved targets; VlanRef is -1 when unset.
	PortRef string
	VlanRef int
	Opaque  bool
}

// RegisterKey .
func RegisterKey(bridge, cookie, name string) string {
	return fmt.Sprintf("%s/%s/%s", bridge, cookie, name)
}

// CtZone is a connection-tracking context keyed by VLAN id, 0 = unzoned.
type CtZone struct {
	VlanID  int
	Entries []string
}

// MacFlowDirection .
const (
	DirectionIngress = "ingress"
	DirectionEgress  = "egress"
)

// MacFlow is a mod_dl_src flow grouping; PortRef stays empty when the
// local addr resolves to no known port, preserving the gap.
type MacFlow struct {
	Key       string
	Direction string
	Target    string
	Local     string
	PortRef   string
}

// MacFlowKey .
func MacFlowKey(direction, target, local string) string {
	return fmt.Sprintf("%s/%s/%s", direction, target, local)
}
