// Package ovs is the raw query collaborator: it turns a query kind
// plus optional scope into a command line, runs it, and hands back
// raw text. Parsing lives elsewhere.
package ovs

import "context"

// Kind of a raw query.
type Kind string

const (
	BridgeList          Kind = "bridge-list"
	BridgePortMap       Kind = "bridge-port-map"
	FlowDump            Kind = "flow-dump"
	PortVlanMap         Kind = "port-vlan-map"
	InterfaceList       Kind = "interface-list"
	NamespaceList       Kind = "namespace-list"
	NamespaceInterfaces Kind = "namespace-interfaces"
	TunnelMetadata      Kind = "tunnel-metadata"
	RegisterDump        Kind = "register-dump"
	ConntrackDump       Kind = "conntrack-dump"
)

// Source supplies raw tool output. A live host and a pre-captured
// snapshot are indistinguishable behind this interface.
type Source interface {
	Query(ctx context.Context, kind Kind, scope string) (string, error)
}
