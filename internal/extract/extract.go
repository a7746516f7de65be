// Package extract turns raw tool output into typed records.
//
// Extraction is pattern-based per entity kind: each kind owns its
// recognized line shape, unmatched lines are skipped silently, and
// empty input yields zero records. Extractors never touch the entity
// store; callers insert.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/projecteru2/ovsmap/internal/types"
	"github.com/projecteru2/ovsmap/pkg/utils"
)

// PortRec is one switch-side port observation from a bridge port map.
type PortRec struct {
	ID   int
	Name string
	MAC  string
}

// PortVlanRec is a port's VLAN tag observation.
type PortVlanRec struct {
	Name string
	Tag  int
}

// HostLinkRec is one host-side interface observation.
type HostLinkRec struct {
	Index int
	Name  string
	// PeerIndex is the `@ifN` pairing, -1 when absent; PeerName holds
	// a literal `@peer` suffix instead when the index form is missing.
	PeerIndex int
	PeerName  string
	MTU       int
	State     string
	MAC       string
}

// Bridges pulls bridge names out of a bridge-list dump, one per line.
func Bridges(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		if name := strings.TrimSpace(line); len(name) > 0 {
			names = append(names, name)
		}
	}
	return names
}

//  1(tap0): addr:fe:16:3e:00:00:01
//  LOCAL(br-int): addr:aa:bb:cc:dd:ee:ff
var portLineRE = regexp.MustCompile(`^\s*(\d+|LOCAL)\(([^)]+)\):(?:\s+addr:([0-9A-Fa-f:]{17}))?`)

// PortMap pulls (id, name, addr) triples out of a bridge port map.
func PortMap(text string) []PortRec {
	var recs []PortRec
	for _, line := range strings.Split(text, "\n") {
		m := portLineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		rec := PortRec{Name: m[2]}
		if m[1] == "LOCAL" {
			rec.ID = types.OFPortLocal
		} else {
			rec.ID, _ = strconv.Atoi(m[1])
		}
		if len(m[3]) > 0 {
			if mac, err := utils.NormalizeMAC(m[3]); err == nil {
				rec.MAC = mac
			}
		}

		recs = append(recs, rec)
	}
	return recs
}

// PortVlans pulls (name, tag) pairs out of label-style port listings,
// records separated by blank lines. Ports without a tag are skipped.
func PortVlans(text string) []PortVlanRec {
	var recs []PortVlanRec

	name, tag := "", -1
	flush := func() {
		if len(name) > 0 && tag >= 0 {
			recs = append(recs, PortVlanRec{Name: name, Tag: tag})
		}
		name, tag = "", -1
	}

	for _, line := range strings.Split(text, "\n") {
		if len(strings.TrimSpace(line)) == 0 {
			flush()
			continue
		}

		label, value := labelValue(line)
		switch label {
		case "name":
			name = value
		case "tag":
			if v, err := strconv.Atoi(value); err == nil {
				tag = v
			}
		}
	}
	flush()

	return recs
}

// 3: tap0@if7: <BROADCAST,MULTICAST,UP> mtu 1500 ... state UP ... link/ether fe:16:3e:00:00:01 ...
var (
	linkLineRE  = regexp.MustCompile(`^(\d+):\s+([^:@\s]+)(@if(\d+)|@\S+)?:\s+<[^>]*>\s+mtu\s+(\d+)`)
	linkStateRE = regexp.MustCompile(`\bstate\s+(\S+)`)
	linkEtherRE = regexp.MustCompile(`link/ether\s+([0-9A-Fa-f:]{17})`)
)

// HostLinks pulls interface records out of one-line `ip -o link` output.
func HostLinks(text string) []HostLinkRec {
	var recs []HostLinkRec
	for _, line := range strings.Split(text, "\n") {
		m := linkLineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		rec := HostLinkRec{Name: m[2], PeerIndex: -1}
		rec.Index, _ = strconv.Atoi(m[1])
		switch {
		case len(m[4]) > 0:
			rec.PeerIndex, _ = strconv.Atoi(m[4])
		case len(m[3]) > 1:
			rec.PeerName = m[3][1:]
		}
		rec.MTU, _ = strconv.Atoi(m[5])

		if sm := linkStateRE.FindStringSubmatch(line); sm != nil {
			rec.State = sm[1]
		}
		if em := linkEtherRE.FindStringSubmatch(line); em != nil {
			if mac, err := utils.NormalizeMAC(em[1]); err == nil {
				rec.MAC = mac
			}
		}

		recs = append(recs, rec)
	}
	return recs
}

// Namespaces pulls names out of a namespace list; the trailing
// "(id: N)" decoration is dropped.
func Namespaces(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 {
			names = append(names, fields[0])
		}
	}
	return names
}

// Conntrack pulls raw entries out of a conntrack dump, one per line.
func Conntrack(text string) []string {
	var entries []string
	for _, line := range strings.Split(text, "\n") {
		if entry := strings.TrimSpace(line); len(entry) > 0 {
			entries = append(entries, entry)
		}
	}
	return entries
}

func labelValue(line string) (string, string) {
	label, value := utils.PartLeft(line, ":")
	return strings.TrimSpace(label), strings.Trim(strings.TrimSpace(value), `"`)
}
