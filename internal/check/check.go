// Package check walks the resolved graph and reports every one-sided
// relation as a finding. Findings are diagnostics only; the graph is
// never repaired.
package check

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/projecteru2/ovsmap/internal/store"
	"github.com/projecteru2/ovsmap/internal/types"
)

// Finding is one dangling or asymmetric reference.
type Finding struct {
	Kind   types.Kind
	Key    string
	Detail string
}

// String .
func (f Finding) String() string {
	return fmt.Sprintf("%s %s: %s", f.Kind, f.Key, f.Detail)
}

// Scan verifies every relation pair in both directions and returns
// the findings sorted by the store's enumeration order.
func Scan(st *store.Store) []Finding {
	c := &checker{st: st}

	c.bridges()
	c.ports()
	c.hostLinks()
	c.vlans()
	c.netnses()
	c.registers()
	c.flows()
	c.macFlows()
	c.ctZones()

	return c.findings
}

type checker struct {
	st       *store.Store
	findings []Finding
}

func (c *checker) add(kind types.Kind, key, format string, args ...any) {
	c.findings = append(c.findings, Finding{Kind: kind, Key: key, Detail: fmt.Sprintf(format, args...)})
}

func (c *checker) bridges() {
	for _, br := range c.st.Bridges() {
		for _, name := range sorted(br.Ports.ToSlice()) {
			p, ok := c.st.Port(name)
			if !ok {
				c.add(types.KindBridge, br.Name, "lists unknown port %s", name)
				continue
			}
			if p.Bridge != br.Name {
				c.add(types.KindBridge, br.Name, "port %s claims bridge %q", name, p.Bridge)
			}
		}
	}
}

func (c *checker) ports() {
	for _, p := range c.st.Ports() {
		c.portBridge(p)
		c.portVlan(p)
		c.portNetns(p)
		c.portVethPeer(p)
		c.portHostLink(p)
		c.portRegisters(p)
	}
}

func (c *checker) portBridge(p *types.Port) {
	if len(p.Bridge) == 0 {
		return
	}
	br, ok := c.st.Bridge(p.Bridge)
	if !ok {
		c.add(types.KindPort, p.Name, "references unknown bridge %s", p.Bridge)
		return
	}
	if !br.Ports.Contains(p.Name) {
		c.add(types.KindPort, p.Name, "missing from bridge %s port set", p.Bridge)
	}
}

func (c *checker) portVlan(p *types.Port) {
	if p.VlanTag < 0 {
		return
	}
	v, ok := c.st.Vlan(p.VlanTag)
	if !ok {
		c.add(types.KindPort, p.Name, "tagged with unknown vlan %d", p.VlanTag)
		return
	}
	if !v.Ports.Contains(p.Name) {
		c.add(types.KindPort, p.Name, "missing from vlan %d port set", p.VlanTag)
	}
}

func (c *checker) portNetns(p *types.Port) {
	if len(p.Netns) == 0 {
		return
	}
	ns, ok := c.st.Netns(p.Netns)
	if !ok {
		c.add(types.KindPort, p.Name, "references unknown netns %s", p.Netns)
		return
	}
	if !ns.Ports.Contains(p.Name) {
		c.add(types.KindPort, p.Name, "missing from netns %s port set", p.Netns)
	}
}

func (c *checker) portVethPeer(p *types.Port) {
	if len(p.VethPeer) == 0 {
		return
	}
	peer, ok := c.st.Port(p.VethPeer)
	if !ok {
		c.add(types.KindPort, p.Name, "veth peer %s does not exist", p.VethPeer)
		return
	}
	if peer.VethPeer != p.Name {
		c.add(types.KindPort, p.Name, "veth peer %s points back to %q", p.VethPeer, peer.VethPeer)
	}
}

func (c *checker) portHostLink(p *types.Port) {
	if p.HostLink == nil {
		return
	}
	if p.HostLink.PortRef != p.Name {
		c.add(types.KindPort, p.Name, "host link %s refers back to %q", p.HostLink.Name, p.HostLink.PortRef)
	}
}

func (c *checker) portRegisters(p *types.Port) {
	for _, key := range sorted(p.Registers.ToSlice()) {
		reg, ok := c.st.Register(key)
		if !ok {
			c.add(types.KindPort, p.Name, "lists unknown register %s", key)
			continue
		}
		if reg.PortRef != p.Name {
			c.add(types.KindPort, p.Name, "register %s resolves to %q", key, reg.PortRef)
		}
	}
}

func (c *checker) hostLinks() {
	for _, hl := range c.st.HostLinks() {
		if len(hl.PortRef) == 0 {
			continue
		}
		p, ok := c.st.Port(hl.PortRef)
		if !ok {
			c.add(types.KindHostLink, hl.Name, "references unknown port %s", hl.PortRef)
			continue
		}
		if p.HostLink == nil || p.HostLink.Name != hl.Name {
			c.add(types.KindHostLink, hl.Name, "port %s does not link back", hl.PortRef)
		}
	}
}

func (c *checker) vlans() {
	for _, v := range c.st.Vlans() {
		for _, name := range sorted(v.Ports.ToSlice()) {
			p, ok := c.st.Port(name)
			if !ok {
				c.add(types.KindVlan, strconv.Itoa(v.ID), "lists unknown port %s", name)
				continue
			}
			if p.VlanTag != v.ID {
				c.add(types.KindVlan, strconv.Itoa(v.ID), "port %s is tagged %d", name, p.VlanTag)
			}
		}

		for _, key := range sorted(v.Flows.ToSlice()) {
			f, ok := c.st.Flow(key)
			if !ok {
				c.add(types.KindVlan, strconv.Itoa(v.ID), "lists unknown flow %s", key)
				continue
			}
			if !f.Vlans.Contains(v.ID) {
				c.add(types.KindVlan, strconv.Itoa(v.ID), "flow %s does not link back", key)
			}
		}

		for _, key := range sorted(v.Registers.ToSlice()) {
			reg, ok := c.st.Register(key)
			if !ok {
				c.add(types.KindVlan, strconv.Itoa(v.ID), "lists unknown register %s", key)
				continue
			}
			if reg.VlanRef != v.ID {
				c.add(types.KindVlan, strconv.Itoa(v.ID), "register %s resolves to %d", key, reg.VlanRef)
			}
		}
	}
}

func (c *checker) netnses() {
	for _, ns := range c.st.Netnses() {
		for _, name := range sorted(ns.Ports.ToSlice()) {
			p, ok := c.st.Port(name)
			if !ok {
				c.add(types.KindNetns, ns.Name, "lists unknown port %s", name)
				continue
			}
			if p.Netns != ns.Name {
				c.add(types.KindNetns, ns.Name, "port %s claims netns %q", name, p.Netns)
			}
		}
	}
}

func (c *checker) registers() {
	for _, reg := range c.st.Registers() {
		if len(reg.PortRef) > 0 {
			p, ok := c.st.Port(reg.PortRef)
			switch {
			case !ok:
				c.add(types.KindRegister, reg.Key, "references unknown port %s", reg.PortRef)
			case !p.Registers.Contains(reg.Key):
				c.add(types.KindRegister, reg.Key, "missing from port %s register set", reg.PortRef)
			}
		}

		if reg.VlanRef >= 0 {
			v, ok := c.st.Vlan(reg.VlanRef)
			switch {
			case !ok:
				c.add(types.KindRegister, reg.Key, "references unknown vlan %d", reg.VlanRef)
			case !v.Registers.Contains(reg.Key):
				c.add(types.KindRegister, reg.Key, "missing from vlan %d register set", reg.VlanRef)
			}
		}
	}
}

func (c *checker) flows() {
	for _, f := range c.st.Flows() {
		if _, ok := c.st.Bridge(f.Bridge); !ok {
			c.add(types.KindFlow, f.Key, "references unknown bridge %s", f.Bridge)
		}

		for _, id := range sortedInts(f.Vlans.ToSlice()) {
			v, ok := c.st.Vlan(id)
			switch {
			case !ok:
				c.add(types.KindFlow, f.Key, "references unknown vlan %d", id)
			case !v.Flows.Contains(f.Key):
				c.add(types.KindFlow, f.Key, "missing from vlan %d flow set", id)
			}
		}
	}
}

func (c *checker) macFlows() {
	for _, mf := range c.st.MacFlows() {
		if len(mf.PortRef) == 0 {
			continue
		}
		if _, ok := c.st.Port(mf.PortRef); !ok {
			c.add(types.KindMacFlow, mf.Key, "references unknown port %s", mf.PortRef)
		}
	}
}

func (c *checker) ctZones() {
	for _, z := range c.st.CtZones() {
		if z.VlanID == 0 {
			continue
		}
		if _, ok := c.st.Vlan(z.VlanID); !ok {
			c.add(types.KindCtZone, strconv.Itoa(z.VlanID), "zone has no matching vlan")
		}
	}
}

func sorted(ss []string) []string {
	sort.Strings(ss)
	return ss
}

func sortedInts(is []int) []int {
	sort.Ints(is)
	return is
}
