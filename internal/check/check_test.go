package check

import (
	"testing"

	"github.com/projecteru2/ovsmap/internal/store"
	"github.com/projecteru2/ovsmap/internal/types"
	"github.com/projecteru2/ovsmap/pkg/test/assert"
)

func consistentStore() *store.Store {
	st := store.New()

	br := st.EnsureBridge("br-int")

	p := st.EnsurePort("tap0")
	p.ID = 1
	p.Bridge = "br-int"
	p.MAC = "fe:16:3e:00:00:01"
	p.VlanTag = 5
	br.Ports.Add(p.Name)

	v := st.EnsureVlan(5)
	v.Ports.Add(p.Name)

	ns := st.EnsureNetns("qrouter-1")
	inside := st.EnsurePort("qr-dev")
	inside.Netns = ns.Name
	ns.Ports.Add(inside.Name)
	inside.VethPeer = p.Name
	p.VethPeer = inside.Name

	hl := &types.HostLink{Name: "tap0", Index: 3, PeerIndex: -1, PortRef: p.Name}
	p.HostLink = hl
	st.UpsertHostLink(hl)

	f := types.NewFlow("br-int", 0, 0, "0xabc", "priority=10,reg5=0x1 actions=drop")
	st.UpsertFlow(f)

	reg := &types.Register{
		Key:     types.RegisterKey("br-int", "0xabc", "reg5"),
		Bridge:  "br-int",
		Cookie:  "0xabc",
		Name:    "reg5",
		Value:   "0x1",
		PortRef: p.Name,
		VlanRef: -1,
	}
	st.UpsertRegister(reg)
	p.Registers.Add(reg.Key)

	st.UpsertCtZone(&types.CtZone{VlanID: 0})
	st.UpsertCtZone(&types.CtZone{VlanID: 5})

	return st
}

func TestConsistentGraphHasNoFindings(t *testing.T) {
	assert.Len(t, Scan(consistentStore()), 0)
}

func TestDanglingBridgePort(t *testing.T) {
	st := consistentStore()
	br, _ := st.Bridge("br-int")
	br.Ports.Add("ghost")

	fs := Scan(st)
	assert.Len(t, fs, 1)
	assert.Equal(t, types.KindBridge, fs[0].Kind)
	assert.Equal(t, "br-int", fs[0].Key)
}

func TestOneSidedVlanMembership(t *testing.T) {
	st := consistentStore()
	p, _ := st.Port("tap0")
	p.VlanTag = 7 // tag changed, vlan 5 still lists the port

	fs := Scan(st)
	assert.Len(t, fs, 2)
	assert.Equal(t, types.KindPort, fs[0].Kind)
	assert.Equal(t, types.KindVlan, fs[1].Kind)
}

func TestAsymmetricVethPeer(t *testing.T) {
	st := consistentStore()
	p, _ := st.Port("qr-dev")
	p.VethPeer = "elsewhere"

	fs := Scan(st)
	// tap0 sees the broken backlink, qr-dev sees the missing peer
	assert.Len(t, fs, 2)
	for _, f := range fs {
		assert.Equal(t, types.KindPort, f.Kind)
	}
}

func TestHostLinkBrokenBacklink(t *testing.T) {
	st := consistentStore()
	p, _ := st.Port("tap0")
	p.HostLink.PortRef = "other"

	fs := Scan(st)
	assert.Len(t, fs, 2)
	assert.Equal(t, types.KindPort, fs[0].Kind)
	assert.Equal(t, types.KindHostLink, fs[1].Kind)
}

func TestRegisterDanglingPortRef(t *testing.T) {
	st := consistentStore()
	reg, _ := st.Register(types.RegisterKey("br-int", "0xabc", "reg5"))
	p, _ := st.Port("tap0")
	p.Registers.Remove(reg.Key)

	fs := Scan(st)
	assert.Len(t, fs, 1)
	assert.Equal(t, types.KindRegister, fs[0].Kind)
}

func TestMacFlowUnknownPort(t *testing.T) {
	st := consistentStore()
	st.UpsertMacFlow(&types.MacFlow{
		Key:       types.MacFlowKey(types.DirectionEgress, "aa:aa:aa:aa:aa:aa", "bb:bb:bb:bb:bb:bb"),
		Direction: types.DirectionEgress,
		Target:    "aa:aa:aa:aa:aa:aa",
		Local:     "bb:bb:bb:bb:bb:bb",
		PortRef:   "gone",
	})

	fs := Scan(st)
	assert.Len(t, fs, 1)
	assert.Equal(t, types.KindMacFlow, fs[0].Kind)
}

func TestCtZoneWithoutVlan(t *testing.T) {
	st := consistentStore()
	st.UpsertCtZone(&types.CtZone{VlanID: 42})

	fs := Scan(st)
	assert.Len(t, fs, 1)
	assert.Equal(t, types.KindCtZone, fs[0].Kind)
	assert.Equal(t, "42", fs[0].Key)
}

func TestFlowVlanOneSided(t *testing.T) {
	st := consistentStore()
	f, _ := st.Flow(types.FlowKey("br-int", 0))
	f.Vlans.Add(5) // vlan 5 never linked back

	fs := Scan(st)
	assert.Len(t, fs, 1)
	assert.Equal(t, types.KindFlow, fs[0].Kind)
}
