package report

import (
	"strings"
	"testing"

	"github.com/projecteru2/ovsmap/internal/check"
	"github.com/projecteru2/ovsmap/internal/store"
	"github.com/projecteru2/ovsmap/internal/types"
	"github.com/projecteru2/ovsmap/pkg/test/assert"
)

func sampleStore() *store.Store {
	st := store.New()

	br := st.EnsureBridge("br-int")
	br.FlowDump = strings.Repeat("x", 2048)

	p := st.EnsurePort("tap0")
	p.ID = 1
	p.Bridge = br.Name
	p.MAC = "fe:16:3e:00:00:01"
	p.VlanTag = 5
	br.Ports.Add(p.Name)

	local := st.EnsurePort("br-int")
	local.ID = types.OFPortLocal
	local.Bridge = br.Name
	br.Ports.Add(local.Name)

	st.EnsureVlan(5).Ports.Add("tap0")
	st.EnsurePort("stray")

	return st
}

func TestSummaryCounts(t *testing.T) {
	out := Summary(sampleStore())

	assert.True(t, strings.Contains(out, "bridges:    1"))
	assert.True(t, strings.Contains(out, "ports:      3"))
	assert.True(t, strings.Contains(out, "vlans:      1"))
	assert.True(t, strings.Contains(out, "2.0 kB dumped"))
}

func TestTreeLayout(t *testing.T) {
	out := Tree(sampleStore())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Equal(t, "br-int", lines[0])
	assert.True(t, strings.Contains(out, "  br-int (local)"))
	assert.True(t, strings.Contains(out, "  tap0 (id 1) fe:16:3e:00:00:01"))
	assert.True(t, strings.Contains(out, "    vlan 5"))

	// unattached ports land in a trailing section
	assert.True(t, strings.Contains(out, "(no bridge)\n  stray"))
}

func TestFindingsRendering(t *testing.T) {
	assert.Equal(t, "no findings\n", Findings(nil))

	fs := []check.Finding{
		{Kind: types.KindBridge, Key: "br-int", Detail: "lists unknown port ghost"},
	}
	out := Findings(fs)
	assert.Equal(t, "bridge br-int: lists unknown port ghost\n", out)
}
