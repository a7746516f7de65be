package ovs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/mock"

	"github.com/projecteru2/ovsmap/configs"
	"github.com/projecteru2/ovsmap/pkg/sh"
	"github.com/projecteru2/ovsmap/pkg/terrors"
	"github.com/projecteru2/ovsmap/pkg/test/assert"
)

type mockShell struct {
	mock.Mock
}

func (m *mockShell) Exec(_ context.Context, name string, args ...string) error {
	return m.Called(name, args).Error(0)
}

func (m *mockShell) ExecInOut(_ context.Context, _ map[string]string, _ io.Reader, name string, args ...string) ([]byte, []byte, error) {
	ret := m.Called(name, args)
	var stdout, stderr []byte
	if buf := ret.Get(0); buf != nil {
		stdout = buf.([]byte)
	}
	if buf := ret.Get(1); buf != nil {
		stderr = buf.([]byte)
	}
	return stdout, stderr, ret.Error(2)
}

func testConfig() *configs.Config {
	cfg := configs.Conf
	return &cfg
}

func TestLiveQueryCachesRepeats(t *testing.T) {
	ms := &mockShell{}
	defer sh.NewMockShell(ms)()

	ms.On("ExecInOut", "ovs-vsctl", []string{"list-br"}).
		Return([]byte("br-int\n"), nil, nil).Once()

	live := NewLive(testConfig())

	out, err := live.Query(context.Background(), BridgeList, "")
	assert.NilErr(t, err)
	assert.Equal(t, "br-int\n", out)

	// second hit comes from the cache, not the tool
	out, err = live.Query(context.Background(), BridgeList, "")
	assert.NilErr(t, err)
	assert.Equal(t, "br-int\n", out)

	ms.AssertNumberOfCalls(t, "ExecInOut", 1)
}

func TestLiveQueryRetriesThenFails(t *testing.T) {
	ms := &mockShell{}
	defer sh.NewMockShell(ms)()

	ms.On("ExecInOut", "ovs-ofctl", []string{"show", "br-int"}).
		Return(nil, []byte("permission denied"), errors.New("exit status 1"))

	cfg := testConfig()
	cfg.QueryRetries = 1

	live := NewLive(cfg)
	_, err := live.Query(context.Background(), BridgePortMap, "br-int")
	assert.Err(t, err)
	assert.True(t, terrors.IsQueryFailedErr(err))

	// initial attempt plus one retry
	ms.AssertNumberOfCalls(t, "ExecInOut", 2)
}

func TestLiveQueryScopeRequired(t *testing.T) {
	live := NewLive(testConfig())

	_, err := live.Query(context.Background(), FlowDump, "")
	assert.Err(t, err)
	assert.True(t, errors.Is(err, terrors.ErrScopeRequired))
}

func TestLiveCommandLines(t *testing.T) {
	live := NewLive(testConfig())

	var cases = []struct {
		kind  Kind
		scope string
		exp   []string
	}{
		{BridgeList, "", []string{"ovs-vsctl", "list-br"}},
		{BridgePortMap, "br-int", []string{"ovs-ofctl", "show", "br-int"}},
		{FlowDump, "br-int", []string{"ovs-ofctl", "dump-flows", "br-int"}},
		{RegisterDump, "br-int", []string{"ovs-ofctl", "dump-flows", "br-int"}},
		{PortVlanMap, "", []string{"ovs-vsctl", "--columns=name,tag", "list", "Port"}},
		{InterfaceList, "", []string{"ip", "-o", "link", "show"}},
		{NamespaceList, "", []string{"ip", "netns", "list"}},
		{NamespaceInterfaces, "qrouter-1", []string{"ip", "netns", "exec", "qrouter-1", "ip", "-o", "link", "show"}},
		{TunnelMetadata, "", []string{"ovs-vsctl", "--columns=name,type,options,external_ids,mac_in_use", "list", "Interface"}},
		{ConntrackDump, "0", []string{"conntrack", "-L"}},
		{ConntrackDump, "5", []string{"conntrack", "-L", "-z", "5"}},
	}

	for _, c := range cases {
		argv, err := live.command(c.kind, c.scope)
		assert.NilErr(t, err)
		assert.Equal(t, c.exp, argv)
	}

	_, err := live.command(Kind("bogus"), "")
	assert.Err(t, err)
	assert.True(t, errors.Is(err, terrors.ErrUnknownQueryKind))
}

func TestSnapshotQuery(t *testing.T) {
	dir := t.TempDir()
	assert.NilErr(t, os.WriteFile(filepath.Join(dir, "flow-dump@br-int.txt"), []byte("dump"), 0644))

	snap := NewSnapshot(dir)

	out, err := snap.Query(context.Background(), FlowDump, "br-int")
	assert.NilErr(t, err)
	assert.Equal(t, "dump", out)

	_, err = snap.Query(context.Background(), FlowDump, "br-missing")
	assert.Err(t, err)
	assert.True(t, terrors.IsQueryFailedErr(err))
}
