package configs

import (
	"github.com/cockroachdb/errors"
	"github.com/mcuadros/go-defaults"
)

// DefaultTemplate .
const DefaultTemplate = `
log_level = "info"
log_file = ""

max_concurrency = 32
check_flow_vlans = false
mac_prefix_fallback = false

query_timeout = "10s"
query_retries = 2
query_cache_ttl = "30s"
snapshot_dir = ""

ovs_vsctl = "ovs-vsctl"
ovs_ofctl = "ovs-ofctl"
ip_bin = "ip"
conntrack_bin = "conntrack"
`

// Conf .
var Conf = newDefault()

// Config .
type Config struct {
	LogLevel string `toml:"log_level" default:"info"`
	LogFile  string `toml:"log_file"`

	MaxConcurrency    int  `toml:"max_concurrency" default:"32"`
	CheckFlowVlans    bool `toml:"check_flow_vlans"`
	MACPrefixFallback bool `toml:"mac_prefix_fallback"`

	QueryTimeout  Duration `toml:"query_timeout"`
	QueryRetries  int      `toml:"query_retries" default:"2"`
	QueryCacheTTL Duration `toml:"query_cache_ttl"`

	// SnapshotDir reads captured tool output from files instead of a live host.
	SnapshotDir string `toml:"snapshot_dir"`

	OvsVsctl     string `toml:"ovs_vsctl" default:"ovs-vsctl"`
	OvsOfctl     string `toml:"ovs_ofctl" default:"ovs-ofctl"`
	IPBin        string `toml:"ip_bin" default:"ip"`
	ConntrackBin string `toml:"conntrack_bin" default:"conntrack"`
}

func newDefault() Config {
	var conf Config
	defaults.SetDefaults(&conf)

	if err := Decode(DefaultTemplate, &conf); err != nil {
		panic(errors.Wrap(err, "default config template is broken"))
	}

	return conf
}

// Load merges the files into the config, latter files win.
func (c *Config) Load(files []string) error {
	for _, file := range files {
		if err := c.load(file); err != nil {
			return errors.Wrapf(err, "load %s failed", file)
		}
	}
	return nil
}

func (c *Config) load(file string) error {
	return DecodeFile(file, c)
}

// Dump .
func (c *Config) Dump() (string, error) {
	return Encode(c)
}
