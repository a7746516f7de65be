package extract

import (
	"regexp"
	"strings"

	"github.com/projecteru2/ovsmap/pkg/utils"
)

// TunnelRec is one interface record from the tunnel metadata listing.
type TunnelRec struct {
	Name     string
	Type     string
	LocalIP  string
	RemoteIP string
	MAC      string
}

var (
	optLocalIPRE  = regexp.MustCompile(`local_ip="?([0-9a-fA-F.:]+)"?`)
	optRemoteIPRE = regexp.MustCompile(`remote_ip="?([0-9a-fA-F.:]+)"?`)
)

// TunnelMeta pulls interface records out of label-style
// `list Interface` output, records separated by blank lines. The
// interface name keys each record; a missing mac_in_use leaves MAC
// empty without dropping the endpoint options.
func TunnelMeta(text string) []TunnelRec {
	var recs []TunnelRec

	var cur TunnelRec
	flush := func() {
		if len(cur.Name) > 0 {
			recs = append(recs, cur)
		}
		cur = TunnelRec{}
	}

	for _, line := range strings.Split(text, "\n") {
		if len(strings.TrimSpace(line)) == 0 {
			flush()
			continue
		}

		label, value := labelValue(line)
		switch label {
		case "name":
			cur.Name = value
		case "type":
			cur.Type = value
		case "options":
			if m := optLocalIPRE.FindStringSubmatch(value); m != nil {
				cur.LocalIP = m[1]
			}
			if m := optRemoteIPRE.FindStringSubmatch(value); m != nil {
				cur.RemoteIP = m[1]
			}
		case "mac_in_use":
			if mac, err := utils.NormalizeMAC(value); err == nil {
				cur.MAC = mac
			}
		}
	}
	flush()

	return recs
}
