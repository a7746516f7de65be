package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/projecteru2/ovsmap/pkg/utils"
)

// FlowRec is one flow line with its owning table and cookie.
type FlowRec struct {
	Table  int
	Cookie string
	Raw    string
}

var (
	flowCookieRE = regexp.MustCompile(`cookie=(0x[0-9A-Fa-f]+)`)
	flowTableRE  = regexp.MustCompile(`table=(\d+)`)
)

// Flows pulls flow records out of a flow dump. A line qualifies when
// it carries both a cookie and an actions list; dump headers and
// stats-only lines are skipped.
func Flows(text string) []FlowRec {
	var recs []FlowRec
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "actions=") {
			continue
		}
		cm := flowCookieRE.FindStringSubmatch(line)
		if cm == nil {
			continue
		}

		rec := FlowRec{Cookie: cm[1], Raw: strings.TrimSpace(line)}
		if tm := flowTableRE.FindStringSubmatch(line); tm != nil {
			rec.Table, _ = strconv.Atoi(tm[1])
		}

		recs = append(recs, rec)
	}
	return recs
}

// Fields are the on-demand derived fields of one flow line.
type Fields struct {
	Table  int
	Cookie string
	InPort string
	DlSrc  string
	DlDst  string
	NwSrc  string
	ArpSpa string
	// DlVlan is -1 when no recognized VLAN encoding is present.
	DlVlan int
	// Regs maps register name (reg5, reg6, ...) to its raw hex value.
	Regs     map[string]string
	ConjID   int
	ModDlSrc string
}

var (
	fieldInPortRE = regexp.MustCompile(`in_port=([^,\s]+)`)
	fieldDlSrcRE  = regexp.MustCompile(`\bdl_src=([0-9A-Fa-f:]{17})`)
	fieldDlDstRE  = regexp.MustCompile(`\bdl_dst=([0-9A-Fa-f:]{17})`)
	fieldNwSrcRE  = regexp.MustCompile(`\bnw_src=([0-9.:a-fA-F/]+)`)
	fieldArpSpaRE = regexp.MustCompile(`\barp_spa=([0-9./]+)`)
	fieldConjRE   = regexp.MustCompile(`conj_id=(\d+)|conjunction\((\d+),`)
	modDlSrcRE    = regexp.MustCompile(`mod_dl_src:([0-9A-Fa-f:]{17})`)

	// VLAN encodings in fixed priority order; the first hit wins so a
	// flow carrying both never counts twice.
	vlanEncodings = []*regexp.Regexp{
		regexp.MustCompile(`mod_vlan_vid:(\d+)`),
		regexp.MustCompile(`set_field:(\d+)->vlan_vid`),
		regexp.MustCompile(`\bdl_vlan=(\d+)`),
	}

	// Register encodings, action side first.
	regLoadRE  = regexp.MustCompile(`load:(0x[0-9A-Fa-f]+)->NXM_NX_REG(\d+)\[\]`)
	regMatchRE = regexp.MustCompile(`\breg(\d+)=(0x[0-9A-Fa-f]+)`)
)

// FlowFields pulls the derived fields out of one raw flow line.
func FlowFields(raw string) Fields {
	f := Fields{DlVlan: -1, ConjID: -1, Regs: map[string]string{}}

	if m := flowCookieRE.FindStringSubmatch(raw); m != nil {
		f.Cookie = m[1]
	}
	if m := flowTableRE.FindStringSubmatch(raw); m != nil {
		f.Table, _ = strconv.Atoi(m[1])
	}
	if m := fieldInPortRE.FindStringSubmatch(raw); m != nil {
		f.InPort = m[1]
	}
	if m := fieldDlSrcRE.FindStringSubmatch(raw); m != nil {
		f.DlSrc = lowerMAC(m[1])
	}
	if m := fieldDlDstRE.FindStringSubmatch(raw); m != nil {
		f.DlDst = lowerMAC(m[1])
	}
	if m := fieldNwSrcRE.FindStringSubmatch(raw); m != nil {
		f.NwSrc = m[1]
	}
	if m := fieldArpSpaRE.FindStringSubmatch(raw); m != nil {
		f.ArpSpa = m[1]
	}
	if m := modDlSrcRE.FindStringSubmatch(raw); m != nil {
		f.ModDlSrc = lowerMAC(m[1])
	}
	if m := fieldConjRE.FindStringSubmatch(raw); m != nil {
		id := m[1]
		if len(id) == 0 {
			id = m[2]
		}
		f.ConjID, _ = strconv.Atoi(id)
	}

	for _, re := range vlanEncodings {
		if m := re.FindStringSubmatch(raw); m != nil {
			f.DlVlan, _ = strconv.Atoi(m[1])
			break
		}
	}

	for _, m := range regLoadRE.FindAllStringSubmatch(raw, -1) {
		f.Regs["reg"+m[2]] = strings.ToLower(m[1])
	}
	for _, m := range regMatchRE.FindAllStringSubmatch(raw, -1) {
		name := "reg" + m[1]
		if _, seen := f.Regs[name]; !seen {
			f.Regs[name] = strings.ToLower(m[2])
		}
	}

	return f
}

func lowerMAC(s string) string {
	mac, err := utils.NormalizeMAC(s)
	if err != nil {
		return strings.ToLower(s)
	}
	return mac
}
