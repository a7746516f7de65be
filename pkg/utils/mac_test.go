package utils

import (
	"testing"

	"github.com/projecteru2/ovsmap/pkg/terrors"
	"github.com/projecteru2/ovsmap/pkg/test/assert"
)

func TestNormalizeMAC(t *testing.T) {
	mac, err := NormalizeMAC("FA:16:3E:00:00:01 ")
	assert.NilErr(t, err)
	assert.Equal(t, "fa:16:3e:00:00:01", mac)

	_, err = NormalizeMAC("not-a-mac")
	assert.Err(t, err)
	assert.True(t, terrors.IsBadMACAddrErr(err))
}

func TestMACPrefixAlias(t *testing.T) {
	var cases = []struct {
		in      string
		exp     string
		swapped bool
	}{
		{"fa:16:3e:00:00:01", "fe:16:3e:00:00:01", true},
		{"fe:16:3e:00:00:01", "fa:16:3e:00:00:01", true},
		{"aa:bb:cc:dd:ee:ff", "aa:bb:cc:dd:ee:ff", false},
	}

	for _, c := range cases {
		alias, ok := MACPrefixAlias(c.in)
		assert.Equal(t, c.swapped, ok)
		assert.Equal(t, c.exp, alias)
	}
}

func TestHexToDec(t *testing.T) {
	var cases = []struct {
		in  string
		exp int
	}{
		{"0x3", 3},
		{"0x10", 16},
		{"ff", 255},
	}

	for _, c := range cases {
		v, err := HexToDec(c.in)
		assert.NilErr(t, err)
		assert.Equal(t, c.exp, v)
	}

	_, err := HexToDec("0x")
	assert.Err(t, err)
	_, err = HexToDec("zz")
	assert.Err(t, err)
}
