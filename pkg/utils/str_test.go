package utils

import (
	"testing"

	"github.com/projecteru2/ovsmap/pkg/test/assert"
)

func TestPartLeft(t *testing.T) {
	tests := []struct {
		in  string
		exp []string
	}{
		{"abc", []string{"abc", ""}},
		{"=abc", []string{"", "abc"}},
		{"a=bc", []string{"a", "bc"}},
		{"abc=", []string{"abc", ""}},
		{"a=b=c", []string{"a", "b=c"}},
	}

	for _, tc := range tests {
		var a, b = PartLeft(tc.in, "=")
		assert.Equal(t, tc.exp[0], a)
		assert.Equal(t, tc.exp[1], b)
	}
}

func TestMergeStrings(t *testing.T) {
	merged := MergeStrings([]string{"lo", "eth0"}, []string{"eth0", "tap0", "lo"})
	assert.Equal(t, []string{"lo", "eth0", "tap0"}, merged)

	assert.Len(t, MergeStrings(nil, nil), 0)
}
