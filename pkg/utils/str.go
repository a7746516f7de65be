package utils

import "strings"

// PartLeft partitions the str by the sep.
func PartLeft(str, sep string) (string, string) {
	switch i := strings.Index(str, sep); {
	case i < 0:
		return str, ""
	case i == 0:
		return "", str[i+1:]
	default:
		return str[:i], str[i+1:]
	}
}

// MergeStrings .
func MergeStrings(a, b []string) []string {
	var dic = make(map[string]struct{})
	var strs = make([]string, 0, len(a)+len(b))

	var appendx = func(ar []string) {
		for _, k := range ar {
			if _, exists := dic[k]; exists {
				continue
			}
			dic[k] = struct{}{}
			strs = append(strs, k)
		}
	}

	appendx(a)
	appendx(b)

	return strs
}
