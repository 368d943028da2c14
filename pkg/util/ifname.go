package util

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	interfaceNameRegexp = regexp.MustCompile(`^(\D+)(\S+)`)
	interfaceSortRegexp = regexp.MustCompile(`([a-zA-Z]+(?:-[a-zA-Z]+)?)-?(\d+)?(?:/|-)?(\d+)?(?:/|-)?(\d+)?`)
)

// longNames maps lowercased interface prefixes to their canonical long form
var longNames = map[string]string{
	"eth":                "Ethernet",
	"ethernet":           "Ethernet",
	"fa":                 "FastEthernet",
	"fastethernet":       "FastEthernet",
	"gi":                 "GigabitEthernet",
	"ge":                 "GigabitEthernet",
	"gigabitethernet":    "GigabitEthernet",
	"te":                 "TenGigabitEthernet",
	"tengigabitethernet": "TenGigabitEthernet",
	"po":                 "Port-Channel",
	"port-channel":       "Port-Channel",
	"vl":                 "Vlan",
	"vlan":               "Vlan",
	"lo":                 "Loopback",
	"loopback":           "Loopback",
	"tu":                 "Tunnel",
	"tunnel":             "Tunnel",
}

// NormalizeInterfaceName rewrites an abbreviated interface name to long form.
// Eth0/0 -> Ethernet0/0, Vl177 -> Vlan177, po10 -> Port-Channel10.
// Names with an unknown prefix are returned unchanged.
func NormalizeInterfaceName(name string) string {
	m := interfaceNameRegexp.FindStringSubmatch(name)
	if m == nil {
		return name
	}
	if long, ok := longNames[strings.ToLower(m[1])]; ok {
		return long + m[2]
	}
	return name
}

// InterfaceSortKey returns the alphabetic id of an interface name and the
// number formed by concatenating up to three slot/port components.
// Ethernet1/2/3 -> ("Ethernet", 123). Names without digits get number 0.
func InterfaceSortKey(name string) (string, uint64) {
	m := interfaceSortRegexp.FindStringSubmatch(name)
	if m == nil {
		return name, 0
	}
	digits := m[2] + m[3] + m[4]
	if digits == "" {
		return m[1], 0
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return m[1], 0
	}
	return m[1], n
}

// SortInterfaceNames sorts names in place by (id, number), falling back
// to the raw name so the order is total.
func SortInterfaceNames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		idI, nI := InterfaceSortKey(names[i])
		idJ, nJ := InterfaceSortKey(names[j])
		if idI != idJ {
			return idI < idJ
		}
		if nI != nJ {
			return nI < nJ
		}
		return names[i] < names[j]
	})
}

// NormalizeInterfaceNames normalizes every name and returns them sorted.
func NormalizeInterfaceNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, NormalizeInterfaceName(n))
	}
	SortInterfaceNames(out)
	return out
}

// MergeMaps merges maps with later maps overriding earlier ones
func MergeMaps[K comparable, V any](maps ...map[K]V) map[K]V {
	result := make(map[K]V)
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}
