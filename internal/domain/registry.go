package domain

import (
	"fmt"
	"sort"
)

// Registry returns every entity descriptor keyed by its API path
// segment. Handlers and the container look entities up here; adding an
// entity means adding one constructor call.
func Registry() map[string]Descriptor {
	list := []Descriptor{
		Staff(),
		Client(),
		Salary(),
		Invoice(),
		Zone(),
		SubZone(),
		Vendor(),
		User(),
	}
	out := make(map[string]Descriptor, len(list))
	for _, d := range list {
		out[d.Name] = d
	}
	return out
}

// Lookup resolves an entity by name.
func Lookup(name string) (Descriptor, error) {
	d, ok := Registry()[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("unknown entity %q", name)
	}
	return d, nil
}

// Names returns the registered entity names sorted for stable menus.
func Names() []string {
	reg := Registry()
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
