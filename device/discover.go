package device

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/holoplot/go-evdev"
)

// Discovery errors, reported before any session starts.
var (
	ErrNoDevice        = errors.New("no matching device")
	ErrMultipleDevices = errors.New("more than one device matches")
)

// Node is one event node found under /dev/input.
type Node struct {
	Path string
	Name string
	ID   evdev.InputID
	// Keys is true when the node can emit key events.
	Keys bool
}

// Hardware groups the event nodes exposed by one physical device.
type Hardware struct {
	Vendor  uint16
	Product uint16
	Nodes   []Node
}

// Name returns the name of the first node.
func (h Hardware) Name() string {
	if len(h.Nodes) == 0 {
		return ""
	}
	return h.Nodes[0].Name
}

// KeyNodes returns the nodes that can emit key events.
func (h Hardware) KeyNodes() []Node {
	var out []Node
	for _, n := range h.Nodes {
		if n.Keys {
			out = append(out, n)
		}
	}
	return out
}

// SelectError is returned when a name matches zero or several devices.
type SelectError struct {
	Query   string
	Matches []Hardware
	Err     error
}

func (e *SelectError) Error() string {
	if len(e.Matches) == 0 {
		return fmt.Sprintf("%v for %q", e.Err, e.Query)
	}
	names := make([]string, len(e.Matches))
	for i, m := range e.Matches {
		names[i] = fmt.Sprintf("%q (%04x:%04x)", m.Name(), m.Vendor, m.Product)
	}
	return fmt.Sprintf("%v for %q: %s", e.Err, e.Query, strings.Join(names, ", "))
}

func (e *SelectError) Unwrap() error { return e.Err }

// Scan lists every readable input device, grouped per hardware. Nodes that
// cannot be opened and this program's own virtual devices are skipped.
func Scan() ([]Hardware, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("listing input devices: %w", err)
	}
	nodes := make([]Node, 0, len(paths))
	for _, p := range paths {
		if strings.HasPrefix(p.Name, VirtualPrefix) {
			continue
		}
		dev, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		id, _ := dev.InputID()
		nodes = append(nodes, Node{
			Path: p.Path,
			Name: p.Name,
			ID:   id,
			Keys: slices.Contains(dev.CapableTypes(), evdev.EV_KEY),
		})
		_ = dev.Close()
	}
	return Group(nodes), nil
}

// Group groups nodes by vendor and product. Nodes with no vendor and
// product id each form their own group.
func Group(nodes []Node) []Hardware {
	type groupKey struct {
		bus, vendor, product uint16
		path                 string
	}
	index := make(map[groupKey]int)
	var out []Hardware
	for _, n := range nodes {
		k := groupKey{bus: n.ID.BusType, vendor: n.ID.Vendor, product: n.ID.Product}
		if n.ID.Vendor == 0 && n.ID.Product == 0 {
			k.path = n.Path
		}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Hardware{Vendor: n.ID.Vendor, Product: n.ID.Product})
		}
		out[i].Nodes = append(out[i].Nodes, n)
	}
	for i := range out {
		slices.SortFunc(out[i].Nodes, func(a, b Node) int { return cmp.Compare(a.Path, b.Path) })
	}
	slices.SortFunc(out, func(a, b Hardware) int { return cmp.Compare(a.Nodes[0].Path, b.Nodes[0].Path) })
	return out
}

// Select returns the single hardware whose node names contain query,
// case-insensitively. Only matching nodes that can emit keys are kept.
func Select(all []Hardware, query string) (Hardware, error) {
	q := strings.ToLower(query)
	var matches []Hardware
	for _, hw := range all {
		var nodes []Node
		for _, n := range hw.KeyNodes() {
			if strings.Contains(strings.ToLower(n.Name), q) {
				nodes = append(nodes, n)
			}
		}
		if len(nodes) > 0 {
			hw.Nodes = nodes
			matches = append(matches, hw)
		}
	}
	switch len(matches) {
	case 0:
		return Hardware{}, &SelectError{Query: query, Err: ErrNoDevice}
	case 1:
		return matches[0], nil
	default:
		return Hardware{}, &SelectError{Query: query, Matches: matches, Err: ErrMultipleDevices}
	}
}

// FindByName scans the system and selects the hardware matching query.
func FindByName(query string) (Hardware, error) {
	all, err := Scan()
	if err != nil {
		return Hardware{}, err
	}
	return Select(all, query)
}
