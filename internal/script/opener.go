package script

import (
	"github.com/ouka-input/ouka/device"
	"github.com/ouka-input/ouka/session"
)

// Opener opens the devices a script asks for.
type Opener interface {
	// Find opens every key node of the one hardware whose name contains
	// query.
	Find(query string) ([]device.Source, error)
	// Open opens a single event node.
	Open(path string) (device.Source, error)
	// Virtual creates the output device paired with src.
	Virtual(src device.Source) (session.Output, error)
}

// EvdevOpener opens real kernel devices.
type EvdevOpener struct{}

var _ Opener = EvdevOpener{}

func (EvdevOpener) Find(query string) ([]device.Source, error) {
	hw, err := device.FindByName(query)
	if err != nil {
		return nil, err
	}
	var out []device.Source
	for _, n := range hw.Nodes {
		in, err := device.Open(n.Path)
		if err != nil {
			for _, s := range out {
				_ = s.Close()
			}
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func (EvdevOpener) Open(path string) (device.Source, error) {
	in, err := device.Open(path)
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (EvdevOpener) Virtual(src device.Source) (session.Output, error) {
	v, err := device.NewVirtual(src)
	if err != nil {
		return nil, err
	}
	return v, nil
}
