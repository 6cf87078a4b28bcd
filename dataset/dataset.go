// Package dataset holds the in-memory model of a scan measurement: chains, their scan module
// hierarchy, and derived axis and channel views over the classified records.
package dataset

import (
	"fmt"
	"slices"
	"sort"
	"time"
)

// Metadata describes the measurement a dataset is bound to
type Metadata struct {
	Location   string    `yaml:"location,omitempty"`
	Comment    string    `yaml:"comment,omitempty"`
	Start      time.Time `yaml:"start,omitempty"`
	Stop       time.Time `yaml:"stop,omitempty"`
	Version    string    `yaml:"version,omitempty"`
	XMLVersion string    `yaml:"xmlVersion,omitempty"`
	H5Version  string    `yaml:"h5Version,omitempty"`
}

// Dataset is the normalized model of one measurement. It is immutable once built
// and safe to share between goroutines.
type Dataset struct {
	ID         string
	URL        string
	Metadata   Metadata
	Failures   []Failure // chains left out
	Warnings   []Warning
	chains     []*Chain
	chainIndex map[int]int //position
}

// Chains returns the chains ordered by id
func (d *Dataset) Chains() []*Chain {
	return slices.Clone(d.chains)
}

// Chain returns a chain by id
func (d *Dataset) Chain(id int) (*Chain, error) {
	if idx, ok := d.chainIndex[id]; ok && idx < len(d.chains) {
		return d.chains[idx], nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownChain, id)
}

// View returns the overview of the first chain
func (d *Dataset) View() *View {
	return d.chains[0].View()
}

// Subscans returns every scan module of a chain
func (d *Dataset) Subscans(chainID int) ([]*View, error) {
	chain, err := d.Chain(chainID)
	if err != nil {
		return nil, err
	}
	return chain.Subscans(), nil
}

// Subscan returns the scan module at path of a chain
func (d *Dataset) Subscan(chainID int, path string) (*View, error) {
	chain, err := d.Chain(chainID)
	if err != nil {
		return nil, err
	}
	return chain.Subscan(path)
}

// Truncated reports whether any scan module of the dataset was closed without its end marker
func (d *Dataset) Truncated() bool {
	for _, chain := range d.chains {
		if chain.modules[0].partial {
			return true
		}
	}
	return false
}

// Monitors returns the names of monitored devices
func (d *Dataset) Monitors() []string {
	seen := map[string]bool{}
	var ret []string
	for _, chain := range d.chains {
		for _, event := range chain.monitors {
			if !seen[event.Name] {
				seen[event.Name] = true
				ret = append(ret, event.Name)
			}
		}
	}
	sort.Strings(ret)
	return ret
}

// Monitor returns the events of a monitored device across chains, ordered by time
func (d *Dataset) Monitor(name string) []MonitorEvent {
	var ret []MonitorEvent
	for _, chain := range d.chains {
		for _, event := range chain.monitors {
			if event.Name == name {
				ret = append(ret, event)
			}
		}
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Elapsed < ret[j].Elapsed })
	return ret
}
