package dataset

import "github.com/viant/evedata/record"

type (
	// Summary is a serializable overview of a dataset
	Summary struct {
		ID       string          `yaml:"id"`
		URL      string          `yaml:"url,omitempty"`
		Metadata Metadata        `yaml:"metadata"`
		Chains   []*ChainSummary `yaml:"chains"`
		Monitors []string        `yaml:"monitors,omitempty"`
		Warnings []string        `yaml:"warnings,omitempty"`
		Failures []string        `yaml:"failures,omitempty"`
	}

	ChainSummary struct {
		ID                     int               `yaml:"id"`
		Truncated              bool              `yaml:"truncated,omitempty"`
		PreferredAxis          string            `yaml:"preferredAxis,omitempty"`
		PreferredChannel       string            `yaml:"preferredChannel,omitempty"`
		PreferredNormalization string            `yaml:"preferredNormalization,omitempty"`
		Axes                   []Series          `yaml:"axes,omitempty"`
		Channels               []Series          `yaml:"channels,omitempty"`
		Timestamps             int               `yaml:"timestamps"`
		Snapshots              []string          `yaml:"snapshots,omitempty"`
		Subscans               []*SubscanSummary `yaml:"subscans,omitempty"`
		Extras                 map[string]any    `yaml:"extras,omitempty"`
	}

	SubscanSummary struct {
		Path      string            `yaml:"path"`
		Kind      record.ModuleKind `yaml:"kind"`
		Truncated bool              `yaml:"truncated,omitempty"`
		Axes      int               `yaml:"axes"`
		Channels  int               `yaml:"channels"`
	}
)

// Summary returns the overview of the dataset
func (d *Dataset) Summary() *Summary {
	ret := &Summary{ID: d.ID, URL: d.URL, Metadata: d.Metadata, Monitors: d.Monitors()}
	for _, warning := range d.Warnings {
		ret.Warnings = append(ret.Warnings, warning.Error())
	}
	for _, failure := range d.Failures {
		ret.Failures = append(ret.Failures, failure.Error())
	}
	for _, chain := range d.chains {
		ret.Chains = append(ret.Chains, chain.summary())
	}
	return ret
}

func (c *Chain) summary() *ChainSummary {
	view := c.View()
	ret := &ChainSummary{
		ID:         c.ID,
		Truncated:  view.Truncated(),
		Axes:       view.Axes(),
		Channels:   view.Channels(),
		Timestamps: len(c.timestamps),
		Snapshots:  c.SnapshotNames(),
	}
	ret.PreferredAxis, _ = view.PreferredAxis()
	ret.PreferredChannel, _ = view.PreferredChannel()
	ret.PreferredNormalization, _ = view.PreferredNormalization()
	for _, sub := range c.Subscans() {
		ret.Subscans = append(ret.Subscans, &SubscanSummary{
			Path:      sub.Path(),
			Kind:      sub.Kind(),
			Truncated: sub.Truncated(),
			Axes:      len(sub.Axes()),
			Channels:  len(sub.Channels()),
		})
	}
	return ret
}
