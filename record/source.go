package record

import (
	"iter"
	"time"
)

// ChainHeader holds the preferred device hints of a chain, as marked in the scan description
type ChainHeader struct {
	PreferredAxis          string `json:"preferredAxis,omitempty" yaml:"preferredAxis,omitempty"`
	PreferredChannel       string `json:"preferredChannel,omitempty" yaml:"preferredChannel,omitempty"`
	PreferredNormalization string `json:"preferredNormalization,omitempty" yaml:"preferredNormalization,omitempty"`
}

// Header holds measurement-wide metadata delivered ahead of the records
type Header struct {
	Location    string               `json:"location,omitempty" yaml:"location,omitempty"`
	Comment     string               `json:"comment,omitempty" yaml:"comment,omitempty"`
	LiveComment string               `json:"liveComment,omitempty" yaml:"liveComment,omitempty"`
	Start       time.Time            `json:"start,omitempty" yaml:"start,omitempty"`
	Stop        time.Time            `json:"stop,omitempty" yaml:"stop,omitempty"`
	Version     string               `json:"version,omitempty" yaml:"version,omitempty"`
	XMLVersion  string               `json:"xmlVersion,omitempty" yaml:"xmlVersion,omitempty"`
	H5Version   string               `json:"h5Version,omitempty" yaml:"h5Version,omitempty"`
	Chains      map[int]*ChainHeader `json:"chains,omitempty" yaml:"chains,omitempty"`
}

// Chain returns the header of the given chain, never nil
func (h *Header) Chain(id int) *ChainHeader {
	if h == nil || h.Chains == nil {
		return &ChainHeader{}
	}
	if ret, ok := h.Chains[id]; ok && ret != nil {
		return ret
	}
	return &ChainHeader{}
}

// Source provides the raw records of one measurement, in emission order.
// Records may interleave chains; Records can be ranged over more than once.
type Source interface {
	Header() *Header
	Records() iter.Seq2[*Record, error]
}

type sliceSource struct {
	header  *Header
	records []*Record
}

func (s *sliceSource) Header() *Header {
	return s.header
}

func (s *sliceSource) Records() iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		for _, rec := range s.records {
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// NewSource creates an in-memory source
func NewSource(header *Header, records ...*Record) Source {
	if header == nil {
		header = &Header{}
	}
	return &sliceSource{header: header, records: records}
}
