package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrIncompleteScan    = errors.New("incomplete scan module")
	ErrInferredTimestamp = errors.New("position count without timestamp")
	ErrNoChains          = errors.New("no chain could be built")
	ErrUnknownChain      = errors.New("unknown chain")
	ErrUnknownModule     = errors.New("unknown scan module")
	ErrUnknownSeries     = errors.New("unknown axis or channel")
)

// Warning is a recoverable problem found while building a dataset
type Warning struct {
	Chain  int
	Module string
	Err    error
}

func (w Warning) Error() string {
	if w.Module == "" {
		return fmt.Sprintf("chain %d: %v", w.Chain, w.Err)
	}
	return fmt.Sprintf("chain %d module %s: %v", w.Chain, w.Module, w.Err)
}

func (w Warning) Unwrap() error {
	return w.Err
}

// Failure is a chain left out of a dataset
type Failure struct {
	Chain int
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("chain %d: %v", f.Chain, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}
