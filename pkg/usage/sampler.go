package usage

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ErrSample is returned when the OS metrics source cannot be read.
var ErrSample = errors.New("usage: sampling failed")

// Scope selects what CPU utilisation is measured.
type Scope string

const (
	// ScopeSystem measures utilisation of all CPUs on the host.
	ScopeSystem Scope = "system"
	// ScopeProcess measures utilisation by the current process only.
	ScopeProcess Scope = "process"
)

// ParseScope parses "system" or "process" (case-insensitive).
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(s)) {
	case ScopeSystem:
		return ScopeSystem, nil
	case ScopeProcess:
		return ScopeProcess, nil
	}
	return "", fmt.Errorf("invalid cpu scope %q (want system or process)", s)
}

// Sampler reads instantaneous CPU utilisation and the resident memory of
// the current process.
type Sampler interface {
	CPUPercent() (float64, error)
	RSSBytes() (uint64, error)
}

// ProcessSampler reads OS statistics through gopsutil.
//
// CPU percent with a zero interval is measured against the previous reading,
// so a wrapped call reports utilisation since the sampler's last read, not
// strictly during the call. NewSampler takes one baseline reading so the
// first call is not measured against process start.
type ProcessSampler struct {
	mu    sync.Mutex
	proc  *process.Process
	scope Scope
}

// NewSampler creates a sampler for the current process.
func NewSampler(scope Scope) (*ProcessSampler, error) {
	if _, err := ParseScope(string(scope)); err != nil {
		return nil, err
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSample, err)
	}
	s := &ProcessSampler{proc: proc, scope: scope}
	if _, err := s.CPUPercent(); err != nil {
		return nil, err
	}
	return s, nil
}

// Scope returns what CPU utilisation this sampler measures.
func (s *ProcessSampler) Scope() Scope {
	return s.scope
}

// CPUPercent returns utilisation since the previous reading, in percent.
func (s *ProcessSampler) CPUPercent() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scope == ScopeProcess {
		pct, err := s.proc.Percent(0)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrSample, err)
		}
		return pct, nil
	}

	pcts, err := cpu.Percent(0, false)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSample, err)
	}
	if len(pcts) == 0 {
		return 0, fmt.Errorf("%w: no cpu reading", ErrSample)
	}
	return pcts[0], nil
}

// RSSBytes returns the resident set size of the current process.
func (s *ProcessSampler) RSSBytes() (uint64, error) {
	info, err := s.proc.MemoryInfo()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSample, err)
	}
	return info.RSS, nil
}
