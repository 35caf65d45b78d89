// Package hoststat samples host CPU and memory usage for the HTTP mirror.
package hoststat

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/mackerelio/go-osstat/cpu"
	"github.com/mackerelio/go-osstat/memory"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/ufwtail/pkg/logging"
)

// DefaultInterval is the delay between samples.
const DefaultInterval = 5 * time.Second

// Snapshot is one host usage sample.
type Snapshot struct {
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryTotal   uint64    `json:"memory_total"`
	MemoryUsed    uint64    `json:"memory_used"`
	MemoryPercent float64   `json:"memory_percent"`
	Sampled       time.Time `json:"sampled"`
	Error         string    `json:"error,omitempty"`
}

type cpuTimes struct {
	idle, total uint64
}

type memUsage struct {
	total, used uint64
}

// Sampler periodically reads CPU and memory counters. CPU usage is the busy
// share between two consecutive samples, so the first sample reports 0.
type Sampler struct {
	interval time.Duration
	logger   *logging.ColoredLogger

	readCPU func() (cpuTimes, error)
	readMem func() (memUsage, error)
	now     func() time.Time

	prev    *cpuTimes
	last    atomic.Pointer[Snapshot]
	samples atomic.Uint64
}

// NewSampler creates a sampler reading the real host counters.
func NewSampler(interval time.Duration, logger *logging.ColoredLogger) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Sampler{
		interval: interval,
		logger:   logger,
		readCPU:  readHostCPU,
		readMem:  readHostMemory,
		now:      time.Now,
	}
}

func readHostCPU() (cpuTimes, error) {
	s, err := cpu.Get()
	if err != nil {
		return cpuTimes{}, err
	}
	return cpuTimes{idle: s.Idle, total: s.Total}, nil
}

func readHostMemory() (memUsage, error) {
	s, err := memory.Get()
	if err != nil {
		return memUsage{}, err
	}
	return memUsage{total: s.Total, used: s.Used}, nil
}

// Sample takes one reading and stores it as the latest snapshot. A failed
// read is recorded in Snapshot.Error and keeps the fields it could fill.
func (s *Sampler) Sample() Snapshot {
	snap := Snapshot{Sampled: s.now()}

	if c, err := s.readCPU(); err != nil {
		snap.Error = "cpu: " + err.Error()
	} else {
		if s.prev != nil && c.total > s.prev.total {
			idle := float64(c.idle - s.prev.idle)
			total := float64(c.total - s.prev.total)
			snap.CPUPercent = (1 - idle/total) * 100
		}
		s.prev = &c
	}

	if m, err := s.readMem(); err != nil {
		if snap.Error != "" {
			snap.Error += "; "
		}
		snap.Error += "memory: " + err.Error()
	} else {
		snap.MemoryTotal = m.total
		snap.MemoryUsed = m.used
		if m.total > 0 {
			snap.MemoryPercent = float64(m.used) / float64(m.total) * 100
		}
	}

	if snap.Error != "" && s.samples.Load() == 0 {
		s.logger.ComponentWarn(logging.ComponentAPI, "host usage unavailable", zap.String("error", snap.Error))
	}
	s.samples.Add(1)
	s.last.Store(&snap)
	return snap
}

// Last returns the newest snapshot. Safe for concurrent use.
func (s *Sampler) Last() (Snapshot, bool) {
	p := s.last.Load()
	if p == nil {
		return Snapshot{}, false
	}
	return *p, true
}

// Run samples until ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		s.Sample()
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
