// Package hoststats samples the host process's CPU and memory use on a
// background goroutine so the overlay can show them without ever touching
// gopsutil from the render thread.
package hoststats

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/simwidget/overlay/internal/logging"
)

var log = logging.L("hoststats")

// DefaultInterval is how often the sampler refreshes. Process CPU percent
// is measured over the gap between samples, so shorter intervals get
// noisier, not fresher.
const DefaultInterval = 2 * time.Second

// Stats is one sample of the host process.
type Stats struct {
	CPUPercent float64
	RSSMB      float64
	SampledAt  time.Time
}

// Sampler periodically refreshes the stats of the current process.
type Sampler struct {
	proc     *process.Process
	interval time.Duration

	latest atomic.Pointer[Stats]
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewSampler builds a sampler over the current process.
func NewSampler(interval time.Duration) (*Sampler, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("hoststats: open process: %w", err)
	}
	return &Sampler{proc: proc, interval: interval, done: make(chan struct{})}, nil
}

// Start launches the sampling goroutine.
func (s *Sampler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		s.sample()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				s.sample()
			}
		}
	}()
}

// Stop ends sampling.
func (s *Sampler) Stop() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}

// Latest returns the most recent sample without blocking. ok is false
// until the first sample lands.
func (s *Sampler) Latest() (Stats, bool) {
	if st := s.latest.Load(); st != nil {
		return *st, true
	}
	return Stats{}, false
}

func (s *Sampler) sample() {
	st := Stats{SampledAt: time.Now()}
	if cpu, err := s.proc.CPUPercent(); err == nil {
		st.CPUPercent = cpu
	} else {
		log.Debug("cpu sample failed", "error", err)
	}
	if mem, err := s.proc.MemoryInfo(); err == nil && mem != nil {
		st.RSSMB = float64(mem.RSS) / 1024 / 1024
	}
	s.latest.Store(&st)
}
