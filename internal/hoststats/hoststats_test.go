package hoststats

import (
	"testing"
	"time"
)

func TestLatestBeforeFirstSample(t *testing.T) {
	s, err := NewSampler(time.Minute)
	if err != nil {
		t.Fatalf("NewSampler: %v", err)
	}
	if _, ok := s.Latest(); ok {
		t.Error("Latest reported a sample before any was taken")
	}
}

func TestSampleCurrentProcess(t *testing.T) {
	s, err := NewSampler(time.Minute)
	if err != nil {
		t.Fatalf("NewSampler: %v", err)
	}
	s.sample()

	st, ok := s.Latest()
	if !ok {
		t.Fatal("no sample after sample()")
	}
	if st.CPUPercent < 0 {
		t.Errorf("cpu percent = %v", st.CPUPercent)
	}
	if st.RSSMB <= 0 {
		t.Errorf("rss = %v MB, want > 0 for a live process", st.RSSMB)
	}
	if st.SampledAt.IsZero() {
		t.Error("sample timestamp not set")
	}
}

func TestStartStop(t *testing.T) {
	s, err := NewSampler(10 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewSampler: %v", err)
	}
	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := s.Latest(); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("sampler never produced a sample")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
