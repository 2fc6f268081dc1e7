// Package live holds the values shown on the display screen.
package live

import (
	"sync"
	"time"

	"github.com/ericogr/accel-logger/pkg/broker"
	"github.com/ericogr/accel-logger/pkg/sensor"
	"github.com/gammazero/deque"
)

const maxNotices = 20

type State struct {
	mu       sync.Mutex
	latest   sensor.Sample
	has      bool
	recent   *deque.Deque[sensor.Sample]
	notices  *deque.Deque[broker.Notice]
	capacity int
	pub      broker.Publisher
	now      func() time.Time
}

// New keeps the last capacity samples. pub may be nil.
func New(capacity int, pub broker.Publisher) *State {
	if capacity <= 0 {
		capacity = 1
	}
	return &State{
		recent:   deque.New[sensor.Sample](0, capacity),
		notices:  deque.New[broker.Notice](0, maxNotices),
		capacity: capacity,
		pub:      pub,
		now:      time.Now,
	}
}

func (s *State) Update(sample sensor.Sample) {
	s.mu.Lock()
	s.latest = sample
	s.has = true
	s.recent.PushBack(sample)
	for s.recent.Len() > s.capacity {
		s.recent.PopFront()
	}
	s.mu.Unlock()

	if s.pub != nil {
		s.pub.Publish(broker.Sample{X: sample.X, Y: sample.Y, Z: sample.Z, Timestamp: sample.Timestamp})
	}
}

// Latest returns the last sample, or false before the first one arrives.
func (s *State) Latest() (sensor.Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.has
}

// Recent returns the retained samples, oldest first.
func (s *State) Recent() []sensor.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sensor.Sample, s.recent.Len())
	for i := range out {
		out[i] = s.recent.At(i)
	}
	return out
}

// Notify records a notice and publishes it to live subscribers.
func (s *State) Notify(text string) {
	n := broker.Notice{Text: text, Timestamp: s.now()}

	s.mu.Lock()
	s.notices.PushBack(n)
	for s.notices.Len() > maxNotices {
		s.notices.PopFront()
	}
	s.mu.Unlock()

	if s.pub != nil {
		s.pub.Publish(n)
	}
}

// Notices returns the retained notices, oldest first.
func (s *State) Notices() []broker.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]broker.Notice, s.notices.Len())
	for i := range out {
		out[i] = s.notices.At(i)
	}
	return out
}
