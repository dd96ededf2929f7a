package metrics

import (
	"time"

	"github.com/LavishGent/productcache/internal/types"
)

// Timer measures one operation and reports it to a Publisher when stopped.
type Timer struct {
	publisher types.Publisher
	name      string
	tags      []string
	start     time.Time
}

func NewTimer(publisher types.Publisher, name string, tags ...string) *Timer {
	return &Timer{
		publisher: publisher,
		name:      name,
		tags:      tags,
		start:     time.Now(),
	}
}

// Stop records the elapsed time as a timing metric and returns the duration.
func (t *Timer) Stop() time.Duration {
	duration := time.Since(t.start)
	t.publisher.Timing(t.name, duration, t.tags...)
	return duration
}

// StopWith is Stop with tags only known once the operation finished,
// such as a response status.
func (t *Timer) StopWith(tags ...string) time.Duration {
	duration := time.Since(t.start)
	t.publisher.Timing(t.name, duration, mergeTags(t.tags, tags)...)
	return duration
}

// Elapsed returns the time since the timer was started without recording.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
