// internal/events/publisher.go
package events

import (
	"context"
	"errors"
	"fmt"

	"mergington-activities/internal/models"
)

// Publisher delivers enrollment events to an external sink. Delivery is
// best effort; callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, event models.EnrollmentEvent) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, models.EnrollmentEvent) error { return nil }

// Fanout publishes to each sink in turn and joins their errors.
type Fanout struct {
	sinks []namedSink
}

type namedSink struct {
	name      string
	publisher Publisher
}

func NewFanout() *Fanout {
	return &Fanout{}
}

// Add registers a sink under name, used to label its errors.
func (f *Fanout) Add(name string, p Publisher) *Fanout {
	f.sinks = append(f.sinks, namedSink{name: name, publisher: p})
	return f
}

func (f *Fanout) Len() int {
	return len(f.sinks)
}

func (f *Fanout) Publish(ctx context.Context, event models.EnrollmentEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.publisher.Publish(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}
