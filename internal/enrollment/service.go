// internal/enrollment/service.go
package enrollment

import (
	"context"
	"sync"
	"time"

	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
	"mergington-activities/internal/events"
	"mergington-activities/internal/models"

	"github.com/google/uuid"
)

const (
	actionSignup     = "signup"
	actionUnregister = "unregister"

	defaultPublishTimeout = 3 * time.Second
	defaultQueueSize      = 256
)

// Service wraps the registry with metrics, logging and event publication.
type Service struct {
	registry  *Registry
	publisher events.Publisher
	logger    logger.Logger
	timeout   time.Duration
	now       func() time.Time

	// set by WithAsyncPublish
	mu     sync.RWMutex
	queue  chan models.EnrollmentEvent
	closed bool
	done   chan struct{}
}

func NewService(reg *Registry, publisher events.Publisher, log logger.Logger, publishTimeout time.Duration) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if publishTimeout <= 0 {
		publishTimeout = defaultPublishTimeout
	}
	for _, a := range reg.List() {
		metrics.ActivityEnrollment.WithLabelValues(a.Name).Set(float64(len(a.Participants)))
	}
	return &Service{
		registry:  reg,
		publisher: publisher,
		logger:    log.WithFields(map[string]interface{}{"component": "enrollment"}),
		timeout:   publishTimeout,
		now:       time.Now,
	}
}

// WithAsyncPublish hands events to a background worker through a bounded
// queue so sinks never add latency to a request. Events that do not fit in
// the queue are dropped and counted as publish failures. Call Close to
// deliver what is queued and stop the worker.
func (s *Service) WithAsyncPublish(queueSize int) *Service {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	s.queue = make(chan models.EnrollmentEvent, queueSize)
	s.done = make(chan struct{})
	go s.worker()
	return s
}

// Close drains queued events. Events recorded after Close are published
// inline.
func (s *Service) Close() {
	s.mu.Lock()
	if s.queue == nil || s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()
	<-s.done
}

func (s *Service) worker() {
	defer close(s.done)
	for event := range s.queue {
		s.publish(context.Background(), event)
	}
}

func (s *Service) Registry() *Registry {
	return s.registry
}

func (s *Service) List() models.Catalog {
	return s.registry.List()
}

func (s *Service) Signup(ctx context.Context, activityName, email string) (*models.MessageResponse, error) {
	count, err := s.registry.signup(activityName, email)
	if err != nil {
		s.reject(actionSignup, activityName, email, err)
		return nil, err
	}
	s.record(ctx, models.EventSignup, activityName, email, count)
	return &models.MessageResponse{Message: signupMessage(activityName, email)}, nil
}

func (s *Service) Unregister(ctx context.Context, activityName, email string) (*models.MessageResponse, error) {
	count, err := s.registry.unregister(activityName, email)
	if err != nil {
		s.reject(actionUnregister, activityName, email, err)
		return nil, err
	}
	s.record(ctx, models.EventUnregister, activityName, email, count)
	return &models.MessageResponse{Message: unregisterMessage(activityName, email)}, nil
}

func (s *Service) reject(action, activityName, email string, err error) {
	metrics.EnrollmentRejected.WithLabelValues(action, err.Error()).Inc()
	s.logger.Info("enrollment rejected", map[string]interface{}{
		"action":   action,
		"activity": activityName,
		"email":    email,
		"reason":   err.Error(),
	})
}

func (s *Service) record(ctx context.Context, eventType models.EventType, activityName, email string, count int) {
	action := string(eventType)
	metrics.EnrollmentChanges.WithLabelValues(activityName, action).Inc()
	metrics.ActivityEnrollment.WithLabelValues(activityName).Set(float64(count))

	s.logger.Info("enrollment changed", map[string]interface{}{
		"action":       action,
		"activity":     activityName,
		"email":        email,
		"participants": count,
		"version":      s.registry.Version(),
	})

	event := models.EnrollmentEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Activity:   activityName,
		Email:      email,
		OccurredAt: s.now().UTC(),
	}

	if s.enqueue(event) {
		return
	}
	s.publish(ctx, event)
}

func (s *Service) enqueue(event models.EnrollmentEvent) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.queue == nil || s.closed {
		return false
	}
	select {
	case s.queue <- event:
	default:
		metrics.EventPublishFailures.WithLabelValues(string(event.Type)).Inc()
		s.logger.Warn("event queue full, dropping enrollment event", map[string]interface{}{
			"eventId":  event.ID,
			"action":   string(event.Type),
			"activity": event.Activity,
		})
	}
	return true
}

func (s *Service) publish(ctx context.Context, event models.EnrollmentEvent) {
	// The response has already been decided; a cancelled request must not
	// abort delivery.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, event); err != nil {
		metrics.EventPublishFailures.WithLabelValues(string(event.Type)).Inc()
		s.logger.Warn("failed to publish enrollment event", map[string]interface{}{
			"eventId":  event.ID,
			"action":   string(event.Type),
			"activity": event.Activity,
			"error":    err,
		})
	}
}
