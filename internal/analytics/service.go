// internal/analytics/service.go
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
	"mergington-activities/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Source is the read side of the activity registry.
type Source interface {
	List() models.Catalog
	Get(name string) (models.Activity, error)
	Version() uint64
}

// Service answers analytics queries, optionally through a Redis cache.
// Cache keys embed the registry version, so entries written before a
// signup or unregistration are never read again.
type Service struct {
	source   Source
	opts     Options
	redis    *redis.Client
	ttl      time.Duration
	instance string
	logger   logger.Logger
}

func NewService(source Source, opts Options, log logger.Logger) *Service {
	return &Service{
		source:   source,
		opts:     opts,
		instance: uuid.NewString(),
		logger:   log.WithFields(map[string]interface{}{"component": "analytics"}),
	}
}

// WithCache enables cache-aside lookups against client.
func (s *Service) WithCache(client *redis.Client, ttl time.Duration) *Service {
	s.redis = client
	s.ttl = ttl
	return s
}

func (s *Service) Student(ctx context.Context, email string) (*models.StudentAnalytics, error) {
	out := &models.StudentAnalytics{}
	err := s.cached(ctx, "student", s.key("student", email), out, func() (interface{}, error) {
		return Student(s.source.List(), email, s.opts), nil
	})
	return out, err
}

func (s *Service) Activity(ctx context.Context, name string) (*models.ActivityAnalytics, error) {
	out := &models.ActivityAnalytics{}
	err := s.cached(ctx, "activity", s.key("activity", name), out, func() (interface{}, error) {
		a, err := s.source.Get(name)
		if err != nil {
			return nil, err
		}
		return Activity(a), nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Overview(ctx context.Context) (*models.OverviewAnalytics, error) {
	out := &models.OverviewAnalytics{}
	err := s.cached(ctx, "overview", s.key("overview", ""), out, func() (interface{}, error) {
		return Overview(s.source.List()), nil
	})
	return out, err
}

// key must be computed before the snapshot is taken so a stored value is
// never older than the version in its key.
func (s *Service) key(query, arg string) string {
	k := fmt.Sprintf("analytics:%s:v%d:%s", s.instance, s.source.Version(), query)
	if arg != "" {
		k += ":" + arg
	}
	return k
}

// cached decodes the entry at key into dst, or runs compute, copies its
// result into dst and stores it. Redis failures fall through to compute.
func (s *Service) cached(ctx context.Context, query, key string, dst interface{}, compute func() (interface{}, error)) error {
	if s.redis != nil {
		val, err := s.redis.Get(ctx, key).Result()
		switch {
		case err == nil:
			if jsonErr := json.Unmarshal([]byte(val), dst); jsonErr == nil {
				metrics.AnalyticsCacheLookups.WithLabelValues(query, "hit").Inc()
				return nil
			}
			metrics.AnalyticsCacheLookups.WithLabelValues(query, "corrupt").Inc()
		case err == redis.Nil:
			metrics.AnalyticsCacheLookups.WithLabelValues(query, "miss").Inc()
		default:
			metrics.AnalyticsCacheLookups.WithLabelValues(query, "error").Inc()
			s.logger.Warn("analytics cache read failed", map[string]interface{}{
				"key":   key,
				"error": err,
			})
		}
	}

	result, err := compute()
	if err != nil {
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal %s analytics: %w", query, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("copy %s analytics: %w", query, err)
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.logger.Warn("analytics cache write failed", map[string]interface{}{
				"key":   key,
				"error": err,
			})
		}
	}
	return nil
}
