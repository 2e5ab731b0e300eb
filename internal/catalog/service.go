package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
	"github.com/angelmondragon/spa-backend/pkg/logger"
)

// Catalog exposes the normalized service list.
type Catalog interface {
	List(ctx context.Context) ([]Service, error)
	Get(ctx context.Context, id string) (*Service, error)
	FindVariation(ctx context.Context, variationID string) (*Service, *Variation, error)
	Invalidate(ctx context.Context) error
}

// Cache is the key/value store used for the listing cache.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type cacheKeyer interface {
	CacheKey(parts ...string) string
}

type service struct {
	source Source
	cache  Cache
	keyer  cacheKeyer
	ttl    time.Duration
	logg   *logger.Logger
}

// Options configures the optional listing cache.
type Options struct {
	Cache  Cache
	Keyer  cacheKeyer
	TTL    time.Duration
	Logger *logger.Logger
}

// New builds a Catalog over the source. Caching is on when Cache, Keyer and a positive TTL are set.
func New(source Source, opts Options) (Catalog, error) {
	if source == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		source: source,
		cache:  opts.Cache,
		keyer:  opts.Keyer,
		ttl:    opts.TTL,
		logg:   logg,
	}, nil
}

func (s *service) cacheEnabled() bool {
	return s.cache != nil && s.keyer != nil && s.ttl > 0
}

func (s *service) cacheKey() string {
	return s.keyer.CacheKey("catalog", s.source.Name())
}

// List returns every service. Cache faults fall through to the source.
func (s *service) List(ctx context.Context) ([]Service, error) {
	if s.cacheEnabled() {
		if cached, ok := s.readCache(ctx); ok {
			return cached, nil
		}
	}

	raws, err := s.source.Fetch(ctx)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog unavailable")
	}
	services := NormalizeAll(raws)

	if s.cacheEnabled() {
		s.writeCache(ctx, services)
	}
	return services, nil
}

func (s *service) readCache(ctx context.Context) ([]Service, bool) {
	payload, err := s.cache.Get(ctx, s.cacheKey())
	if err != nil {
		return nil, false
	}
	var services []Service
	if err := json.Unmarshal([]byte(payload), &services); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "cache_key", s.cacheKey()), "discarding unreadable catalog cache")
		return nil, false
	}
	return services, true
}

func (s *service) writeCache(ctx context.Context, services []Service) {
	payload, err := json.Marshal(services)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(), string(payload), s.ttl); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog cache write failed")
	}
}

// Get returns one service by id.
func (s *service) Get(ctx context.Context, id string) (*Service, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id is required")
	}
	services, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range services {
		if services[i].ID == id {
			return &services[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
}

// FindVariation locates the service owning variationID.
func (s *service) FindVariation(ctx context.Context, variationID string) (*Service, *Variation, error) {
	variationID = strings.TrimSpace(variationID)
	if variationID == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "variation id is required")
	}
	services, err := s.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	for i := range services {
		for j := range services[i].Variations {
			if services[i].Variations[j].ID == variationID {
				return &services[i], &services[i].Variations[j], nil
			}
		}
	}
	return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "service variation not found")
}

// Invalidate drops the cached listing.
func (s *service) Invalidate(ctx context.Context) error {
	if !s.cacheEnabled() {
		return nil
	}
	return s.cache.Del(ctx, s.cacheKey())
}
