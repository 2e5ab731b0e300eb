package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/angelmondragon/spa-backend/internal/catalog"
	"github.com/angelmondragon/spa-backend/internal/pricing"
	pkgerrors "github.com/angelmondragon/spa-backend/pkg/errors"
	"github.com/angelmondragon/spa-backend/pkg/logger"
	"github.com/angelmondragon/spa-backend/pkg/metrics"
)

const (
	opAdd    = "add"
	opRemove = "remove"
	opClear  = "clear"
)

type variationFinder interface {
	FindVariation(ctx context.Context, variationID string) (*catalog.Service, *catalog.Variation, error)
}

// View is the cart as rendered to clients.
type View struct {
	Items   []LineItem      `json:"items"`
	Summary pricing.Summary `json:"summary"`
}

// Service exposes per-client cart operations.
type Service interface {
	Get(ctx context.Context, clientID string) (*View, error)
	Items(ctx context.Context, clientID string) ([]LineItem, error)
	AddItem(ctx context.Context, clientID, variationID string) (*View, error)
	RemoveItem(ctx context.Context, clientID, itemID string) (*View, error)
	Clear(ctx context.Context, clientID string) (*View, error)
}

type service struct {
	storage Storage
	catalog variationFinder
	metrics *metrics.Metrics
	logg    *logger.Logger

	mu    sync.Mutex
	locks map[string]*clientLock
}

type clientLock struct {
	mu   sync.Mutex
	refs int
}

// NewService builds the cart service. metrics and logg may be nil.
func NewService(storage Storage, catalog variationFinder, m *metrics.Metrics, logg *logger.Logger) (Service, error) {
	if storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		storage: storage,
		catalog: catalog,
		metrics: m,
		logg:    logg,
		locks:   map[string]*clientLock{},
	}, nil
}

func (s *service) Get(ctx context.Context, clientID string) (*View, error) {
	var view *View
	err := s.withStore(ctx, clientID, func(store *Store) error {
		view = viewOf(store)
		return nil
	})
	return view, err
}

func (s *service) Items(ctx context.Context, clientID string) ([]LineItem, error) {
	var items []LineItem
	err := s.withStore(ctx, clientID, func(store *Store) error {
		items = store.Items()
		return nil
	})
	return items, err
}

// AddItem resolves the variation from the catalog so prices are never taken from the caller.
func (s *service) AddItem(ctx context.Context, clientID, variationID string) (*View, error) {
	svc, variation, err := s.catalog.FindVariation(ctx, variationID)
	if err != nil {
		return nil, err
	}
	item := ItemFromVariation(*svc, *variation)

	var view *View
	err = s.withStore(ctx, clientID, func(store *Store) error {
		if err := store.AddItem(ctx, item); err != nil {
			return storageError(err)
		}
		view = viewOf(store)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation(opAdd)
	return view, nil
}

func (s *service) RemoveItem(ctx context.Context, clientID, itemID string) (*View, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	var view *View
	err := s.withStore(ctx, clientID, func(store *Store) error {
		if err := store.RemoveItem(ctx, itemID); err != nil {
			return storageError(err)
		}
		view = viewOf(store)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation(opRemove)
	return view, nil
}

func (s *service) Clear(ctx context.Context, clientID string) (*View, error) {
	var view *View
	err := s.withStore(ctx, clientID, func(store *Store) error {
		if err := store.Clear(ctx); err != nil {
			return storageError(err)
		}
		view = viewOf(store)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCartMutation(opClear)
	return view, nil
}

// withStore loads the client's cart under a per-client lock and runs fn.
func (s *service) withStore(ctx context.Context, clientID string, fn func(*Store) error) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "client id is required")
	}
	unlock := s.lock(clientID)
	defer unlock()

	store, err := NewStore(s.storage, clientID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to open cart")
	}
	if err := store.Load(ctx); err != nil {
		s.logg.Error(ctx, "cart.load_failed", err)
		return storageError(err)
	}
	return fn(store)
}

func (s *service) lock(clientID string) func() {
	s.mu.Lock()
	l, ok := s.locks[clientID]
	if !ok {
		l = &clientLock{}
		s.locks[clientID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, clientID)
		}
		s.mu.Unlock()
	}
}

func viewOf(store *Store) *View {
	items := store.Items()
	return &View{Items: items, Summary: pricing.Summarize(items)}
}

func storageError(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart storage unavailable")
}
