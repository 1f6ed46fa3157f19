package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andy/clientes/internal/cache"
	"github.com/andy/clientes/internal/domain"
	"github.com/andy/clientes/internal/service"
)

// Cache keys
const (
	KeyList         = "clientes/list"
	keyDetailPrefix = "clientes/detail/"
	keySearchPrefix = "clientes/search/"
)

// KeyDetail is the cache key for the detail of cliente id
func KeyDetail(id int64) string {
	return fmt.Sprintf("%s%d", keyDetailPrefix, id)
}

// KeySearch is the cache key for a raw search query
func KeySearch(q string) string {
	return keySearchPrefix + q
}

// Default stale windows
const (
	DefaultListStale   = 5 * time.Minute
	DefaultDetailStale = 5 * time.Minute
	DefaultSearchStale = 2 * time.Minute
)

// StaleWindows sets how long each kind of read stays fresh
type StaleWindows struct {
	List   time.Duration
	Detail time.Duration
	Search time.Duration
}

// DefaultStaleWindows returns the built-in windows
func DefaultStaleWindows() StaleWindows {
	return StaleWindows{
		List:   DefaultListStale,
		Detail: DefaultDetailStale,
		Search: DefaultSearchStale,
	}
}

// ClienteRepo serves cliente reads from a cache and keeps the cache
// coherent after writes
type ClienteRepo struct {
	svc    service.ClienteService
	store  *cache.Store
	stale  StaleWindows
	logger *logrus.Logger
}

// NewClienteRepo creates a new ClienteRepo. Zero stale windows fall back to
// the defaults.
func NewClienteRepo(svc service.ClienteService, store *cache.Store, stale StaleWindows, logger *logrus.Logger) *ClienteRepo {
	def := DefaultStaleWindows()
	if stale.List <= 0 {
		stale.List = def.List
	}
	if stale.Detail <= 0 {
		stale.Detail = def.Detail
	}
	if stale.Search <= 0 {
		stale.Search = def.Search
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ClienteRepo{svc: svc, store: store, stale: stale, logger: logger}
}

// SearchActive reports whether q triggers a search
func SearchActive(q string) bool {
	return strings.TrimSpace(q) != ""
}

// List returns all clientes
func (r *ClienteRepo) List(ctx context.Context) ([]domain.Cliente, error) {
	return cache.Fetch(ctx, r.store, KeyList, r.stale.List, r.svc.List)
}

// Get returns the detail of cliente id. A nil id performs no fetch and
// returns nil.
func (r *ClienteRepo) Get(ctx context.Context, id *int64) (*domain.ClienteDetalle, error) {
	if id == nil {
		return nil, nil
	}
	return cache.Fetch(ctx, r.store, KeyDetail(*id), r.stale.Detail, func(ctx context.Context) (*domain.ClienteDetalle, error) {
		return r.svc.GetByID(ctx, *id)
	})
}

// Search returns clientes matching q. An inactive query returns nil without
// contacting the service.
func (r *ClienteRepo) Search(ctx context.Context, q string) ([]domain.Cliente, error) {
	if !SearchActive(q) {
		return nil, nil
	}
	return cache.Fetch(ctx, r.store, KeySearch(q), r.stale.Search, func(ctx context.Context) ([]domain.Cliente, error) {
		return r.svc.Search(ctx, q)
	})
}

// Create stores a new cliente; on success the list is refetched on next read
func (r *ClienteRepo) Create(ctx context.Context, dto domain.CreateClienteDto) (*domain.Cliente, error) {
	created, err := r.svc.Create(ctx, dto)
	if err != nil {
		return nil, err
	}
	r.afterWrite()
	r.logger.WithField("id", created.ID).Info("cliente created")
	return created, nil
}

// Update saves the editable fields of cliente id. The cached detail, if
// any, is replaced with the merged state and left stale.
func (r *ClienteRepo) Update(ctx context.Context, id int64, dto domain.UpdateClienteDto) error {
	dto.ID = id
	if err := r.svc.Update(ctx, id, dto); err != nil {
		return err
	}
	r.afterWrite()

	key := KeyDetail(id)
	if prev, _, ok := cache.Peek[*domain.ClienteDetalle](r.store, key); ok && prev != nil {
		merged := prev.Apply(dto)
		r.store.SetStale(key, &merged, r.stale.Detail)
	} else {
		r.store.Invalidate(key)
	}
	r.logger.WithField("id", id).Info("cliente updated")
	return nil
}

// Delete removes cliente id and drops its cached detail
func (r *ClienteRepo) Delete(ctx context.Context, id int64) error {
	if err := r.svc.Delete(ctx, id); err != nil {
		return err
	}
	r.afterWrite()
	r.store.Remove(KeyDetail(id))
	r.logger.WithField("id", id).Info("cliente deleted")
	return nil
}

// Refresh marks every cliente read stale
func (r *ClienteRepo) Refresh() {
	r.store.Invalidate(KeyList)
	r.store.InvalidatePrefix(keySearchPrefix)
	r.store.InvalidatePrefix(keyDetailPrefix)
}

func (r *ClienteRepo) afterWrite() {
	r.store.Invalidate(KeyList)
	r.store.InvalidatePrefix(keySearchPrefix)
}

// CachedList returns the cached list without fetching
func (r *ClienteRepo) CachedList() (list []domain.Cliente, fresh, ok bool) {
	return cache.Peek[[]domain.Cliente](r.store, KeyList)
}

// CachedSearch returns cached search results for q without fetching
func (r *ClienteRepo) CachedSearch(q string) (list []domain.Cliente, fresh, ok bool) {
	if !SearchActive(q) {
		return nil, false, false
	}
	return cache.Peek[[]domain.Cliente](r.store, KeySearch(q))
}

// CachedDetail returns the cached detail of cliente id without fetching
func (r *ClienteRepo) CachedDetail(id int64) (detail *domain.ClienteDetalle, fresh, ok bool) {
	return cache.Peek[*domain.ClienteDetalle](r.store, KeyDetail(id))
}
