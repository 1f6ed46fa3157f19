package repository

import (
	"context"

	"github.com/andy/clientes/internal/domain"
)

// ClienteRepository is the cached access to clientes used by the views
type ClienteRepository interface {
	List(ctx context.Context) ([]domain.Cliente, error)
	Get(ctx context.Context, id *int64) (*domain.ClienteDetalle, error) // nil id returns nil without fetching
	Search(ctx context.Context, q string) ([]domain.Cliente, error)
	Create(ctx context.Context, dto domain.CreateClienteDto) (*domain.Cliente, error)
	Update(ctx context.Context, id int64, dto domain.UpdateClienteDto) error
	Delete(ctx context.Context, id int64) error

	// Refresh marks every read stale so the next access refetches
	Refresh()

	CachedList() (list []domain.Cliente, fresh, ok bool)
	CachedSearch(q string) (list []domain.Cliente, fresh, ok bool)
	CachedDetail(id int64) (detail *domain.ClienteDetalle, fresh, ok bool)
}

var _ ClienteRepository = (*ClienteRepo)(nil)
