package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/andy/clientes/internal/api"
	"github.com/andy/clientes/internal/domain"
)

// ErrCreateEmpty is returned when the service accepts a create but sends
// no record back
var ErrCreateEmpty = errors.New("no se pudo crear el cliente")

const clientesPath = "clientes"

// ClienteService maps cliente operations onto the records service endpoints
type ClienteService interface {
	// List returns every cliente
	List(ctx context.Context) ([]domain.Cliente, error)

	// GetByID returns the detail record, or nil if the service sent none
	GetByID(ctx context.Context, id int64) (*domain.ClienteDetalle, error)

	// Search returns clientes whose name matches nombre
	Search(ctx context.Context, nombre string) ([]domain.Cliente, error)

	// Create stores a new cliente and returns it with its assigned id
	Create(ctx context.Context, dto domain.CreateClienteDto) (*domain.Cliente, error)

	// Update replaces the editable fields of cliente id
	Update(ctx context.Context, id int64, dto domain.UpdateClienteDto) error

	// Delete removes cliente id
	Delete(ctx context.Context, id int64) error
}

type clienteService struct {
	client *api.Client
}

// NewClienteService creates a new cliente service on top of client
func NewClienteService(client *api.Client) ClienteService {
	return &clienteService{client: client}
}

func clientePath(id int64) string {
	return fmt.Sprintf("%s/%d", clientesPath, id)
}

// SearchPath builds the search endpoint; spaces are encoded as %20
func SearchPath(nombre string) string {
	q := strings.ReplaceAll(url.QueryEscape(nombre), "+", "%20")
	return clientesPath + "/search?nombre=" + q
}

func (s *clienteService) List(ctx context.Context) ([]domain.Cliente, error) {
	out, err := api.Get[[]domain.Cliente](ctx, s.client, clientesPath)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return []domain.Cliente{}, nil
	}
	return *out, nil
}

func (s *clienteService) GetByID(ctx context.Context, id int64) (*domain.ClienteDetalle, error) {
	return api.Get[domain.ClienteDetalle](ctx, s.client, clientePath(id))
}

func (s *clienteService) Search(ctx context.Context, nombre string) ([]domain.Cliente, error) {
	out, err := api.Get[[]domain.Cliente](ctx, s.client, SearchPath(nombre))
	if err != nil {
		return nil, err
	}
	if out == nil {
		return []domain.Cliente{}, nil
	}
	return *out, nil
}

func (s *clienteService) Create(ctx context.Context, dto domain.CreateClienteDto) (*domain.Cliente, error) {
	dto.ID = 0
	out, err := api.Post[domain.Cliente](ctx, s.client, clientesPath, dto)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrCreateEmpty
	}
	return out, nil
}

func (s *clienteService) Update(ctx context.Context, id int64, dto domain.UpdateClienteDto) error {
	dto.ID = id
	_, err := api.Put[api.Empty](ctx, s.client, clientePath(id), dto)
	return err
}

func (s *clienteService) Delete(ctx context.Context, id int64) error {
	_, err := api.Delete[api.Empty](ctx, s.client, clientePath(id))
	return err
}
