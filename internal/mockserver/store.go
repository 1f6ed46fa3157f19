package mockserver

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andy/clientes/internal/domain"
	"github.com/andy/clientes/internal/format"
)

var (
	// ErrNotFound is returned for unknown ids and for writes to deleted ones
	ErrNotFound = errors.New("cliente no encontrado")
	// ErrIDMismatch is returned when an update body names another id
	ErrIDMismatch = errors.New("el id del cuerpo no coincide con el de la ruta")
)

// birthLayout is how the service writes birth dates back
const birthLayout = "2006-01-02T15:04:05"

// Store is an in-memory table of clientes with soft delete
type Store struct {
	mu       sync.RWMutex
	nextID   int64
	clientes map[int64]*domain.ClienteDetalle
	now      func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		nextID:   1,
		clientes: make(map[int64]*domain.ClienteDetalle),
		now:      time.Now,
	}
}

// Seed loads a few sample clientes
func (s *Store) Seed() {
	samples := []domain.CreateClienteDto{
		{
			Nombres:         "Juan",
			Apellidos:       "Pérez",
			FechaNacimiento: datePtr(1985, time.March, 12),
			CUIT:            "20-12345678-6",
			Domicilio:       "Av. Corrientes 1234, CABA",
			TelefonoCelular: "11-5555-1234",
			Email:           "juan.perez@example.com",
		},
		{
			Nombres:         "María",
			Apellidos:       "Gómez",
			FechaNacimiento: datePtr(1990, time.June, 15),
			CUIT:            "27-30111222-5",
			Domicilio:       "San Martín 455, Rosario",
			TelefonoCelular: "341-444-9876",
			Email:           "maria.gomez@example.com",
		},
		{
			Nombres:         "Carlos Alberto",
			Apellidos:       "Fernández",
			CUIT:            "23-28999000-3",
			TelefonoCelular: "351-222-3344",
			Email:           "carlos.fernandez@example.com",
		},
	}
	for _, dto := range samples {
		s.Create(dto)
	}
}

func datePtr(y int, m time.Month, d int) *domain.Date {
	date := domain.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	return &date
}

// List returns the active clientes ordered by id
func (s *Store) List() []domain.Cliente {
	return s.filter(func(domain.ClienteDetalle) bool { return true })
}

// Search returns the active clientes whose names contain q, ignoring case
func (s *Store) Search(q string) []domain.Cliente {
	needle := strings.ToLower(strings.TrimSpace(q))
	return s.filter(func(c domain.ClienteDetalle) bool {
		return strings.Contains(strings.ToLower(c.Nombres), needle) ||
			strings.Contains(strings.ToLower(c.Apellidos), needle) ||
			strings.Contains(strings.ToLower(c.FullName()), needle)
	})
}

func (s *Store) filter(keep func(domain.ClienteDetalle) bool) []domain.Cliente {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Cliente, 0, len(s.clientes))
	for _, c := range s.clientes {
		if c.Eliminado || !keep(*c) {
			continue
		}
		out = append(out, c.Cliente)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the detail for id. Deleted clientes are still readable.
func (s *Store) Get(id int64) (domain.ClienteDetalle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clientes[id]
	if !ok {
		return domain.ClienteDetalle{}, ErrNotFound
	}
	return *c, nil
}

// Create assigns an id and stores the cliente. The id in dto is ignored.
func (s *Store) Create(dto domain.CreateClienteDto) domain.Cliente {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	c := &domain.ClienteDetalle{
		Cliente: domain.Cliente{
			ID:              id,
			Nombres:         dto.Nombres,
			Apellidos:       dto.Apellidos,
			FechaNacimiento: birthString(dto.FechaNacimiento),
			CUIT:            dto.CUIT,
			Domicilio:       dto.Domicilio,
			TelefonoCelular: dto.TelefonoCelular,
			Email:           dto.Email,
		},
		FechaCreacion: domain.Timestamp{Time: s.now()},
	}
	s.clientes[id] = c
	return c.Cliente
}

// Update replaces the editable fields of an active cliente
func (s *Store) Update(id int64, dto domain.UpdateClienteDto) error {
	if dto.ID != id {
		return ErrIDMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clientes[id]
	if !ok || c.Eliminado {
		return ErrNotFound
	}
	updated := c.Apply(dto)
	updated.FechaNacimiento = birthString(dto.FechaNacimiento)
	updated.FechaModificacion = &domain.Timestamp{Time: s.now()}
	*c = updated
	return nil
}

// Delete flags an active cliente as deleted
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clientes[id]
	if !ok || c.Eliminado {
		return ErrNotFound
	}
	c.Eliminado = true
	c.FechaModificacion = &domain.Timestamp{Time: s.now()}
	return nil
}

func birthString(d *domain.Date) string {
	if d == nil {
		return ""
	}
	return d.Format(birthLayout)
}

// formFromDto runs an incoming payload through the same rules the client
// applies before sending
func formFromDto(nombres, apellidos string, fecha *domain.Date, cuit, domicilio, telefono, email string) domain.ClienteForm {
	f := domain.ClienteForm{
		Nombres:         nombres,
		Apellidos:       apellidos,
		CUIT:            cuit,
		Domicilio:       domicilio,
		TelefonoCelular: telefono,
		Email:           email,
	}
	if fecha != nil {
		f.FechaNacimiento = fecha.Format(format.DisplayLayout)
	}
	return f
}
