package mockserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andy/clientes/internal/domain"
)

func fixedStore() *Store {
	s := NewStore()
	s.now = func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC) }
	return s
}

func TestStore_CreateAssignsIDs(t *testing.T) {
	s := fixedStore()

	a := s.Create(domain.CreateClienteDto{ID: 99, Nombres: "Ana", Apellidos: "López"})
	b := s.Create(domain.CreateClienteDto{Nombres: "Luis", Apellidos: "Díaz", FechaNacimiento: datePtr(1990, time.June, 15)})

	require.Equal(t, int64(1), a.ID)
	require.Equal(t, int64(2), b.ID)
	require.Equal(t, "1990-06-15T00:00:00", b.FechaNacimiento)

	d, err := s.Get(1)
	require.NoError(t, err)
	require.Equal(t, 2024, d.FechaCreacion.Year())
	require.Nil(t, d.FechaModificacion)
}

func TestStore_SearchIgnoresCaseAndDeleted(t *testing.T) {
	s := fixedStore()
	s.Seed()

	got := s.Search("GÓMEZ")
	require.Len(t, got, 1)
	require.Equal(t, "María", got[0].Nombres)

	require.Len(t, s.Search("carlos alberto fer"), 1)

	require.NoError(t, s.Delete(got[0].ID))
	require.Empty(t, s.Search("gómez"))
	require.Len(t, s.List(), 2)
}

func TestStore_Update(t *testing.T) {
	s := fixedStore()
	c := s.Create(domain.CreateClienteDto{Nombres: "Ana", Apellidos: "López", FechaNacimiento: datePtr(1980, time.January, 2)})

	err := s.Update(c.ID, domain.UpdateClienteDto{ID: c.ID + 1, Nombres: "X"})
	require.ErrorIs(t, err, ErrIDMismatch)

	err = s.Update(c.ID, domain.UpdateClienteDto{ID: c.ID, Nombres: "Ana María", Apellidos: "López"})
	require.NoError(t, err)

	d, err := s.Get(c.ID)
	require.NoError(t, err)
	require.Equal(t, "Ana María", d.Nombres)
	require.Empty(t, d.FechaNacimiento)
	require.NotNil(t, d.FechaModificacion)

	require.ErrorIs(t, s.Update(42, domain.UpdateClienteDto{ID: 42}), ErrNotFound)
}

func TestStore_SoftDelete(t *testing.T) {
	s := fixedStore()
	c := s.Create(domain.CreateClienteDto{Nombres: "Ana", Apellidos: "López"})

	require.NoError(t, s.Delete(c.ID))
	require.ErrorIs(t, s.Delete(c.ID), ErrNotFound)
	require.ErrorIs(t, s.Update(c.ID, domain.UpdateClienteDto{ID: c.ID}), ErrNotFound)

	d, err := s.Get(c.ID)
	require.NoError(t, err)
	require.True(t, d.Eliminado)
	require.Equal(t, "Eliminado", d.Estado())
	require.Empty(t, s.List())
}
