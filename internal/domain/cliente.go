package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Cliente is the list shape returned by the records service
type Cliente struct {
	ID              int64  `json:"id" yaml:"id"`
	Nombres         string `json:"nombres" yaml:"nombres"`
	Apellidos       string `json:"apellidos" yaml:"apellidos"`
	FechaNacimiento string `json:"fechaNacimiento" yaml:"fechaNacimiento"`
	CUIT            string `json:"cuit" yaml:"cuit"`
	Domicilio       string `json:"domicilio" yaml:"domicilio"`
	TelefonoCelular string `json:"telefonoCelular" yaml:"telefonoCelular"`
	Email           string `json:"email" yaml:"email"`
}

// FullName returns "Nombres Apellidos"
func (c Cliente) FullName() string {
	return strings.TrimSpace(c.Nombres + " " + c.Apellidos)
}

// ClienteDetalle is the detail shape, carrying the server-owned fields
type ClienteDetalle struct {
	Cliente           `yaml:",inline"`
	FechaCreacion     Timestamp  `json:"fechaCreacion" yaml:"fechaCreacion"`
	FechaModificacion *Timestamp `json:"fechaModificacion,omitempty" yaml:"fechaModificacion,omitempty"`
	Eliminado         bool       `json:"eliminado" yaml:"eliminado"`
}

// Estado returns the status label shown for the soft-delete flag
func (d ClienteDetalle) Estado() string {
	if d.Eliminado {
		return "Eliminado"
	}
	return "Activo"
}

// CreateClienteDto is the create payload. ID is sent as zero; the service
// assigns the real one.
type CreateClienteDto struct {
	ID              int64  `json:"id"`
	Nombres         string `json:"nombres"`
	Apellidos       string `json:"apellidos"`
	FechaNacimiento *Date  `json:"fechaNacimiento"`
	CUIT            string `json:"cuit"`
	Domicilio       string `json:"domicilio"`
	TelefonoCelular string `json:"telefonoCelular"`
	Email           string `json:"email"`
}

// UpdateClienteDto is the update payload; ID must match the path id
type UpdateClienteDto struct {
	ID              int64  `json:"id"`
	Nombres         string `json:"nombres"`
	Apellidos       string `json:"apellidos"`
	FechaNacimiento *Date  `json:"fechaNacimiento"`
	CUIT            string `json:"cuit"`
	Domicilio       string `json:"domicilio"`
	TelefonoCelular string `json:"telefonoCelular"`
	Email           string `json:"email"`
}

// Apply returns a copy of d with the editable fields of the update applied.
// Server-owned fields are kept as they were.
func (d ClienteDetalle) Apply(u UpdateClienteDto) ClienteDetalle {
	d.Nombres = u.Nombres
	d.Apellidos = u.Apellidos
	d.FechaNacimiento = ""
	if u.FechaNacimiento != nil {
		d.FechaNacimiento = u.FechaNacimiento.String()
	}
	d.CUIT = u.CUIT
	d.Domicilio = u.Domicilio
	d.TelefonoCelular = u.TelefonoCelular
	d.Email = u.Email
	return d
}

// dateLayout is the wire format for calendar dates
const dateLayout = "2006-01-02"

// Date is a calendar date without time of day
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date
func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Time.Format(dateLayout)
}

// MarshalJSON writes the date as "YYYY-MM-DD"
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a bare date or any timestamp layout Timestamp accepts
func (d *Date) UnmarshalJSON(b []byte) error {
	var ts Timestamp
	if err := ts.UnmarshalJSON(b); err != nil {
		return err
	}
	*d = NewDate(ts.Time)
	return nil
}

// timestampLayouts lists what the records service has been seen to send;
// layouts without a zone are read as local time
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	dateLayout,
}

// Timestamp is a server timestamp that tolerates missing zone offsets
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses s using the accepted server layouts
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// Ptr returns a pointer to the underlying time, or nil if it is zero
func (t *Timestamp) Ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	return &t.Time
}

// MarshalJSON writes RFC3339 with nanoseconds, or null when zero
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts null, an empty string or any of timestampLayouts
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalYAML renders the timestamp in RFC3339
func (t Timestamp) MarshalYAML() (interface{}, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Time.Format(time.RFC3339), nil
}
