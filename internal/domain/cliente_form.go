package domain

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/andy/clientes/internal/format"
	"github.com/go-playground/validator/v10"
)

// Form field keys, matching the JSON names of the payload
const (
	FieldNombres         = "nombres"
	FieldApellidos       = "apellidos"
	FieldFechaNacimiento = "fechaNacimiento"
	FieldCUIT            = "cuit"
	FieldDomicilio       = "domicilio"
	FieldTelefonoCelular = "telefonoCelular"
	FieldEmail           = "email"
)

// ErrInvalidForm is returned when a form fails validation
var ErrInvalidForm = errors.New("revise los campos marcados")

// ClienteForm holds the raw text the user typed for a cliente. Birth date
// is kept in its DD/MM/YYYY display form until submit.
type ClienteForm struct {
	Nombres         string `json:"nombres" validate:"notblank"`
	Apellidos       string `json:"apellidos" validate:"notblank"`
	FechaNacimiento string `json:"fechaNacimiento" validate:"omitempty,fecha"`
	CUIT            string `json:"cuit" validate:"notblank,cuit"`
	Domicilio       string `json:"domicilio"`
	TelefonoCelular string `json:"telefonoCelular" validate:"notblank"`
	Email           string `json:"email" validate:"notblank,emailshape"`
}

// FormFromCliente pre-populates a form for editing
func FormFromCliente(c Cliente) ClienteForm {
	return ClienteForm{
		Nombres:         c.Nombres,
		Apellidos:       c.Apellidos,
		FechaNacimiento: format.DateDisplay(c.FechaNacimiento),
		CUIT:            c.CUIT,
		Domicilio:       c.Domicilio,
		TelefonoCelular: c.TelefonoCelular,
		Email:           c.Email,
	}
}

// FieldErrors maps a field key to its inline message
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fe[k]))
	}
	return strings.Join(parts, "; ")
}

// Unwrap lets errors.Is(err, ErrInvalidForm) match
func (fe FieldErrors) Unwrap() error {
	return ErrInvalidForm
}

// fieldMessages holds the inline text per field and failed rule
var fieldMessages = map[string]map[string]string{
	FieldNombres:         {"notblank": "El nombre es obligatorio"},
	FieldApellidos:       {"notblank": "El apellido es obligatorio"},
	FieldFechaNacimiento: {"fecha": "La fecha de nacimiento debe tener formato DD/MM/YYYY válido"},
	FieldCUIT: {
		"notblank": "El CUIT es obligatorio",
		"cuit":     "El CUIT debe ser válido",
	},
	FieldTelefonoCelular: {"notblank": "El teléfono celular es obligatorio"},
	FieldEmail: {
		"notblank":   "El email es obligatorio",
		"emailshape": "El email debe tener un formato válido",
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "cuit", func(fl validator.FieldLevel) bool {
		return format.ValidCUIT(fl.Field().String())
	})
	mustRegister(v, "fecha", func(fl validator.FieldLevel) bool {
		return format.ValidDateInput(fl.Field().String())
	})
	mustRegister(v, "emailshape", func(fl validator.FieldLevel) bool {
		return format.ValidEmail(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Validate checks every field and returns nil or a FieldErrors with one
// message per failing field.
func (f ClienteForm) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		msg, ok := fieldMessages[field][fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("valor inválido (%s)", fe.Tag())
		}
		if _, seen := out[field]; !seen {
			out[field] = msg
		}
	}
	return out
}

// birthDate converts the display-form birth date, nil when left blank
func (f ClienteForm) birthDate() (*Date, error) {
	raw := strings.TrimSpace(f.FechaNacimiento)
	if raw == "" {
		return nil, nil
	}
	t, err := format.ParseDateInput(raw)
	if err != nil {
		return nil, err
	}
	d := NewDate(t)
	return &d, nil
}

// ToCreate validates the form and builds the create payload
func (f ClienteForm) ToCreate() (CreateClienteDto, error) {
	if err := f.Validate(); err != nil {
		return CreateClienteDto{}, err
	}
	fecha, err := f.birthDate()
	if err != nil {
		return CreateClienteDto{}, err
	}
	return CreateClienteDto{
		Nombres:         strings.TrimSpace(f.Nombres),
		Apellidos:       strings.TrimSpace(f.Apellidos),
		FechaNacimiento: fecha,
		CUIT:            format.CUIT(f.CUIT),
		Domicilio:       strings.TrimSpace(f.Domicilio),
		TelefonoCelular: strings.TrimSpace(f.TelefonoCelular),
		Email:           strings.TrimSpace(f.Email),
	}, nil
}

// ToUpdate validates the form and builds the update payload for id
func (f ClienteForm) ToUpdate(id int64) (UpdateClienteDto, error) {
	c, err := f.ToCreate()
	if err != nil {
		return UpdateClienteDto{}, err
	}
	return UpdateClienteDto{
		ID:              id,
		Nombres:         c.Nombres,
		Apellidos:       c.Apellidos,
		FechaNacimiento: c.FechaNacimiento,
		CUIT:            c.CUIT,
		Domicilio:       c.Domicilio,
		TelefonoCelular: c.TelefonoCelular,
		Email:           c.Email,
	}, nil
}
