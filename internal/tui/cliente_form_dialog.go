package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/clientes/internal/domain"
	"github.com/andy/clientes/internal/format"
)

// form field indices
const (
	fieldNombres = iota
	fieldApellidos
	fieldFechaNacimiento
	fieldCUIT
	fieldDomicilio
	fieldTelefonoCelular
	fieldEmail
	fieldCount
)

type formField struct {
	key         string
	placeholder string
	limit       int
	width       int
}

var formFields = [fieldCount]formField{
	fieldNombres:         {domain.FieldNombres, "Nombres *", 100, 40},
	fieldApellidos:       {domain.FieldApellidos, "Apellidos *", 100, 40},
	fieldFechaNacimiento: {domain.FieldFechaNacimiento, "Fecha de Nacimiento (DD/MM/YYYY)", 10, 12},
	fieldCUIT:            {domain.FieldCUIT, "CUIT (XX-XXXXXXXX-X) *", 13, 15},
	fieldDomicilio:       {domain.FieldDomicilio, "Domicilio", 200, 50},
	fieldTelefonoCelular: {domain.FieldTelefonoCelular, "Teléfono Celular *", 30, 20},
	fieldEmail:           {domain.FieldEmail, "Email *", 100, 40},
}

// formAction tells the screen what the last key asked for
type formAction int

const (
	formActionNone formAction = iota
	formActionCancel
	formActionSubmit
)

// clienteFormDialog is the create/edit dialog. editingID is 0 when creating.
type clienteFormDialog struct {
	editingID int64
	inputs    []textinput.Model
	focus     int
	errors    domain.FieldErrors
	summary   string
	pending   bool
}

func newClienteFormDialog(editing *domain.Cliente) *clienteFormDialog {
	d := &clienteFormDialog{inputs: make([]textinput.Model, fieldCount)}

	for i, f := range formFields {
		in := textinput.New()
		in.Placeholder = f.placeholder
		in.CharLimit = f.limit
		in.Width = f.width
		d.inputs[i] = in
	}

	// Pre-fill for editing
	if editing != nil {
		d.editingID = editing.ID
		f := domain.FormFromCliente(*editing)
		d.inputs[fieldNombres].SetValue(f.Nombres)
		d.inputs[fieldApellidos].SetValue(f.Apellidos)
		d.inputs[fieldFechaNacimiento].SetValue(f.FechaNacimiento)
		d.inputs[fieldCUIT].SetValue(f.CUIT)
		d.inputs[fieldDomicilio].SetValue(f.Domicilio)
		d.inputs[fieldTelefonoCelular].SetValue(f.TelefonoCelular)
		d.inputs[fieldEmail].SetValue(f.Email)
	}

	d.focus = fieldNombres
	d.inputs[fieldNombres].Focus()
	return d
}

func (d *clienteFormDialog) isEditing() bool {
	return d.editingID != 0
}

// form collects the current input values
func (d *clienteFormDialog) form() domain.ClienteForm {
	return domain.ClienteForm{
		Nombres:         d.inputs[fieldNombres].Value(),
		Apellidos:       d.inputs[fieldApellidos].Value(),
		FechaNacimiento: d.inputs[fieldFechaNacimiento].Value(),
		CUIT:            d.inputs[fieldCUIT].Value(),
		Domicilio:       d.inputs[fieldDomicilio].Value(),
		TelefonoCelular: d.inputs[fieldTelefonoCelular].Value(),
		Email:           d.inputs[fieldEmail].Value(),
	}
}

// setFocus moves focus to field i
func (d *clienteFormDialog) setFocus(i int) tea.Cmd {
	d.inputs[d.focus].Blur()
	d.focus = (i + fieldCount) % fieldCount
	return d.inputs[d.focus].Focus()
}

// Update handles a key while the dialog is open
func (d *clienteFormDialog) Update(msg tea.KeyMsg) (formAction, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		return formActionCancel, nil

	case key.Matches(msg, DefaultKeyMap.Save):
		return formActionSubmit, nil

	case msg.Type == tea.KeyEnter:
		if d.focus == fieldCount-1 {
			return formActionSubmit, nil
		}
		return formActionNone, d.setFocus(d.focus + 1)

	case key.Matches(msg, DefaultKeyMap.NextField):
		return formActionNone, d.setFocus(d.focus + 1)

	case key.Matches(msg, DefaultKeyMap.PrevField):
		return formActionNone, d.setFocus(d.focus - 1)
	}

	before := d.inputs[d.focus].Value()
	var cmd tea.Cmd
	d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
	if after := d.inputs[d.focus].Value(); after != before {
		d.applyMask()
		delete(d.errors, formFields[d.focus].key)
	}
	return formActionNone, cmd
}

// applyMask reformats the CUIT and birth-date inputs as they are typed
func (d *clienteFormDialog) applyMask() {
	var mask func(string) string
	switch d.focus {
	case fieldCUIT:
		mask = format.CUIT
	case fieldFechaNacimiento:
		mask = format.DateInput
	default:
		return
	}
	in := &d.inputs[d.focus]
	if masked := mask(in.Value()); masked != in.Value() {
		in.SetValue(masked)
		in.CursorEnd()
	}
}

// validate runs the form rules. On failure the inline errors are set and
// the returned payload must not be sent.
func (d *clienteFormDialog) validate() (create domain.CreateClienteDto, update domain.UpdateClienteDto, err error) {
	f := d.form()
	if d.isEditing() {
		update, err = f.ToUpdate(d.editingID)
	} else {
		create, err = f.ToCreate()
	}

	d.errors = nil
	d.summary = ""
	if err != nil {
		var fe domain.FieldErrors
		if errors.As(err, &fe) {
			d.errors = fe
		}
		d.summary = "Revise los campos marcados"
	}
	return create, update, err
}

func (d *clienteFormDialog) View() string {
	var s string

	if d.isEditing() {
		s += titleStyle.Render("Editar Cliente") + "\n\n"
	} else {
		s += titleStyle.Render("Nuevo Cliente") + "\n\n"
	}

	for i, f := range formFields {
		indicator := "  "
		if i == d.focus {
			indicator = "> "
		}
		labelStyle := subtitleStyle
		if i == d.focus {
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n", indicator, labelStyle.Render(f.placeholder), d.inputs[i].View())
		if msg := d.errors[f.key]; msg != "" {
			s += errorStyle.Render("  "+msg) + "\n"
		}
		s += "\n"
	}

	if d.summary != "" {
		s += errorStyle.Render("  "+d.summary) + "\n\n"
	}

	submit := "Crear Cliente"
	if d.isEditing() {
		submit = "Actualizar Cliente"
	}
	if d.pending {
		s += subtitleStyle.Render("  Guardando...") + "\n\n"
	}

	s += helpStyle.Render(strings.Join([]string{
		"  tab/shift+tab: campos",
		"ctrl+s: " + submit,
		"enter: siguiente/guardar",
		"esc: cancelar",
	}, "  "))

	return dialogStyle.Render(s)
}
