package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/clientes/internal/app"
	"github.com/andy/clientes/internal/domain"
	"github.com/andy/clientes/internal/format"
	"github.com/andy/clientes/internal/repository"
)

// clientesMode represents the current screen mode
type clientesMode int

const (
	clientesModeList clientesMode = iota
	clientesModeForm
	clientesModeDelete
	clientesModeDetail
)

type column struct {
	title string
	width int
}

var clientesColumns = []column{
	{"Nombre y Apellido", 24},
	{"Fecha de Nacimiento", 20},
	{"CUIT", 15},
	{"Domicilio", 22},
	{"Teléfono", 15},
	{"Email", 28},
}

// ClientesModel lists clientes with search, and hosts the create/edit,
// delete and detail dialogs
type ClientesModel struct {
	app  *app.App
	mode clientesMode

	// Search state. query is the debounced value that picks the source.
	search    textinput.Model
	searching bool
	query     string
	searchSeq int

	clientes   []domain.Cliente
	cursor     int
	loading    bool // active source has no data yet
	refreshing bool // showing stale data while refetching
	err        error

	form     *clienteFormDialog
	deleting *domain.Cliente

	detailID      *int64
	detail        *domain.ClienteDetalle
	detailLoading bool
	detailErr     error
}

type clientesDataMsg struct {
	query    string
	clientes []domain.Cliente
	err      error
}

type searchDebounceMsg struct {
	seq   int
	value string
}

type clienteSavedMsg struct {
	editing bool
	err     error
}

type clienteDeletedMsg struct {
	err error
}

type clienteDetailMsg struct {
	id     int64
	detail *domain.ClienteDetalle
	err    error
}

// NewClientesModel creates a new clientes screen model
func NewClientesModel(a *app.App) tea.Model {
	search := textinput.New()
	search.Placeholder = "Buscar por nombre..."
	search.CharLimit = 100
	search.Width = 40
	search.Prompt = "/ "

	return &ClientesModel{
		app:     a,
		search:  search,
		loading: true,
	}
}

// IsCapturingInput returns true when typing in the search box or a dialog is open
func (m *ClientesModel) IsCapturingInput() bool {
	return m.searching || m.mode != clientesModeList
}

func (m *ClientesModel) Init() tea.Cmd {
	return m.load()
}

func (m *ClientesModel) debounce() time.Duration {
	if d := m.app.Config.UI.Debounce; d > 0 {
		return d
	}
	return defaultDebounce
}

// searchActive reports whether rows come from the search endpoint
func (m *ClientesModel) searchActive() bool {
	return repository.SearchActive(m.query)
}

// load shows whatever the cache has for the active source and fetches
// when that is missing or stale
func (m *ClientesModel) load() tea.Cmd {
	repo := m.app.Clientes
	q := m.query

	var (
		cached    []domain.Cliente
		fresh, ok bool
	)
	if repository.SearchActive(q) {
		cached, fresh, ok = repo.CachedSearch(q)
	} else {
		cached, fresh, ok = repo.CachedList()
	}

	if ok {
		m.clientes = cached
		m.loading = false
		m.clampCursor()
	} else {
		m.clientes = nil
		m.loading = true
	}
	m.refreshing = ok && !fresh
	if ok && fresh {
		return nil
	}

	return func() tea.Msg {
		ctx := context.Background()
		var (
			list []domain.Cliente
			err  error
		)
		if repository.SearchActive(q) {
			list, err = repo.Search(ctx, q)
		} else {
			list, err = repo.List(ctx)
		}
		return clientesDataMsg{query: q, clientes: list, err: err}
	}
}

func (m *ClientesModel) clampCursor() {
	if m.cursor >= len(m.clientes) {
		m.cursor = max(0, len(m.clientes)-1)
	}
}

func (m *ClientesModel) selected() *domain.Cliente {
	if len(m.clientes) == 0 || m.cursor >= len(m.clientes) {
		return nil
	}
	c := m.clientes[m.cursor]
	return &c
}

func (m *ClientesModel) saveCliente(create domain.CreateClienteDto, update domain.UpdateClienteDto, editingID int64) tea.Cmd {
	repo := m.app.Clientes
	return func() tea.Msg {
		ctx := context.Background()
		if editingID != 0 {
			return clienteSavedMsg{editing: true, err: repo.Update(ctx, editingID, update)}
		}
		_, err := repo.Create(ctx, create)
		return clienteSavedMsg{err: err}
	}
}

func (m *ClientesModel) deleteCliente(id int64) tea.Cmd {
	repo := m.app.Clientes
	return func() tea.Msg {
		return clienteDeletedMsg{err: repo.Delete(context.Background(), id)}
	}
}

// openDetail shows the cached detail at once and fetches when needed
func (m *ClientesModel) openDetail(id int64) tea.Cmd {
	repo := m.app.Clientes
	m.mode = clientesModeDetail
	m.detailID = &id
	m.detail = nil
	m.detailErr = nil

	cached, fresh, ok := repo.CachedDetail(id)
	if ok {
		m.detail = cached
	}
	m.detailLoading = !ok
	if ok && fresh {
		return nil
	}

	return func() tea.Msg {
		d, err := repo.Get(context.Background(), &id)
		return clienteDetailMsg{id: id, detail: d, err: err}
	}
}

func (m *ClientesModel) closeDialog() {
	m.mode = clientesModeList
	m.form = nil
	m.deleting = nil
	m.detailID = nil
	m.detail = nil
	m.detailErr = nil
	m.detailLoading = false
}

func (m *ClientesModel) openForm(editing *domain.Cliente) tea.Cmd {
	m.mode = clientesModeForm
	m.form = newClienteFormDialog(editing)
	return textinput.Blink
}

func (m *ClientesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		return m, m.load()

	case clientesDataMsg:
		// a response for a query that is no longer active
		if msg.query != m.query {
			return m, nil
		}
		m.loading = false
		m.refreshing = false
		m.err = msg.err
		if msg.err == nil {
			m.clientes = msg.clientes
			m.clampCursor()
		}
		return m, nil

	case searchDebounceMsg:
		if msg.seq != m.searchSeq {
			return m, nil
		}
		m.query = msg.value
		m.cursor = 0
		return m, m.load()

	case clienteSavedMsg:
		return m, m.handleSaved(msg)

	case clienteDeletedMsg:
		if msg.err != nil {
			return m, notify(notifyError, "Error al eliminar cliente: "+errMessage(msg.err))
		}
		return m, tea.Batch(notify(notifySuccess, "Cliente eliminado exitosamente!"), m.load())

	case clienteDetailMsg:
		if m.mode != clientesModeDetail || m.detailID == nil || *m.detailID != msg.id {
			return m, nil
		}
		m.detailLoading = false
		m.detailErr = msg.err
		if msg.err == nil {
			m.detail = msg.detail
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case clientesModeForm:
			return m.updateForm(msg)
		case clientesModeDelete:
			return m.updateDelete(msg)
		case clientesModeDetail:
			if key.Matches(msg, DefaultKeyMap.Back) || key.Matches(msg, DefaultKeyMap.Select) || msg.String() == "q" {
				m.closeDialog()
			}
			return m, nil
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}

	// cursor blink and friends
	if m.mode == clientesModeForm && m.form != nil {
		var cmd tea.Cmd
		m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
		return m, cmd
	}
	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *ClientesModel) handleSaved(msg clienteSavedMsg) tea.Cmd {
	if m.form != nil {
		m.form.pending = false
	}

	if msg.err != nil {
		prefix := "Error al crear cliente: "
		if msg.editing {
			prefix = "Error al actualizar cliente: "
		}
		return notify(notifyError, prefix+errMessage(msg.err))
	}

	text := "Cliente creado exitosamente!"
	if msg.editing {
		text = "Cliente actualizado exitosamente!"
	}
	if m.mode == clientesModeForm {
		m.closeDialog()
	}
	return tea.Batch(notify(notifySuccess, text), m.load())
}

func (m *ClientesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.clientes)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, DefaultKeyMap.Clear):
		return m, m.clearSearch()
	case key.Matches(msg, DefaultKeyMap.Refresh):
		m.app.Clientes.Refresh()
		return m, m.load()
	case key.Matches(msg, DefaultKeyMap.New):
		return m, m.openForm(nil)
	case key.Matches(msg, DefaultKeyMap.Edit), key.Matches(msg, DefaultKeyMap.Select):
		if c := m.selected(); c != nil {
			return m, m.openForm(c)
		}
	case key.Matches(msg, DefaultKeyMap.Delete):
		if c := m.selected(); c != nil {
			m.mode = clientesModeDelete
			m.deleting = c
		}
	case key.Matches(msg, DefaultKeyMap.Detail):
		if c := m.selected(); c != nil {
			return m, m.openDetail(c.ID)
		}
	}
	return m, nil
}

// updateSearch edits the search box; every change restarts the debounce
func (m *ClientesModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back), msg.Type == tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Clear):
		return m, m.clearSearch()
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if value := m.search.Value(); value != before {
		m.searchSeq++
		seq := m.searchSeq
		return m, tea.Batch(cmd, tea.Tick(m.debounce(), func(time.Time) tea.Msg {
			return searchDebounceMsg{seq: seq, value: value}
		}))
	}
	return m, cmd
}

// clearSearch empties the box and goes straight back to the full list
func (m *ClientesModel) clearSearch() tea.Cmd {
	m.search.SetValue("")
	m.searchSeq++
	if m.query == "" {
		return nil
	}
	m.query = ""
	m.cursor = 0
	return m.load()
}

func (m *ClientesModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, cmd := m.form.Update(msg)
	switch action {
	case formActionCancel:
		m.closeDialog()
		return m, nil
	case formActionSubmit:
		if m.form.pending {
			return m, nil
		}
		create, update, err := m.form.validate()
		if err != nil {
			return m, nil
		}
		m.form.pending = true
		return m, m.saveCliente(create, update, m.form.editingID)
	}
	return m, cmd
}

// updateDelete confirms or cancels; confirming closes the dialog right away
func (m *ClientesModel) updateDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Confirm):
		id := m.deleting.ID
		m.closeDialog()
		return m, m.deleteCliente(id)
	case key.Matches(msg, DefaultKeyMap.Cancel):
		m.closeDialog()
	}
	return m, nil
}

func (m *ClientesModel) View() string {
	switch m.mode {
	case clientesModeForm:
		return m.form.View()
	case clientesModeDelete:
		return m.viewDelete()
	case clientesModeDetail:
		return m.viewDetail()
	}
	return m.viewList()
}

func (m *ClientesModel) viewList() string {
	var s string

	s += titleStyle.Render("Clientes") + "\n\n"
	s += "  " + m.search.View()
	if m.search.Value() != "" {
		s += subtitleStyle.Render("   ctrl+l: limpiar")
	}
	s += "\n\n"

	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("  Error: %s", errMessage(m.err))) + "\n\n"
	}

	if m.loading {
		s += subtitleStyle.Render("  Cargando...") + "\n"
		return s
	}

	if len(m.clientes) == 0 {
		if m.searchActive() {
			s += subtitleStyle.Render(fmt.Sprintf("  No se encontraron clientes con el nombre %q", m.query)) + "\n"
		} else {
			s += subtitleStyle.Render("  No hay clientes cargados. Presione 'n' para cargar uno.") + "\n"
		}
		return s
	}

	var header string
	for _, col := range clientesColumns {
		header += padRight(col.title, col.width)
	}
	s += "  " + tableHeaderStyle.Render(header) + "\n"

	for i, c := range m.clientes {
		s += m.renderRow(i, c) + "\n"
	}

	if m.refreshing {
		s += "\n" + subtitleStyle.Render("  actualizando…")
	}

	s += "\n" + helpStyle.Render("  j/k: navegar  /: buscar  n: nuevo  e/enter: editar  d: eliminar  v: ver detalle  r: actualizar")

	return s
}

func (m *ClientesModel) renderRow(index int, c domain.Cliente) string {
	cells := []string{
		c.FullName(),
		format.DateDisplay(c.FechaNacimiento),
		c.CUIT,
		c.Domicilio,
		c.TelefonoCelular,
		c.Email,
	}

	var row string
	for i, col := range clientesColumns {
		row += padRight(truncateStr(cells[i], col.width-2), col.width)
	}

	if index == m.cursor {
		return "> " + selectedStyle.Render(row)
	}
	return "  " + row
}

func (m *ClientesModel) viewDelete() string {
	var s string
	s += dangerStyle.Render("Confirmar Eliminación") + "\n\n"

	name := "este cliente"
	if m.deleting != nil && m.deleting.FullName() != "" {
		name = m.deleting.FullName()
	}
	s += fmt.Sprintf("¿Estás seguro de que quieres eliminar a %s?\n", titleStyle.Render(name))
	s += subtitleStyle.Render("Esta acción no se puede deshacer.") + "\n\n"
	s += helpStyle.Render("y/enter: Eliminar  n/esc: Cancelar")

	return dialogStyle.Render(s)
}

func (m *ClientesModel) viewDetail() string {
	var s string
	s += titleStyle.Render("Detalle del Cliente") + "\n\n"

	switch {
	case m.detailLoading:
		s += subtitleStyle.Render("Cargando...") + "\n"
	case m.detail == nil:
		s += subtitleStyle.Render("No se encontró información del cliente.") + "\n"
		if m.detailErr != nil {
			s += errorStyle.Render(errMessage(m.detailErr)) + "\n"
		}
	default:
		s += renderDetail(m.detail)
	}

	s += "\n" + helpStyle.Render("esc/enter: Cerrar")
	return dialogStyle.Render(s)
}

func renderDetail(d *domain.ClienteDetalle) string {
	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s\n", subtitleStyle.Render(padRight(label, 22)), value)
	}
	section := func(title string) string {
		return titleStyle.Render(title) + "\n" + subtitleStyle.Render(strings.Repeat("─", lenRunes(title))) + "\n"
	}

	birth := notSpecified
	if d.FechaNacimiento != "" {
		birth = format.DateDisplay(d.FechaNacimiento)
	}

	estado := successStyle.Render(d.Estado())
	if d.Eliminado {
		estado = errorStyle.Render(d.Estado())
	}

	var s string
	s += section("Información Personal")
	s += row("Nombres:", orNotSpecified(d.Nombres))
	s += row("Apellidos:", orNotSpecified(d.Apellidos))
	s += row("Fecha de Nacimiento:", birth)
	s += row("CUIT:", orNotSpecified(d.CUIT))
	s += "\n"

	s += section("Información de Contacto")
	s += row("Email:", orNotSpecified(d.Email))
	s += row("Teléfono Celular:", orNotSpecified(d.TelefonoCelular))
	s += row("Domicilio:", orNotSpecified(d.Domicilio))
	s += "\n"

	s += section("Información del Sistema")
	s += row("ID del Cliente:", fmt.Sprintf("%d", d.ID))
	s += row("Estado:", estado)
	s += row("Fecha de Creación:", format.DateTime(d.FechaCreacion.Ptr()))
	s += row("Última Modificación:", format.DateTime(d.FechaModificacion.Ptr()))

	return s
}

func lenRunes(s string) int {
	return len([]rune(s))
}
