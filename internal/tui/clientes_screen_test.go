package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andy/clientes/internal/app"
	"github.com/andy/clientes/internal/config"
	"github.com/andy/clientes/internal/domain"
	"github.com/andy/clientes/internal/logging"
)

// mock implementation
type fakeRepo struct {
	mu       sync.Mutex
	list     []domain.Cliente
	search   map[string][]domain.Cliente
	detail   map[int64]*domain.ClienteDetalle
	saveErr  error
	listed   int
	searched []string
	created  []domain.CreateClienteDto
	updated  []domain.UpdateClienteDto
	deleted  []int64
}

func (f *fakeRepo) List(ctx context.Context) ([]domain.Cliente, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed++
	return f.list, nil
}
func (f *fakeRepo) Get(ctx context.Context, id *int64) (*domain.ClienteDetalle, error) {
	if id == nil {
		return nil, nil
	}
	return f.detail[*id], nil
}
func (f *fakeRepo) Search(ctx context.Context, q string) ([]domain.Cliente, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searched = append(f.searched, q)
	return f.search[q], nil
}
func (f *fakeRepo) Create(ctx context.Context, dto domain.CreateClienteDto) (*domain.Cliente, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.created = append(f.created, dto)
	return &domain.Cliente{ID: 99, Nombres: dto.Nombres}, nil
}
func (f *fakeRepo) Update(ctx context.Context, id int64, dto domain.UpdateClienteDto) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.updated = append(f.updated, dto)
	return nil
}
func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakeRepo) Refresh() {}
func (f *fakeRepo) CachedList() ([]domain.Cliente, bool, bool) {
	return nil, false, false
}
func (f *fakeRepo) CachedSearch(q string) ([]domain.Cliente, bool, bool) {
	return nil, false, false
}
func (f *fakeRepo) CachedDetail(id int64) (*domain.ClienteDetalle, bool, bool) {
	return nil, false, false
}

func sampleClientes() []domain.Cliente {
	return []domain.Cliente{
		{ID: 1, Nombres: "Ana", Apellidos: "Pérez", FechaNacimiento: "1990-06-15T00:00:00", CUIT: "20-12345678-6", TelefonoCelular: "11", Email: "ana@example.com"},
		{ID: 2, Nombres: "Luis", Apellidos: "Gómez", CUIT: "30-00000000-7", TelefonoCelular: "22", Email: "luis@example.com"},
	}
}

func newTestScreen(t *testing.T, repo *fakeRepo) *ClientesModel {
	t.Helper()
	a := &app.App{
		Config:   config.DefaultConfig(),
		Logger:   logging.Discard(),
		Clientes: repo,
	}
	m := NewClientesModel(a).(*ClientesModel)
	update(t, m, run(t, m.Init()))
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m *ClientesModel, s string) {
	for _, r := range s {
		m.Update(keyRunes(string(r)))
	}
}

// run executes a plain command; batches are not expected here
func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	return cmd()
}

func update(t *testing.T, m *ClientesModel, msg tea.Msg) tea.Cmd {
	t.Helper()
	_, cmd := m.Update(msg)
	return cmd
}

func TestClientesScreen_LoadsList(t *testing.T) {
	repo := &fakeRepo{list: sampleClientes()}
	m := newTestScreen(t, repo)

	if m.loading {
		t.Fatalf("expected loading to finish")
	}
	if len(m.clientes) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(m.clientes))
	}
	view := m.View()
	if !strings.Contains(view, "Ana Pérez") || !strings.Contains(view, "15/06/1990") {
		t.Fatalf("row not rendered:\n%s", view)
	}
}

func TestClientesScreen_EmptyMessages(t *testing.T) {
	m := newTestScreen(t, &fakeRepo{})
	if !strings.Contains(m.View(), "No hay clientes cargados") {
		t.Fatalf("expected empty list message:\n%s", m.View())
	}

	cmd := update(t, m, searchDebounceMsg{seq: m.searchSeq, value: "zz"})
	update(t, m, run(t, cmd))
	if !strings.Contains(m.View(), `No se encontraron clientes con el nombre "zz"`) {
		t.Fatalf("expected empty search message:\n%s", m.View())
	}
}

func TestClientesScreen_DebounceUsesLatestValue(t *testing.T) {
	repo := &fakeRepo{
		list:   sampleClientes(),
		search: map[string][]domain.Cliente{"an": {sampleClientes()[0]}},
	}
	m := newTestScreen(t, repo)

	update(t, m, keyRunes("/"))
	if !m.IsCapturingInput() {
		t.Fatalf("search box should capture input")
	}
	typeText(m, "a")
	first := m.searchSeq
	typeText(m, "n")

	// the first tick is superseded
	if cmd := update(t, m, searchDebounceMsg{seq: first, value: "a"}); cmd != nil || m.query != "" {
		t.Fatalf("stale debounce must be ignored")
	}

	cmd := update(t, m, searchDebounceMsg{seq: m.searchSeq, value: "an"})
	update(t, m, run(t, cmd))

	if m.query != "an" || len(m.clientes) != 1 {
		t.Fatalf("expected search results, got query=%q rows=%d", m.query, len(m.clientes))
	}
	if len(repo.searched) != 1 || repo.searched[0] != "an" {
		t.Fatalf("expected one search for \"an\", got %v", repo.searched)
	}
}

func TestClientesScreen_WhitespaceQueryShowsList(t *testing.T) {
	repo := &fakeRepo{list: sampleClientes()}
	m := newTestScreen(t, repo)

	cmd := update(t, m, searchDebounceMsg{seq: m.searchSeq, value: "   "})
	update(t, m, run(t, cmd))

	if len(repo.searched) != 0 {
		t.Fatalf("blank query must not search")
	}
	if len(m.clientes) != 2 {
		t.Fatalf("expected full list, got %d", len(m.clientes))
	}
}

func TestClientesScreen_IgnoresResponseForOldQuery(t *testing.T) {
	m := newTestScreen(t, &fakeRepo{list: sampleClientes()})

	update(t, m, clientesDataMsg{query: "viejo", clientes: nil})
	if len(m.clientes) != 2 {
		t.Fatalf("late response replaced current rows")
	}
}

func TestClientesScreen_ClearSearch(t *testing.T) {
	repo := &fakeRepo{list: sampleClientes(), search: map[string][]domain.Cliente{}}
	m := newTestScreen(t, repo)

	cmd := update(t, m, searchDebounceMsg{seq: m.searchSeq, value: "x"})
	update(t, m, run(t, cmd))
	if len(m.clientes) != 0 {
		t.Fatalf("expected no search results")
	}

	cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	update(t, m, run(t, cmd))
	if m.query != "" || len(m.clientes) != 2 {
		t.Fatalf("clear must restore the list, got query=%q rows=%d", m.query, len(m.clientes))
	}
}

func TestClienteForm_MasksCUITAndDate(t *testing.T) {
	m := newTestScreen(t, &fakeRepo{})
	update(t, m, keyRunes("n"))
	if m.mode != clientesModeForm {
		t.Fatalf("expected form mode")
	}

	// nombres -> apellidos -> fecha
	update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "15061990")
	if got := m.form.inputs[fieldFechaNacimiento].Value(); got != "15/06/1990" {
		t.Fatalf("date mask: got %q", got)
	}

	update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "20123456786")
	if got := m.form.inputs[fieldCUIT].Value(); got != "20-12345678-6" {
		t.Fatalf("cuit mask: got %q", got)
	}
}

func TestClienteForm_InvalidSubmitMakesNoCall(t *testing.T) {
	repo := &fakeRepo{}
	m := newTestScreen(t, repo)
	update(t, m, keyRunes("n"))

	cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Fatalf("invalid form must not dispatch a save")
	}
	if m.form.summary != "Revise los campos marcados" {
		t.Fatalf("expected aggregate message, got %q", m.form.summary)
	}
	if m.form.errors[domain.FieldNombres] != "El nombre es obligatorio" {
		t.Fatalf("expected inline error, got %v", m.form.errors)
	}
	if len(repo.created) != 0 {
		t.Fatalf("no create expected")
	}
	if !strings.Contains(m.View(), "El email es obligatorio") {
		t.Fatalf("inline errors not rendered")
	}
}

func fillValid(d *clienteFormDialog) {
	d.inputs[fieldNombres].SetValue("Ana")
	d.inputs[fieldApellidos].SetValue("Pérez")
	d.inputs[fieldFechaNacimiento].SetValue("15/06/1990")
	d.inputs[fieldCUIT].SetValue("20-12345678-6")
	d.inputs[fieldTelefonoCelular].SetValue("1155550000")
	d.inputs[fieldEmail].SetValue("ana@example.com")
}

func TestClienteForm_CreateClosesOnSuccess(t *testing.T) {
	repo := &fakeRepo{}
	m := newTestScreen(t, repo)
	update(t, m, keyRunes("n"))
	fillValid(m.form)

	cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if !m.form.pending {
		t.Fatalf("expected pending save")
	}
	if again := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS}); again != nil {
		t.Fatalf("second submit while pending must be ignored")
	}

	msg := run(t, cmd)
	if m.mode != clientesModeForm {
		t.Fatalf("dialog must stay open until the save settles")
	}
	update(t, m, msg)

	if m.mode != clientesModeList || m.form != nil {
		t.Fatalf("dialog must close after success")
	}
	if len(repo.created) != 1 || repo.created[0].CUIT != "20-12345678-6" {
		t.Fatalf("unexpected create payload: %+v", repo.created)
	}
	if repo.created[0].FechaNacimiento.String() != "1990-06-15" {
		t.Fatalf("birth date must be sent as a calendar date")
	}
}

func TestClienteForm_FailedSaveKeepsDialog(t *testing.T) {
	repo := &fakeRepo{list: sampleClientes(), saveErr: errors.New("rechazado")}
	m := newTestScreen(t, repo)
	update(t, m, keyRunes("e"))
	if m.form == nil || m.form.editingID != 1 {
		t.Fatalf("expected edit form for cliente 1")
	}
	if got := m.form.inputs[fieldFechaNacimiento].Value(); got != "15/06/1990" {
		t.Fatalf("edit form must show display date, got %q", got)
	}

	cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	notifyCmd := update(t, m, run(t, cmd))

	if m.mode != clientesModeForm || m.form.pending {
		t.Fatalf("form must stay open and accept a retry")
	}
	n, ok := run(t, notifyCmd).(NotifyMsg)
	if !ok || n.Kind != notifyError || n.Text != "Error al actualizar cliente: rechazado" {
		t.Fatalf("unexpected notification: %+v", n)
	}
}

func TestDeleteDialog_ClosesImmediately(t *testing.T) {
	repo := &fakeRepo{list: sampleClientes()}
	m := newTestScreen(t, repo)

	update(t, m, keyRunes("j"))
	update(t, m, keyRunes("d"))
	if m.mode != clientesModeDelete || !strings.Contains(m.View(), "Luis Gómez") {
		t.Fatalf("expected delete confirmation for Luis")
	}

	cmd := update(t, m, keyRunes("y"))
	if m.mode != clientesModeList {
		t.Fatalf("delete dialog must close on confirm")
	}
	run(t, cmd)
	if len(repo.deleted) != 1 || repo.deleted[0] != 2 {
		t.Fatalf("expected delete of id 2, got %v", repo.deleted)
	}
}

func TestDeleteDialog_Cancel(t *testing.T) {
	repo := &fakeRepo{list: sampleClientes()}
	m := newTestScreen(t, repo)

	update(t, m, keyRunes("d"))
	if cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc}); cmd != nil {
		t.Fatalf("cancel must not dispatch anything")
	}
	if m.mode != clientesModeList || len(repo.deleted) != 0 {
		t.Fatalf("cancel must close without deleting")
	}
}

func TestDetailDialog(t *testing.T) {
	repo := &fakeRepo{
		list: sampleClientes(),
		detail: map[int64]*domain.ClienteDetalle{
			1: {Cliente: sampleClientes()[0]},
		},
	}
	m := newTestScreen(t, repo)

	cmd := update(t, m, keyRunes("v"))
	if !strings.Contains(m.View(), "Cargando...") {
		t.Fatalf("expected loading state")
	}
	update(t, m, run(t, cmd))

	view := m.View()
	for _, want := range []string{"Información Personal", "Información de Contacto", "Información del Sistema", "No especificado", "Activo", "No disponible"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q", want)
		}
	}

	update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != clientesModeList || m.detailID != nil {
		t.Fatalf("esc must close the detail")
	}
}

func TestDetailDialog_NotFound(t *testing.T) {
	m := newTestScreen(t, &fakeRepo{list: sampleClientes()})

	cmd := update(t, m, keyRunes("v"))
	update(t, m, run(t, cmd))
	if !strings.Contains(m.View(), "No se encontró información del cliente.") {
		t.Fatalf("expected not-found state:\n%s", m.View())
	}
}
