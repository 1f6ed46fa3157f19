package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/clientes/internal/app"
	"github.com/andy/clientes/internal/config"
)

// SettingsModel shows the effective configuration. Settings are fixed for
// the life of the process; edit the config file or the environment and
// restart to change them.
type SettingsModel struct {
	app *app.App
}

// NewSettingsModel creates a new settings screen
func NewSettingsModel(a *app.App) tea.Model {
	return &SettingsModel{app: a}
}

func (m *SettingsModel) Init() tea.Cmd {
	return nil
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, DefaultKeyMap.Back) {
		return m, func() tea.Msg { return SwitchScreenMsg{Screen: ScreenClientes} }
	}
	return m, nil
}

func (m *SettingsModel) View() string {
	var s string
	s += titleStyle.Render("Configuración") + "\n\n"

	cfg := m.app.Config

	labelStyle := lipgloss.NewStyle().Bold(true).Width(24)
	valueStyle := lipgloss.NewStyle().Foreground(primaryColor)
	line := func(label, value string) string {
		return fmt.Sprintf("  %s %s\n", labelStyle.Render(label), valueStyle.Render(value))
	}

	token := "no configurado"
	if m.app.HasToken() {
		token = "configurado"
	}

	s += subtitleStyle.Render("  Servicio") + "\n\n"
	s += line("URL base:", cfg.API.BaseURL)
	s += line("Token:", token)
	s += "\n"

	s += subtitleStyle.Render("  Caché") + "\n\n"
	s += line("Lista vigente por:", cfg.Cache.ListStale.String())
	s += line("Detalle vigente por:", cfg.Cache.DetailStale.String())
	s += line("Búsqueda vigente por:", cfg.Cache.SearchStale.String())
	if m.app.Cache != nil {
		s += line("Entradas en caché:", fmt.Sprintf("%d", m.app.Cache.Len()))
	}
	s += "\n"

	s += subtitleStyle.Render("  Interfaz") + "\n\n"
	s += line("Espera de búsqueda:", cfg.UI.Debounce.String())
	s += line("Duración de avisos:", cfg.UI.Toast.String())
	s += "\n"

	logFile := cfg.Log.File
	if logFile == "-" {
		logFile = "stderr"
	}
	s += subtitleStyle.Render("  Registro") + "\n\n"
	s += line("Archivo:", logFile)
	s += line("Nivel:", cfg.Log.Level)
	s += line("Formato:", cfg.Log.Format)
	s += "\n"

	s += subtitleStyle.Render(fmt.Sprintf("  Archivo de configuración: %s", config.DefaultConfigPath())) + "\n\n"
	s += helpStyle.Render("  esc: volver a clientes")

	return s
}
