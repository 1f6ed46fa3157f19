package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andy/clientes/internal/app"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenClientes Screen = iota
	ScreenSettings
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenClientes:
		return "Clientes"
	case ScreenSettings:
		return "Configuración"
	default:
		return "Desconocida"
	}
}

// Model is the root Bubble Tea model
type Model struct {
	app           *app.App
	currentScreen Screen
	width         int
	height        int

	// Screen models (lazy initialized)
	clientes tea.Model
	settings tea.Model

	// Toast state
	toast    *NotifyMsg
	toastSeq int
}

// New creates a new root model
func New(a *app.App) Model {
	return Model{
		app:           a,
		currentScreen: ScreenClientes,
		clientes:      NewClientesModel(a),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.clientes.Init()
}

// initScreen lazy-initializes a screen on first visit,
// and sends a RefreshDataMsg on subsequent visits so screens reload data.
func (m *Model) initScreen(screen Screen) tea.Cmd {
	switch screen {
	case ScreenClientes:
		if m.clientes == nil {
			m.clientes = NewClientesModel(m.app)
			return m.clientes.Init()
		}
		return func() tea.Msg { return RefreshDataMsg{} }
	case ScreenSettings:
		if m.settings == nil {
			m.settings = NewSettingsModel(m.app)
			return m.settings.Init()
		}
	}
	return nil
}

// InputCapturer is implemented by screens that capture keyboard input (e.g. text forms).
// When active, global navigation keys (C, ",", Q) are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

func (m *Model) screen(s Screen) tea.Model {
	switch s {
	case ScreenClientes:
		return m.clientes
	case ScreenSettings:
		return m.settings
	}
	return nil
}

// activeScreenCapturingInput returns true if the current screen is capturing text input
func (m *Model) activeScreenCapturingInput() bool {
	if ic, ok := m.screen(m.currentScreen).(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

func (m *Model) toastDuration() time.Duration {
	if d := m.app.Config.UI.Toast; d > 0 {
		return d
	}
	return defaultToast
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		// Skip global navigation when a screen is capturing text input
		if !m.activeScreenCapturingInput() {
			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				return m, tea.Quit

			case key.Matches(msg, DefaultKeyMap.Clientes):
				m.currentScreen = ScreenClientes
				return m, m.initScreen(ScreenClientes)

			case key.Matches(msg, DefaultKeyMap.Settings):
				m.currentScreen = ScreenSettings
				return m, m.initScreen(ScreenSettings)
			}
		}

		// Keys only go to the screen on display
		var cmd tea.Cmd
		switch m.currentScreen {
		case ScreenClientes:
			m.clientes, cmd = m.clientes.Update(msg)
		case ScreenSettings:
			if m.settings != nil {
				m.settings, cmd = m.settings.Update(msg)
			}
		}
		return m, cmd

	case SwitchScreenMsg:
		m.currentScreen = msg.Screen
		return m, m.initScreen(msg.Screen)

	case NotifyMsg:
		m.toast = &msg
		m.toastSeq++
		seq := m.toastSeq
		return m, tea.Tick(m.toastDuration(), func(time.Time) tea.Msg {
			return clearNotifyMsg{seq: seq}
		})

	case clearNotifyMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil

	}

	// Results of background work land on the clientes screen even while
	// another screen is showing
	var cmds []tea.Cmd
	if m.clientes != nil {
		var cmd tea.Cmd
		m.clientes, cmd = m.clientes.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.settings != nil && m.currentScreen == ScreenSettings {
		var cmd tea.Cmd
		m.settings, cmd = m.settings.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Cargando..."
	}

	// Header
	header := headerStyle.Render(fmt.Sprintf("clientes - %s", m.currentScreen.String()))

	// Footer with navigation keys
	footer := footerStyle.Render("[C]lientes  [,] Configuración  [Q] Salir")

	// Current screen content
	content := "Cargando..."
	if s := m.screen(m.currentScreen); s != nil {
		content = s.View()
	}

	// Toast display
	notice := ""
	if m.toast != nil {
		style := toastSuccessStyle
		if m.toast.Kind == notifyError {
			style = toastErrorStyle
		}
		notice = "\n" + style.Render(m.toast.Text)
	}

	// Divider line between header and content
	innerWidth := m.width - 6 // account for border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	dividerWidth := innerWidth - 12
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(
		strings.Repeat("─", dividerWidth),
	)

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, notice, divider, footer)

	// Wrap in border, sized to terminal
	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4) // leave room for border top/bottom
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// Run starts the TUI
func Run(a *app.App) error {
	p := tea.NewProgram(New(a), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
