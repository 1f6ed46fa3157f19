package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Back key.Binding

	// Navigation
	Clientes key.Binding
	Settings key.Binding

	// Actions
	Select  key.Binding
	New     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Detail  key.Binding
	Refresh key.Binding
	Search  key.Binding
	Clear   key.Binding
	Save    key.Binding
	Confirm key.Binding
	Cancel  key.Binding

	// Movement
	Up        key.Binding
	Down      key.Binding
	NextField key.Binding
	PrevField key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "salir")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "volver")),
	Clientes:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clientes")),
	Settings:  key.NewBinding(key.WithKeys(","), key.WithHelp(",", "configuración")),
	Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "editar")),
	New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "nuevo")),
	Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "editar")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "eliminar")),
	Detail:    key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "ver detalle")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "actualizar")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "buscar")),
	Clear:     key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "limpiar")),
	Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "guardar")),
	Confirm:   key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "eliminar")),
	Cancel:    key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancelar")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "arriba")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "abajo")),
	NextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "siguiente")),
	PrevField: key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "anterior")),
}
