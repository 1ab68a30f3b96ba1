package app

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the workspace bindings outside edit mode
type keyMap struct {
	Help       key.Binding
	Quit       key.Binding
	Disconnect key.Binding
	FocusNext  key.Binding
	FocusPrev  key.Binding
	Execute    key.Binding
	Export     key.Binding
	Mirror     key.Binding
	Refresh    key.Binding
	NewTab     key.Binding
	CloseTab   key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	SaveFav    key.Binding
	Favorites  key.Binding
	History    key.Binding

	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Toggle   key.Binding
	Enter    key.Binding
	Edit     key.Binding

	TemplateSelect key.Binding
	TemplateInsert key.Binding
	TemplateUpdate key.Binding
	TemplateDelete key.Binding
}

var keys = keyMap{
	Help:       key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "help")),
	Quit:       key.NewBinding(key.WithKeys("ctrl+q", "ctrl+c"), key.WithHelp("Ctrl+Q", "quit")),
	Disconnect: key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "disconnect")),
	FocusNext:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "next pane")),
	FocusPrev:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("Shift+Tab", "previous pane")),
	Execute:    key.NewBinding(key.WithKeys("f5"), key.WithHelp("F5", "execute")),
	Export:     key.NewBinding(key.WithKeys("f6"), key.WithHelp("F6", "export")),
	Mirror:     key.NewBinding(key.WithKeys("f9"), key.WithHelp("F9", "mirror")),
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	NewTab:     key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("Ctrl+N", "new tab")),
	CloseTab:   key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("Ctrl+X", "close tab")),
	NextTab:    key.NewBinding(key.WithKeys("f8", "ctrl+pgdown"), key.WithHelp("F8", "next tab")),
	PrevTab:    key.NewBinding(key.WithKeys("f7", "ctrl+pgup"), key.WithHelp("F7", "previous tab")),
	SaveFav:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("Ctrl+S", "save favorite")),
	Favorites:  key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "favorites")),
	History:    key.NewBinding(key.WithKeys("f4"), key.WithHelp("F4", "history")),

	Up:       key.NewBinding(key.WithKeys("up", "k")),
	Down:     key.NewBinding(key.WithKeys("down", "j")),
	Left:     key.NewBinding(key.WithKeys("left", "h")),
	Right:    key.NewBinding(key.WithKeys("right", "l")),
	PageUp:   key.NewBinding(key.WithKeys("pgup")),
	PageDown: key.NewBinding(key.WithKeys("pgdown")),
	Home:     key.NewBinding(key.WithKeys("home")),
	End:      key.NewBinding(key.WithKeys("end")),
	Toggle:   key.NewBinding(key.WithKeys(" ")),
	Enter:    key.NewBinding(key.WithKeys("enter")),
	Edit:     key.NewBinding(key.WithKeys("enter", "e")),

	TemplateSelect: key.NewBinding(key.WithKeys("s")),
	TemplateInsert: key.NewBinding(key.WithKeys("i")),
	TemplateUpdate: key.NewBinding(key.WithKeys("u")),
	TemplateDelete: key.NewBinding(key.WithKeys("d")),
}

// footerHints renders the short help line for a set of bindings
func footerHints(bindings ...key.Binding) string {
	out := ""
	for i, b := range bindings {
		h := b.Help()
		if i > 0 {
			out += " | "
		}
		out += h.Key + " " + h.Desc
	}
	return out
}
