package theme

import "github.com/charmbracelet/lipgloss"

// DefaultTheme returns the default dark theme, close to the SSMS palette
func DefaultTheme() Theme {
	return Theme{
		Name: "default",

		Background: lipgloss.Color("235"),
		Foreground: lipgloss.Color("252"),
		Muted:      lipgloss.Color("244"),

		Border:        lipgloss.Color("240"),
		BorderFocused: lipgloss.Color("33"),
		Selection:     lipgloss.Color("24"),
		Cursor:        lipgloss.Color("231"),

		Success: lipgloss.Color("42"),
		Warning: lipgloss.Color("220"),
		Error:   lipgloss.Color("196"),
		Info:    lipgloss.Color("75"),

		DatabaseIcon: lipgloss.Color("214"),
		TableIcon:    lipgloss.Color("75"),
		ColumnIcon:   lipgloss.Color("246"),

		TableHeader: lipgloss.Color("81"),

		ChromaStyle: "monokai",
	}
}
