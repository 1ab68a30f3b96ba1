package models

import "time"

// Focus identifies which workspace pane receives input
type Focus int

const (
	FocusTree Focus = iota
	FocusEditor
	FocusResults
)

const focusCount = 3

// Next rotates Tree -> Editor -> Results -> Tree
func (f Focus) Next() Focus {
	return (f + 1) % focusCount
}

// Prev rotates in the reverse direction
func (f Focus) Prev() Focus {
	return (f - 1 + focusCount) % focusCount
}

func (f Focus) String() string {
	switch f {
	case FocusTree:
		return "Tree"
	case FocusEditor:
		return "Editor"
	case FocusResults:
		return "Results"
	default:
		return "Unknown"
	}
}

// Favorite is a named SQL snippet
type Favorite struct {
	ID         string    `yaml:"id"`
	Name       string    `yaml:"name"`
	Query      string    `yaml:"query"`
	Connection string    `yaml:"connection"`
	Database   string    `yaml:"database"`
	CreatedAt  time.Time `yaml:"created_at"`
	UpdatedAt  time.Time `yaml:"updated_at"`
	LastUsed   time.Time `yaml:"last_used"`
	UsageCount int       `yaml:"usage_count"`
}
