package favorites

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rebeliceyang/lazyssms/internal/models"
	"gopkg.in/yaml.v3"
)

const fileName = "favorites.yaml"

// ErrNotFound is returned when no favorite has the requested ID
var ErrNotFound = errors.New("favorite not found")

// Manager keeps named SQL snippets in a YAML file under the config dir.
// Every mutation rewrites the whole file.
type Manager struct {
	path  string
	items []models.Favorite
}

// NewManager opens the favorites file in configDir. A missing file is an
// empty list.
func NewManager(configDir string) (*Manager, error) {
	m := &Manager{path: filepath.Join(configDir, fileName)}
	if err := m.Load(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load replaces the in-memory list with the file contents
func (m *Manager) Load() error {
	raw, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		m.items = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", m.path, err)
	}

	var items []models.Favorite
	if err := yaml.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("parse %s: %w", m.path, err)
	}
	m.items = items
	return nil
}

// Save writes the list to a temp file and renames it into place
func (m *Manager) Save() error {
	raw, err := yaml.Marshal(m.items)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, m.path)
}

func clean(name, query string) (string, string, error) {
	name, query = strings.TrimSpace(name), strings.TrimSpace(query)
	switch {
	case name == "":
		return "", "", errors.New("favorite name cannot be empty")
	case query == "":
		return "", "", errors.New("favorite query cannot be empty")
	}
	return name, query, nil
}

// Add stores a new favorite. Names are unique, case-insensitively.
func (m *Manager) Add(name, query, connection, database string) (*models.Favorite, error) {
	name, query, err := clean(name, query)
	if err != nil {
		return nil, err
	}
	if m.find(byName(name)) >= 0 {
		return nil, fmt.Errorf("a favorite named %q already exists", name)
	}

	now := time.Now()
	fav := models.Favorite{
		ID:         uuid.NewString(),
		Name:       name,
		Query:      query,
		Connection: connection,
		Database:   database,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.items = append(m.items, fav)
	if err := m.Save(); err != nil {
		return nil, err
	}
	return &fav, nil
}

// Put stores query under name, replacing the query of an existing
// favorite with the same name. The bool reports whether it replaced one.
func (m *Manager) Put(name, query, connection, database string) (*models.Favorite, bool, error) {
	name, query, err := clean(name, query)
	if err != nil {
		return nil, false, err
	}

	i := m.find(byName(name))
	if i < 0 {
		fav, err := m.Add(name, query, connection, database)
		return fav, false, err
	}

	fav, err := m.mutate(i, func(f *models.Favorite) {
		f.Query = query
		f.Connection = connection
		f.Database = database
		f.UpdatedAt = time.Now()
	})
	return fav, true, err
}

// Delete removes the favorite with id
func (m *Manager) Delete(id string) error {
	i := m.find(byID(id))
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return m.Save()
}

func (m *Manager) Get(id string) (*models.Favorite, error) {
	i := m.find(byID(id))
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	fav := m.items[i]
	return &fav, nil
}

// GetAll returns a copy of every favorite, ordered by name
func (m *Manager) GetAll() []models.Favorite {
	return m.sorted(func(a, b models.Favorite) bool {
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

// Search matches favorites by name or query text, ignoring case
func (m *Manager) Search(term string) []models.Favorite {
	all := m.GetAll()
	term = strings.ToLower(term)
	if term == "" {
		return all
	}

	matched := all[:0]
	for _, fav := range all {
		if strings.Contains(strings.ToLower(fav.Name), term) || strings.Contains(strings.ToLower(fav.Query), term) {
			matched = append(matched, fav)
		}
	}
	return matched
}

// RecordUsage bumps the use count when a favorite is loaded into a tab
func (m *Manager) RecordUsage(id string) error {
	i := m.find(byID(id))
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	_, err := m.mutate(i, func(f *models.Favorite) {
		f.UsageCount++
		f.LastUsed = time.Now()
	})
	return err
}

// GetMostUsed returns up to limit favorites, most used first
func (m *Manager) GetMostUsed(limit int) []models.Favorite {
	out := m.sorted(func(a, b models.Favorite) bool { return a.UsageCount > b.UsageCount })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func (m *Manager) mutate(i int, fn func(*models.Favorite)) (*models.Favorite, error) {
	fn(&m.items[i])
	if err := m.Save(); err != nil {
		return nil, err
	}
	fav := m.items[i]
	return &fav, nil
}

func (m *Manager) find(match func(models.Favorite) bool) int {
	for i, fav := range m.items {
		if match(fav) {
			return i
		}
	}
	return -1
}

func (m *Manager) sorted(less func(a, b models.Favorite) bool) []models.Favorite {
	out := make([]models.Favorite, len(m.items))
	copy(out, m.items)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byID(id string) func(models.Favorite) bool {
	return func(f models.Favorite) bool { return f.ID == id }
}

func byName(name string) func(models.Favorite) bool {
	return func(f models.Favorite) bool { return strings.EqualFold(f.Name, name) }
}
