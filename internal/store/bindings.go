package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
)

// Binding routes one gesture action kind to a plugin action.
type Binding struct {
	ID         string
	ActionKind gesture.ActionKind
	PluginName string
	ActionName string
	Config     json.RawMessage
	Enabled    bool
	CreatedAt  time.Time
}

// BindingRepository provides CRUD operations for bindings.
type BindingRepository struct {
	db *sql.DB
}

// Bindings returns the binding repository for this store.
func (s *Store) Bindings() *BindingRepository {
	return &BindingRepository{db: s.db}
}

const bindingColumns = `id, action_kind, plugin_name, action_name, config, enabled, created_at`

// Create inserts b. An empty ID is filled with a new UUID. A second binding
// for the same action kind fails with ErrConflict.
func (r *BindingRepository) Create(b *Binding) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.CreatedAt = time.Now().UTC()
	if len(b.Config) == 0 {
		b.Config = json.RawMessage("{}")
	}

	_, err := r.db.Exec(
		`INSERT INTO bindings (`+bindingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.ActionKind.String(), b.PluginName, b.ActionName, string(b.Config), boolToInt(b.Enabled), b.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: binding for %s exists", ErrConflict, b.ActionKind)
	}
	return err
}

// GetByID retrieves a binding by its ID.
func (r *BindingRepository) GetByID(id string) (*Binding, error) {
	return scanBinding(r.db.QueryRow(`SELECT `+bindingColumns+` FROM bindings WHERE id = ?`, id))
}

// GetByKind retrieves the binding for an action kind.
func (r *BindingRepository) GetByKind(kind gesture.ActionKind) (*Binding, error) {
	return scanBinding(r.db.QueryRow(`SELECT `+bindingColumns+` FROM bindings WHERE action_kind = ?`, kind.String()))
}

// BindingFor resolves the plugin binding for kind.
func (r *BindingRepository) BindingFor(kind gesture.ActionKind) (plugin.Binding, error) {
	b, err := r.GetByKind(kind)
	if errors.Is(err, ErrNotFound) {
		return plugin.Binding{}, fmt.Errorf("%w: %s", plugin.ErrNoBinding, kind)
	}
	if err != nil {
		return plugin.Binding{}, err
	}
	return plugin.Binding{
		Plugin:  b.PluginName,
		Action:  b.ActionName,
		Config:  b.Config,
		Enabled: b.Enabled,
	}, nil
}

// List returns all bindings ordered by action kind.
func (r *BindingRepository) List() ([]*Binding, error) {
	rows, err := r.db.Query(`SELECT ` + bindingColumns + ` FROM bindings ORDER BY action_kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []*Binding
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, rows.Err()
}

// Update overwrites the binding with b.ID.
func (r *BindingRepository) Update(b *Binding) error {
	if len(b.Config) == 0 {
		b.Config = json.RawMessage("{}")
	}

	result, err := r.db.Exec(
		`UPDATE bindings SET action_kind = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		b.ActionKind.String(), b.PluginName, b.ActionName, string(b.Config), boolToInt(b.Enabled), b.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: binding for %s exists", ErrConflict, b.ActionKind)
	}
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// Delete removes a binding by its ID.
func (r *BindingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM bindings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// DefaultBindings routes every action kind to the bundled pointer plugin.
func DefaultBindings() []Binding {
	return []Binding{
		{ActionKind: gesture.ActionMoveCursor, PluginName: "pointer", ActionName: "move", Enabled: true},
		{ActionKind: gesture.ActionClick, PluginName: "pointer", ActionName: "click", Enabled: true},
		{ActionKind: gesture.ActionScrollDown, PluginName: "pointer", ActionName: "scroll", Enabled: true},
		{
			ActionKind: gesture.ActionBrowserBack,
			PluginName: "pointer",
			ActionName: "hotkey",
			Config:     json.RawMessage(`{"key":"left","modifiers":["alt"]}`),
			Enabled:    true,
		},
	}
}

// SeedDefaults inserts a default binding for every action kind that has
// none. Existing bindings are left alone. It returns how many were added.
func (r *BindingRepository) SeedDefaults() (int, error) {
	added := 0
	for _, d := range DefaultBindings() {
		_, err := r.GetByKind(d.ActionKind)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return added, err
		}
		b := d
		if err := r.Create(&b); err != nil {
			return added, fmt.Errorf("seed %s: %w", d.ActionKind, err)
		}
		added++
	}
	return added, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBinding(row rowScanner) (*Binding, error) {
	b := &Binding{}
	var kind, config string
	var enabled int

	err := row.Scan(&b.ID, &kind, &b.PluginName, &b.ActionName, &config, &enabled, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	b.ActionKind, err = gesture.ParseActionKind(kind)
	if err != nil {
		return nil, err
	}
	b.Config = json.RawMessage(config)
	b.Enabled = enabled != 0
	return b, nil
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
