package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Alert represents an engagement-state-to-plugin binding stored in the database.
// When the live engagement state transitions into State, the named plugin
// action is executed with Config.
type Alert struct {
	ID         string
	State      string
	PluginName string
	ActionName string
	Config     json.RawMessage
	Enabled    bool
	CreatedAt  time.Time
}

// AlertRepository provides CRUD operations for alerts.
type AlertRepository struct {
	db *sql.DB
}

// Alerts returns the alert repository for this store.
func (s *Store) Alerts() *AlertRepository {
	return &AlertRepository{db: s.db}
}

// Create inserts a new alert into the database.
func (r *AlertRepository) Create(a *Alert) error {
	a.CreatedAt = time.Now()

	config := a.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	_, err := r.db.Exec(
		`INSERT INTO alerts (id, state, plugin_name, action_name, config, enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.State, a.PluginName, a.ActionName, string(config), a.Enabled, a.CreatedAt,
	)
	return err
}

// GetByID retrieves an alert by its ID.
func (r *AlertRepository) GetByID(id string) (*Alert, error) {
	a := &Alert{}
	var config string
	var enabled int

	err := r.db.QueryRow(
		`SELECT id, state, plugin_name, action_name, config, enabled, created_at
		 FROM alerts WHERE id = ?`,
		id,
	).Scan(&a.ID, &a.State, &a.PluginName, &a.ActionName, &config, &enabled, &a.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	a.Config = json.RawMessage(config)
	a.Enabled = enabled != 0
	return a, nil
}

// GetByState retrieves all enabled alerts bound to an engagement state.
// Returns an empty slice if no alert is bound to the state.
func (r *AlertRepository) GetByState(state string) ([]*Alert, error) {
	rows, err := r.db.Query(
		`SELECT id, state, plugin_name, action_name, config, enabled, created_at
		 FROM alerts WHERE state = ? AND enabled = 1`,
		state,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// List retrieves all alerts from the database.
func (r *AlertRepository) List() ([]*Alert, error) {
	rows, err := r.db.Query(
		`SELECT id, state, plugin_name, action_name, config, enabled, created_at
		 FROM alerts ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// Update updates an existing alert in the database.
func (r *AlertRepository) Update(a *Alert) error {
	config := a.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	enabled := 0
	if a.Enabled {
		enabled = 1
	}

	result, err := r.db.Exec(
		`UPDATE alerts SET state = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		a.State, a.PluginName, a.ActionName, string(config), enabled, a.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes an alert from the database by its ID.
func (r *AlertRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM alerts WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func scanAlerts(rows *sql.Rows) ([]*Alert, error) {
	var alerts []*Alert
	for rows.Next() {
		a := &Alert{}
		var config string
		var enabled int

		err := rows.Scan(&a.ID, &a.State, &a.PluginName, &a.ActionName, &config, &enabled, &a.CreatedAt)
		if err != nil {
			return nil, err
		}

		a.Config = json.RawMessage(config)
		a.Enabled = enabled != 0
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return alerts, nil
}
