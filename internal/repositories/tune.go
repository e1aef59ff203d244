package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/islandtune/internal/models"
	"github.com/desertthunder/islandtune/internal/shared"
	"github.com/desertthunder/islandtune/internal/tune"
)

var _ models.Repository[*models.Tune] = (*TuneRepository)(nil)

const tuneColumns = "id, sequence, name, notation, created_at, updated_at, deleted_at"

// TuneRepository implements models.Repository[*models.Tune].
//
// Names are unique among live tunes; a soft-deleted name can be saved again.
type TuneRepository struct {
	db *sql.DB
}

// NewTuneRepository creates a new TuneRepository with the given database connection
func NewTuneRepository(db *sql.DB) *TuneRepository {
	return &TuneRepository{db: db}
}

// Create inserts a new [models.Tune] with generated ID and sequence
func (r *TuneRepository) Create(t *models.Tune) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "tunes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	_, err = r.db.Exec(`
		INSERT INTO tunes (id, sequence, name, notation, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, sequence, t.Name(), t.Notation(), t.CreatedAt(), t.UpdatedAt())
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", shared.ErrDuplicateTune, t.Name())
	}
	if err != nil {
		return fmt.Errorf("failed to insert tune: %w", err)
	}

	t.SetID(id)
	t.SetSequence(sequence)
	return nil
}

// Get retrieves a tune by ID, excluding soft-deleted tunes
func (r *TuneRepository) Get(id string) (*models.Tune, error) {
	query := "SELECT " + tuneColumns + " FROM tunes WHERE id = ? AND deleted_at IS NULL"
	return r.scan(r.db.QueryRow(query, id))
}

// GetByName retrieves a live tune by its exact name
func (r *TuneRepository) GetByName(name string) (*models.Tune, error) {
	query := "SELECT " + tuneColumns + " FROM tunes WHERE name = ? AND deleted_at IS NULL"
	return r.scan(r.db.QueryRow(query, name))
}

// Update replaces the notation of an existing tune
func (r *TuneRepository) Update(t *models.Tune) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	result, err := r.db.Exec(`
		UPDATE tunes
		SET notation = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, t.Notation(), now, t.ID())
	if err != nil {
		return fmt.Errorf("failed to update tune: %w", err)
	}

	if err := expectRow(result, t.ID()); err != nil {
		return err
	}
	t.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a tune by ID
func (r *TuneRepository) Delete(id string) error {
	result, err := r.db.Exec(`
		UPDATE tunes
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete tune: %w", err)
	}
	return expectRow(result, id)
}

// List retrieves live tunes ordered by sequence. Supported criteria: "name" (exact match).
func (r *TuneRepository) List(criteria map[string]any) ([]*models.Tune, error) {
	query := "SELECT " + tuneColumns + " FROM tunes WHERE deleted_at IS NULL"
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tunes: %w", err)
	}
	defer rows.Close()

	var tunes []*models.Tune
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		tunes = append(tunes, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tunes, nil
}

// Catalog returns the live tunes as a [tune.Catalog] for merging with the built-ins.
func (r *TuneRepository) Catalog() (*tune.Catalog, error) {
	tunes, err := r.List(nil)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(tunes))
	for _, t := range tunes {
		m[t.Name()] = t.Notation()
	}
	return tune.NewCatalog(m), nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scan reads one row in tuneColumns order into a [models.Tune]
func (r *TuneRepository) scan(row scanner) (*models.Tune, error) {
	var (
		id        string
		sequence  int
		name      string
		notation  string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &name, &notation, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrTuneNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan tune: %w", err)
	}

	t := models.NewTune(sequence, name, notation)
	t.SetID(id)
	t.SetCreatedAt(createdAt)
	t.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		t.SetDeletedAt(&deletedAt.Time)
	}
	return t, nil
}

// expectRow turns a zero-row update into [shared.ErrTuneNotFound].
func expectRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTuneNotFound, id)
	}
	return nil
}
