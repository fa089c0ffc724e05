package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tvan04/workflow-management-system-sub001/internal/models"
)

// Repository is the PostgreSQL Store.
type Repository struct {
	db *pgxpool.Pool
}

var _ Store = (*Repository)(nil)

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// PgBouncer in transaction mode does not support prepared statements,
	// so the statement cache stays off.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// Pool exposes the connection pool for maintenance commands.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.db
}

const selectColumns = `id, faculty, appointment_type, effective_date, duration, rationale,
	approval_chain, current_step, status, status_history, cv_file, submitted_at, updated_at, version`

// ---------------- APPLICATION OPERATIONS ----------------

func (r *Repository) Insert(ctx context.Context, app models.Application) (string, error) {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.Version == 0 {
		app.Version = 1
	}

	faculty, chain, history, cv, err := encodeJSONColumns(app)
	if err != nil {
		return "", err
	}

	query := `
		INSERT INTO applications (id, faculty, faculty_name, faculty_email, appointment_type, effective_date,
			duration, rationale, approval_chain, current_step, status, status_history, cv_file,
			submitted_at, updated_at, version)
		VALUES ($1, $2::jsonb, $3, $4, $5, $6::date, $7, $8, $9::jsonb, $10, $11, $12::jsonb, $13::jsonb, $14, $15, $16)`

	_, err = r.db.Exec(ctx, query,
		app.ID, faculty, app.FacultyMember.Name, app.FacultyMember.Email, app.AppointmentType,
		app.EffectiveDate.String(), app.Duration, app.Rationale, chain, app.CurrentStep,
		string(app.Status), history, cv, app.SubmittedAt, app.UpdatedAt, app.Version)
	if err != nil {
		return "", fmt.Errorf("failed to insert application: %w", err)
	}
	return app.ID, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (models.Application, error) {
	row := r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Application{}, ErrNotFound
		}
		return models.Application{}, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

func (r *Repository) ListAll(ctx context.Context) ([]models.Application, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM applications ORDER BY seq`)
}

func (r *Repository) SearchByText(ctx context.Context, query string) ([]models.Application, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return r.ListAll(ctx)
	}
	pattern := "%" + escapeLike(q) + "%"
	return r.query(ctx, `SELECT `+selectColumns+` FROM applications
		WHERE faculty_name ILIKE $1 OR faculty_email ILIKE $1
		ORDER BY seq`, pattern)
}

// Update writes the mutable workflow columns when the stored version matches.
func (r *Repository) Update(ctx context.Context, app models.Application, expectedVersion int64) error {
	history, err := json.Marshal(app.StatusHistory)
	if err != nil {
		return fmt.Errorf("marshal status history: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE applications
		SET current_step = $3, status = $4, status_history = $5::jsonb, updated_at = $6, version = version + 1
		WHERE id = $1 AND version = $2`,
		app.ID, expectedVersion, app.CurrentStep, string(app.Status), string(history), app.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`, app.ID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check application: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrVersionConflict
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]models.Application, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	result := make([]models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		result = append(result, app)
	}
	return result, rows.Err()
}

func scanApplication(row pgx.Row) (models.Application, error) {
	var (
		app                         models.Application
		faculty, chain, history, cv []byte
		status                      string
		effectiveDate               time.Time
	)

	err := row.Scan(&app.ID, &faculty, &app.AppointmentType, &effectiveDate, &app.Duration, &app.Rationale,
		&chain, &app.CurrentStep, &status, &history, &cv, &app.SubmittedAt, &app.UpdatedAt, &app.Version)
	if err != nil {
		return models.Application{}, err
	}

	app.Status = models.ApplicationStatus(status)
	app.EffectiveDate = models.NewDate(effectiveDate)
	app.SubmittedAt = app.SubmittedAt.UTC()
	app.UpdatedAt = app.UpdatedAt.UTC()

	if err := json.Unmarshal(faculty, &app.FacultyMember); err != nil {
		return models.Application{}, fmt.Errorf("decode faculty: %w", err)
	}
	if err := json.Unmarshal(chain, &app.ApprovalChain); err != nil {
		return models.Application{}, fmt.Errorf("decode approval chain: %w", err)
	}
	if err := json.Unmarshal(history, &app.StatusHistory); err != nil {
		return models.Application{}, fmt.Errorf("decode status history: %w", err)
	}
	if app.StatusHistory == nil {
		app.StatusHistory = []models.StatusHistoryEntry{}
	}
	if len(cv) > 0 {
		if err := json.Unmarshal(cv, &app.CVFile); err != nil {
			return models.Application{}, fmt.Errorf("decode cv file: %w", err)
		}
	}
	return app, nil
}

func encodeJSONColumns(app models.Application) (faculty, chain, history, cv string, err error) {
	parts := []any{app.FacultyMember, app.ApprovalChain, app.StatusHistory, app.CVFile}
	out := make([]string, len(parts))
	for i, part := range parts {
		b, mErr := json.Marshal(part)
		if mErr != nil {
			return "", "", "", "", fmt.Errorf("marshal application column: %w", mErr)
		}
		out[i] = string(b)
	}
	return out[0], out[1], out[2], out[3], nil
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
