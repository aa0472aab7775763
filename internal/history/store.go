// Package history persists translations in Postgres.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Ininit/OpenTranslate/internal/models"
	"github.com/Ininit/OpenTranslate/internal/translator"
)

var ErrNotFound = errors.New("translation not found")

const (
	defaultLimit = 50
	maxLimit     = 200
)

// DB is the subset of *pgxpool.Pool used by Store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

const selectColumns = `id, job_id, provider, source_text, from_lang, to_lang, result, status, error, created_at, updated_at`

// Record stores a finished synchronous translation.
func (s *Store) Record(ctx context.Context, provider string, req translator.Request, res *translator.Result) (uuid.UUID, error) {
	result, err := json.Marshal(res)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal translation result: %w", err)
	}
	id := uuid.New()
	_, err = s.db.Exec(ctx,
		`INSERT INTO translations (id, provider, source_text, from_lang, to_lang, result, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, provider, req.Text, string(res.From), string(res.To), result, models.TranslationCompleted,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert translation: %w", err)
	}
	return id, nil
}

// CreatePending stores a queued job before it is handed to the worker.
func (s *Store) CreatePending(ctx context.Context, jobID uuid.UUID, provider string, req translator.Request) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO translations (id, job_id, provider, source_text, from_lang, to_lang, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), jobID, provider, req.Text, string(req.From), string(req.To), models.TranslationPending,
	)
	if err != nil {
		return fmt.Errorf("insert pending translation: %w", err)
	}
	return nil
}

func (s *Store) Complete(ctx context.Context, jobID uuid.UUID, res *translator.Result) error {
	result, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal translation result: %w", err)
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE translations SET result = $2, from_lang = $3, status = $4, error = '', updated_at = now()
		 WHERE job_id = $1`,
		jobID, result, string(res.From), models.TranslationCompleted,
	)
	if err != nil {
		return fmt.Errorf("complete translation %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Fail(ctx context.Context, jobID uuid.UUID, reason string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE translations SET status = $2, error = $3, updated_at = now() WHERE job_id = $1`,
		jobID, models.TranslationFailed, reason,
	)
	if err != nil {
		return fmt.Errorf("fail translation %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetByJob(ctx context.Context, jobID uuid.UUID) (*models.Translation, error) {
	row := s.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM translations WHERE job_id = $1`, jobID)
	t, err := scanTranslation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get translation job %s: %w", jobID, err)
	}
	return t, nil
}

// List returns the newest translations first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]models.Translation, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := s.db.Query(ctx,
		`SELECT `+selectColumns+` FROM translations ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query translations: %w", err)
	}
	defer rows.Close()

	out := []models.Translation{}
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan translation: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTranslation(row pgx.Row) (*models.Translation, error) {
	var (
		t      models.Translation
		result []byte
	)
	err := row.Scan(&t.ID, &t.JobID, &t.Provider, &t.SourceText, &t.FromLang, &t.ToLang,
		&result, &t.Status, &t.Error, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(result) > 0 {
		t.Result = result
	}
	return &t, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
