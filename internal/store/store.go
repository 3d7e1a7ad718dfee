package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sqlc-dev/pqtype"
)

// Store wraps access to the Postgres database. Queries are plain SQL
// over a shared pooled *sql.DB.
type Store struct {
	DB *sql.DB
}

// New creates a new Store that uses a shared *sql.DB with pooling.
func New(database *sql.DB) *Store {
	return &Store{DB: database}
}

// APIKey is a stored API key record. Only the SHA-256 hash of the raw
// key is persisted.
type APIKey struct {
	ID                 uuid.UUID
	KeyHash            string
	Label              string
	IsAdmin            bool
	RateLimitPerMinute sql.NullInt32
	CreatedAt          time.Time
}

// Job is a row in the jobs table (batch extraction work).
type Job struct {
	ID        uuid.UUID
	Type      string
	Status    string
	Input     json.RawMessage
	Error     sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Recipe is a stored extraction result. Data is the full ScrapedRecipe
// JSON; it is null for failed batch entries, which carry a code and
// error message instead. Saved marks rows a user chose to keep.
type Recipe struct {
	ID        uuid.UUID
	JobID     uuid.NullUUID
	SourceURL string
	Title     string
	Data      pqtype.NullRawMessage
	Code      sql.NullString
	Error     sql.NullString
	Saved     bool
	CreatedAt time.Time
}

// hashAPIKey hashes a raw API key string using SHA-256 and returns a hex string.
func hashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// GetAPIKeyByRawKey looks up an API key by its raw value.
func (s *Store) GetAPIKeyByRawKey(ctx context.Context, rawKey string) (APIKey, error) {
	var k APIKey
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, key_hash, label, is_admin, rate_limit_per_minute, created_at
		 FROM api_keys WHERE key_hash = $1`, hashAPIKey(rawKey),
	).Scan(&k.ID, &k.KeyHash, &k.Label, &k.IsAdmin, &k.RateLimitPerMinute, &k.CreatedAt)
	return k, err
}

// EnsureAdminAPIKey ensures that there is an admin API key for the
// given raw key and label, creating it when missing.
func (s *Store) EnsureAdminAPIKey(ctx context.Context, rawKey, label string) (APIKey, error) {
	existing, err := s.GetAPIKeyByRawKey(ctx, rawKey)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return APIKey{}, err
	}

	return s.insertAPIKey(ctx, hashAPIKey(rawKey), label, true, sql.NullInt32{})
}

// CreateRandomAPIKey creates a new random API key (with kidchef_ prefix)
// and returns the raw key plus the stored record.
func (s *Store) CreateRandomAPIKey(ctx context.Context, label string, isAdmin bool, rateLimitPerMinute *int) (string, APIKey, error) {
	raw := "kidchef_" + uuid.New().String()

	var rl sql.NullInt32
	if rateLimitPerMinute != nil && *rateLimitPerMinute > 0 {
		rl = sql.NullInt32{Int32: int32(*rateLimitPerMinute), Valid: true}
	}

	key, err := s.insertAPIKey(ctx, hashAPIKey(raw), label, isAdmin, rl)
	if err != nil {
		return "", APIKey{}, err
	}
	return raw, key, nil
}

func (s *Store) insertAPIKey(ctx context.Context, hash, label string, isAdmin bool, rl sql.NullInt32) (APIKey, error) {
	var k APIKey
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO api_keys (id, key_hash, label, is_admin, rate_limit_per_minute)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, key_hash, label, is_admin, rate_limit_per_minute, created_at`,
		uuid.New(), hash, label, isAdmin, rl,
	).Scan(&k.ID, &k.KeyHash, &k.Label, &k.IsAdmin, &k.RateLimitPerMinute, &k.CreatedAt)
	return k, err
}

// ListAPIKeys returns all keys, newest first.
func (s *Store) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, key_hash, label, is_admin, rate_limit_per_minute, created_at
		 FROM api_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []APIKey
	for rows.Next() {
		var k APIKey
		if err := rows.Scan(&k.ID, &k.KeyHash, &k.Label, &k.IsAdmin, &k.RateLimitPerMinute, &k.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// InsertJob inserts a new pending job row.
func (s *Store) InsertJob(ctx context.Context, id uuid.UUID, jobType string, input any) (Job, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return Job{}, err
	}

	var j Job
	err = s.DB.QueryRowContext(ctx,
		`INSERT INTO jobs (id, type, status, input)
		 VALUES ($1, $2, 'pending', $3)
		 RETURNING id, type, status, input, error, created_at, updated_at`,
		id, jobType, payload,
	).Scan(&j.ID, &j.Type, &j.Status, &j.Input, &j.Error, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

// UpdateJobStatus updates the status and optional error message for a job.
func (s *Store) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, errMsg *string) error {
	var sqlErr sql.NullString
	if errMsg != nil {
		sqlErr = sql.NullString{String: *errMsg, Valid: true}
	}
	_, err := s.DB.ExecContext(ctx,
		`UPDATE jobs SET status = $2, error = $3, updated_at = now() WHERE id = $1`,
		id, status, sqlErr)
	return err
}

// GetJobByID fetches a single job.
func (s *Store) GetJobByID(ctx context.Context, id uuid.UUID) (Job, error) {
	var j Job
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, type, status, input, error, created_at, updated_at FROM jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.Type, &j.Status, &j.Input, &j.Error, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

// ListPendingJobs returns up to limit jobs that are still pending, and
// flips them to running so concurrent workers do not double-claim.
func (s *Store) ListPendingJobs(ctx context.Context, limit int32) ([]Job, error) {
	rows, err := s.DB.QueryContext(ctx,
		`UPDATE jobs SET status = 'running', updated_at = now()
		 WHERE id IN (
			SELECT id FROM jobs WHERE status = 'pending'
			ORDER BY created_at ASC LIMIT $1
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING id, type, status, input, error, created_at, updated_at`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.Type, &j.Status, &j.Input, &j.Error, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// InsertRecipe stores one extraction outcome. Data may be nil for a
// failed batch entry, in which case code/errMsg describe the failure.
func (s *Store) InsertRecipe(ctx context.Context, id uuid.UUID, jobID uuid.NullUUID, sourceURL, title string, data json.RawMessage, code, errMsg *string, saved bool) (Recipe, error) {
	var d pqtype.NullRawMessage
	if len(data) > 0 {
		d = pqtype.NullRawMessage{RawMessage: data, Valid: true}
	}
	var c, e sql.NullString
	if code != nil {
		c = sql.NullString{String: *code, Valid: true}
	}
	if errMsg != nil {
		e = sql.NullString{String: *errMsg, Valid: true}
	}

	var r Recipe
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO recipes (id, job_id, source_url, title, data, code, error, saved)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, job_id, source_url, title, data, code, error, saved, created_at`,
		id, jobID, sourceURL, title, d, c, e, saved,
	).Scan(&r.ID, &r.JobID, &r.SourceURL, &r.Title, &r.Data, &r.Code, &r.Error, &r.Saved, &r.CreatedAt)
	return r, err
}

// GetRecipeByID fetches a single stored recipe.
func (s *Store) GetRecipeByID(ctx context.Context, id uuid.UUID) (Recipe, error) {
	var r Recipe
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, job_id, source_url, title, data, code, error, saved, created_at
		 FROM recipes WHERE id = $1`, id,
	).Scan(&r.ID, &r.JobID, &r.SourceURL, &r.Title, &r.Data, &r.Code, &r.Error, &r.Saved, &r.CreatedAt)
	return r, err
}

// RecipesByJobID fetches all extraction rows for a batch job in
// insertion order.
func (s *Store) RecipesByJobID(ctx context.Context, jobID uuid.UUID) ([]Recipe, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, job_id, source_url, title, data, code, error, saved, created_at
		 FROM recipes WHERE job_id = $1 ORDER BY created_at ASC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Recipe
	for rows.Next() {
		var r Recipe
		if err := rows.Scan(&r.ID, &r.JobID, &r.SourceURL, &r.Title, &r.Data, &r.Code, &r.Error, &r.Saved, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListSavedRecipes returns saved recipes, newest first.
func (s *Store) ListSavedRecipes(ctx context.Context, limit int32) ([]Recipe, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, job_id, source_url, title, data, code, error, saved, created_at
		 FROM recipes WHERE saved ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Recipe
	for rows.Next() {
		var r Recipe
		if err := rows.Scan(&r.ID, &r.JobID, &r.SourceURL, &r.Title, &r.Data, &r.Code, &r.Error, &r.Saved, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRecipe removes a stored recipe by id.
func (s *Store) DeleteRecipe(ctx context.Context, id uuid.UUID) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteExpiredJobsByType deletes jobs of one type older than cutoff.
func (s *Store) DeleteExpiredJobsByType(ctx context.Context, jobType string, cutoff time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM jobs WHERE type = $1 AND created_at < $2`, jobType, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteExpiredUnsavedRecipes deletes extraction rows older than cutoff
// that no user chose to keep.
func (s *Store) DeleteExpiredUnsavedRecipes(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM recipes WHERE NOT saved AND created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
