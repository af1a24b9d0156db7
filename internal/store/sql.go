package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spboyer/arena/internal/models"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS test_runs (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	prompt_version TEXT NOT NULL DEFAULT '',
	persona_ids_json TEXT NOT NULL DEFAULT '[]',
	status TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_test_runs_created ON test_runs(created_at);

CREATE TABLE IF NOT EXISTS personas (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	difficulty TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS criteria (
	name TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	weight REAL NOT NULL DEFAULT 1.0,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluations (
	id TEXT PRIMARY KEY,
	test_run_id TEXT NOT NULL,
	evaluator_name TEXT NOT NULL DEFAULT '',
	evaluator_version TEXT NOT NULL DEFAULT '',
	overall_score REAL,
	success_count INTEGER,
	failure_count INTEGER,
	partial_count INTEGER,
	criteria_snapshot_json TEXT,
	model_used TEXT,
	tokens_used INTEGER,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evaluations_test_run ON evaluations(test_run_id);

` + itemsTable

// itemsTable keys items per evaluation: exports from different runs reuse
// item IDs such as "battle-1".
const itemsTable = `
CREATE TABLE IF NOT EXISTS battle_evaluations (
	id TEXT NOT NULL,
	evaluation_id TEXT NOT NULL REFERENCES evaluations(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	persona_id TEXT,
	persona_name TEXT,
	overall_score REAL,
	criteria_scores_json TEXT,
	outcome TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (evaluation_id, id)
);
CREATE INDEX IF NOT EXISTS idx_battle_evaluations_eval ON battle_evaluations(evaluation_id, position);
`

// SQLStore implements Store on SQLite.
type SQLStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// OpenSQLStore opens (creating if needed) the SQLite database at path and
// applies the schema.
func OpenSQLStore(path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLStore{db: db, path: path, now: time.Now}
	if err := migrateItemKey(db); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("migrating battle_evaluations: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

// migrateItemKey rebuilds a battle_evaluations table created with a global
// item primary key. Fresh databases have no such table and are left alone.
func migrateItemKey(db *sql.DB) error {
	var ddl string
	err := db.QueryRow(`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = 'battle_evaluations'`).Scan(&ddl)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	if !strings.Contains(ddl, "id TEXT PRIMARY KEY") {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range []string{
		`ALTER TABLE battle_evaluations RENAME TO battle_evaluations_old`,
		`DROP INDEX IF EXISTS idx_battle_evaluations_eval`,
		itemsTable,
		`INSERT INTO battle_evaluations (id, evaluation_id, position, persona_id, persona_name,
		   overall_score, criteria_scores_json, outcome)
		 SELECT id, evaluation_id, position, persona_id, persona_name,
		   overall_score, criteria_scores_json, outcome FROM battle_evaluations_old`,
		`DROP TABLE battle_evaluations_old`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLStore) Path() string {
	return s.path
}

func (s *SQLStore) timestamp() string {
	return formatTime(s.now())
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// --- test runs ---

// CreateTestRun inserts run, filling ID, status, and timestamps when unset.
func (s *SQLStore) CreateTestRun(ctx context.Context, run *models.TestRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = models.TestRunPending
	}
	if run.PersonaIDs == nil {
		run.PersonaIDs = []string{}
	}
	now := s.now()
	run.CreatedAt, run.UpdatedAt = now, now

	personaIDs, err := json.Marshal(run.PersonaIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO test_runs (id, name, prompt_version, persona_ids_json, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.PromptVersion, string(personaIDs), string(run.Status),
		formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("inserting test run: %w", err)
	}
	return nil
}

const testRunColumns = `id, name, prompt_version, persona_ids_json, status, created_at, updated_at`

func scanTestRun(row interface{ Scan(...any) error }) (*models.TestRun, error) {
	var (
		run                  models.TestRun
		personaIDs           string
		status               string
		createdAt, updatedAt string
	)
	if err := row.Scan(&run.ID, &run.Name, &run.PromptVersion, &personaIDs, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(personaIDs), &run.PersonaIDs); err != nil {
		return nil, fmt.Errorf("decoding persona ids of test run %s: %w", run.ID, err)
	}
	run.Status = models.TestRunStatus(status)
	run.CreatedAt = parseTime(createdAt)
	run.UpdatedAt = parseTime(updatedAt)
	return &run, nil
}

// GetTestRun returns a test run or ErrTestRunNotFound.
func (s *SQLStore) GetTestRun(ctx context.Context, id string) (*models.TestRun, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+testRunColumns+` FROM test_runs WHERE id = ?`, id)
	run, err := scanTestRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTestRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading test run %s: %w", id, err)
	}
	return run, nil
}

// ListTestRuns returns all test runs, newest first.
func (s *SQLStore) ListTestRuns(ctx context.Context) ([]models.TestRun, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+testRunColumns+` FROM test_runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing test runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	runs := []models.TestRun{}
	for rows.Next() {
		run, err := scanTestRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// UpdateTestRunStatus moves a test run to status.
func (s *SQLStore) UpdateTestRunStatus(ctx context.Context, id string, status models.TestRunStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid test run status %q", status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE test_runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), s.timestamp(), id)
	if err != nil {
		return fmt.Errorf("updating test run %s: %w", id, err)
	}
	return requireAffected(res, ErrTestRunNotFound)
}

// --- personas ---

// CreatePersona inserts p, generating an ID when unset.
func (s *SQLStore) CreatePersona(ctx context.Context, p *models.Persona) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = s.now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO personas (id, name, description, difficulty, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Difficulty, formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting persona: %w", err)
	}
	return nil
}

// ListPersonas returns all personas ordered by name.
func (s *SQLStore) ListPersonas(ctx context.Context) ([]models.Persona, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, difficulty, created_at FROM personas ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing personas: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	personas := []models.Persona{}
	for rows.Next() {
		var (
			p         models.Persona
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Difficulty, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTime(createdAt)
		personas = append(personas, p)
	}
	return personas, rows.Err()
}

// DeletePersona removes a persona. Battle evaluations that referenced it keep
// their denormalized name.
func (s *SQLStore) DeletePersona(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM personas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting persona %s: %w", id, err)
	}
	return requireAffected(res, ErrPersonaNotFound)
}

// --- criteria ---

// ListCriteria returns all criteria, core before domain.
func (s *SQLStore) ListCriteria(ctx context.Context) ([]models.Criterion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, category, description, weight, updated_at FROM criteria ORDER BY category, name`)
	if err != nil {
		return nil, fmt.Errorf("listing criteria: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	criteria := []models.Criterion{}
	for rows.Next() {
		var (
			c         models.Criterion
			category  string
			updatedAt string
		)
		if err := rows.Scan(&c.Name, &category, &c.Description, &c.Weight, &updatedAt); err != nil {
			return nil, err
		}
		c.Category = models.CriterionCategory(category)
		c.UpdatedAt = parseTime(updatedAt)
		criteria = append(criteria, c)
	}
	return criteria, rows.Err()
}

// UpsertCriterion creates or replaces the criterion named c.Name.
func (s *SQLStore) UpsertCriterion(ctx context.Context, c *models.Criterion) error {
	if c.Category == "" {
		c.Category = models.CriterionCore
	}
	c.UpdatedAt = s.now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO criteria (name, category, description, weight, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   category = excluded.category,
		   description = excluded.description,
		   weight = excluded.weight,
		   updated_at = excluded.updated_at`,
		c.Name, string(c.Category), c.Description, c.Weight, formatTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upserting criterion %s: %w", c.Name, err)
	}
	return nil
}

// DeleteCriterion removes the named criterion.
func (s *SQLStore) DeleteCriterion(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM criteria WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting criterion %s: %w", name, err)
	}
	return requireAffected(res, ErrCriterionNotFound)
}

// --- evaluations ---

// SaveEvaluation inserts raw and its items in one transaction. An ID that
// is already stored yields ErrEvaluationExists and leaves the stored
// evaluation untouched.
func (s *SQLStore) SaveEvaluation(ctx context.Context, raw *models.RawEvaluation) (string, error) {
	if raw.ID == "" {
		raw.ID = uuid.NewString()
	}
	if raw.CreatedAt.IsZero() {
		raw.CreatedAt = s.now()
	}

	snapshot, err := nullableJSON(raw.CriteriaSnapshot)
	if err != nil {
		return "", fmt.Errorf("encoding criteria snapshot: %w", err)
	}

	itemIDs := make([]string, len(raw.Items))
	seen := make(map[string]int, len(raw.Items))
	for i, it := range raw.Items {
		id := it.ID
		if id == "" {
			id = uuid.NewString()
		}
		if first, dup := seen[id]; dup {
			return "", fmt.Errorf("%w: %q at items %d and %d", ErrDuplicateItemID, id, first, i)
		}
		seen[id] = i
		itemIDs[i] = id
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM evaluations WHERE id = ?`, raw.ID).Scan(&exists)
	switch {
	case err == nil:
		return "", fmt.Errorf("%w: %s", ErrEvaluationExists, raw.ID)
	case !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("checking evaluation %s: %w", raw.ID, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO evaluations (id, test_run_id, evaluator_name, evaluator_version, overall_score,
		   success_count, failure_count, partial_count, criteria_snapshot_json, model_used, tokens_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		raw.ID, raw.TestRunID, raw.EvaluatorName, raw.EvaluatorVersion, raw.OverallScore,
		raw.SuccessCount, raw.FailureCount, raw.PartialCount, snapshot, raw.ModelUsed, raw.TokensUsed,
		formatTime(raw.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("inserting evaluation: %w", err)
	}

	for i, it := range raw.Items {
		scores, err := nullableJSON(it.CriteriaScores)
		if err != nil {
			return "", fmt.Errorf("encoding criteria scores of item %d: %w", i, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO battle_evaluations (id, evaluation_id, position, persona_id, persona_name,
			   overall_score, criteria_scores_json, outcome)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			itemIDs[i], raw.ID, i, it.PersonaID, it.PersonaName, it.OverallScore, scores, it.Outcome)
		if err != nil {
			return "", fmt.Errorf("inserting battle evaluation %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing evaluation: %w", err)
	}
	return raw.ID, nil
}

const evaluationColumns = `id, test_run_id, evaluator_name, evaluator_version, overall_score,
	success_count, failure_count, partial_count, model_used, tokens_used, created_at`

func scanEvaluation(row interface{ Scan(...any) error }, extra ...any) (*models.RawEvaluation, error) {
	var (
		raw       models.RawEvaluation
		createdAt string
	)
	dest := []any{
		&raw.ID, &raw.TestRunID, &raw.EvaluatorName, &raw.EvaluatorVersion, &raw.OverallScore,
		&raw.SuccessCount, &raw.FailureCount, &raw.PartialCount, &raw.ModelUsed, &raw.TokensUsed, &createdAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	raw.CreatedAt = parseTime(createdAt)
	return &raw, nil
}

// GetEvaluation loads an evaluation with its items, resolving persona names
// from the personas table.
func (s *SQLStore) GetEvaluation(ctx context.Context, id string) (*models.EvaluationRecord, error) {
	var snapshot sql.NullString
	row := s.db.QueryRowContext(ctx,
		`SELECT `+evaluationColumns+`, criteria_snapshot_json FROM evaluations WHERE id = ?`, id)
	raw, err := scanEvaluation(row, &snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEvaluationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading evaluation %s: %w", id, err)
	}
	if snapshot.Valid {
		if err := json.Unmarshal([]byte(snapshot.String), &raw.CriteriaSnapshot); err != nil {
			return nil, fmt.Errorf("decoding criteria snapshot of evaluation %s: %w", id, err)
		}
	}

	items, err := s.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	raw.Items = items

	return raw.Normalize()
}

func (s *SQLStore) loadItems(ctx context.Context, evaluationID string) ([]models.RawScoredItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT be.id, be.persona_id, COALESCE(p.name, be.persona_name), be.overall_score,
		        be.criteria_scores_json, be.outcome
		 FROM battle_evaluations be
		 LEFT JOIN personas p ON p.id = be.persona_id
		 WHERE be.evaluation_id = ?
		 ORDER BY be.position`, evaluationID)
	if err != nil {
		return nil, fmt.Errorf("loading items of evaluation %s: %w", evaluationID, err)
	}
	defer rows.Close() //nolint:errcheck

	items := []models.RawScoredItem{}
	for rows.Next() {
		var (
			it     models.RawScoredItem
			scores sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.PersonaID, &it.PersonaName, &it.OverallScore, &scores, &it.Outcome); err != nil {
			return nil, err
		}
		if scores.Valid {
			if err := json.Unmarshal([]byte(scores.String), &it.CriteriaScores); err != nil {
				return nil, fmt.Errorf("decoding criteria scores of item %s: %w", it.ID, err)
			}
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListEvaluations returns evaluation summaries, newest first.
func (s *SQLStore) ListEvaluations(ctx context.Context, testRunID string) ([]models.EvaluationSummary, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations`
	var args []any
	if testRunID != "" {
		query += ` WHERE test_run_id = ?`
		args = append(args, testRunID)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing evaluations: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	summaries := []models.EvaluationSummary{}
	for rows.Next() {
		raw, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		rec, err := raw.Normalize()
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, rec.Summary())
	}
	return summaries, rows.Err()
}

// Summary returns aggregate KPIs across the store.
func (s *SQLStore) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	var (
		sum      models.DashboardSummary
		avgScore sql.NullFloat64
		avgRate  sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT
		  (SELECT COUNT(*) FROM test_runs),
		  (SELECT COUNT(*) FROM personas),
		  COUNT(*),
		  AVG(COALESCE(overall_score, 0)),
		  AVG(CASE
		        WHEN COALESCE(success_count, 0) + COALESCE(failure_count, 0) + COALESCE(partial_count, 0) > 0
		        THEN COALESCE(success_count, 0) * 1.0 /
		             (COALESCE(success_count, 0) + COALESCE(failure_count, 0) + COALESCE(partial_count, 0))
		        ELSE 0 END)
		FROM evaluations`).Scan(&sum.TotalTestRuns, &sum.TotalPersonas, &sum.TotalEvaluations, &avgScore, &avgRate)
	if err != nil {
		return nil, fmt.Errorf("computing summary: %w", err)
	}
	sum.AvgOverallScore = avgScore.Float64
	sum.AvgSuccessRate = avgRate.Float64
	return &sum, nil
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// nullableJSON encodes v as a JSON string, or NULL when v is nil.
func nullableJSON(v map[string]any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Ensure SQLStore satisfies Store.
var _ Store = (*SQLStore)(nil)
