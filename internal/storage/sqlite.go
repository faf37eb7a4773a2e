package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with methods for blueprints, saved
// variables, the user profile, and API tokens.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used
// by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "lynxprompt.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't
// been run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// --- Blueprints ---

func (s *Store) SaveBlueprint(b Blueprint) error {
	now := time.Now().UTC()
	created := b.CreatedAt
	if created.IsZero() {
		created = now
	}
	_, err := s.db.Exec(`
		INSERT INTO blueprints (id, title, description, content, platform, author, defaults_json, price_cents, published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			content = excluded.content,
			platform = excluded.platform,
			defaults_json = excluded.defaults_json,
			price_cents = excluded.price_cents,
			published = excluded.published,
			updated_at = excluded.updated_at`,
		b.ID, b.Title, b.Description, b.Content, b.Platform, b.Author, b.Defaults,
		b.PriceCents, boolToInt(b.Published),
		created.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetBlueprint(id string) (Blueprint, error) {
	var b Blueprint
	var published int
	var createdAt, updatedAt string
	err := s.db.QueryRow(`
		SELECT id, title, description, content, platform, author, defaults_json, price_cents, published, created_at, updated_at
		FROM blueprints WHERE id = ?`, id,
	).Scan(&b.ID, &b.Title, &b.Description, &b.Content, &b.Platform, &b.Author, &b.Defaults, &b.PriceCents, &published, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return Blueprint{}, ErrNotFound
	}
	if err != nil {
		return Blueprint{}, err
	}
	b.Published = published != 0
	if b.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Blueprint{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if b.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return Blueprint{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return b, nil
}

func (s *Store) ListBlueprints(limit, offset int) ([]Blueprint, error) {
	rows, err := s.db.Query(`
		SELECT id, title, description, content, platform, author, defaults_json, price_cents, published, created_at, updated_at
		FROM blueprints ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Blueprint
	for rows.Next() {
		var b Blueprint
		var published int
		var createdAt, updatedAt string
		if err := rows.Scan(&b.ID, &b.Title, &b.Description, &b.Content, &b.Platform, &b.Author, &b.Defaults, &b.PriceCents, &published, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		b.Published = published != 0
		if b.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if b.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		results = append(results, b)
	}
	return results, rows.Err()
}

func (s *Store) DeleteBlueprint(id string) error {
	res, err := s.db.Exec(`DELETE FROM blueprints WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Saved Variables ---

func (s *Store) SetVariable(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO saved_variables (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetVariable(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM saved_variables WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// GetAllVariables returns the saved variable map keyed by canonical name.
func (s *Store) GetAllVariables() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM saved_variables")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		result[k] = v
	}
	return result, rows.Err()
}

func (s *Store) ListVariables() ([]SavedVariable, error) {
	rows, err := s.db.Query("SELECT key, value, updated_at FROM saved_variables ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SavedVariable
	for rows.Next() {
		var v SavedVariable
		var updatedAt string
		if err := rows.Scan(&v.Key, &v.Value, &updatedAt); err != nil {
			return nil, err
		}
		var perr error
		if v.UpdatedAt, perr = time.Parse(time.RFC3339, updatedAt); perr != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", perr)
		}
		results = append(results, v)
	}
	return results, rows.Err()
}

func (s *Store) DeleteVariable(key string) error {
	res, err := s.db.Exec(`DELETE FROM saved_variables WHERE key = ?`, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- User Profile ---

func (s *Store) SetProfileKey(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO user_profile (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetProfileKey(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM user_profile WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

func (s *Store) GetAllProfileKeys() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM user_profile")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		result[k] = v
	}
	return result, rows.Err()
}

// --- Purchases ---

func (s *Store) RecordPurchase(p Purchase) error {
	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO purchases (id, blueprint_id, price_cents, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.BlueprintID, p.PriceCents, created.Format(time.RFC3339),
	)
	return err
}

func (s *Store) ListPurchases(limit int) ([]Purchase, error) {
	rows, err := s.db.Query(`
		SELECT id, blueprint_id, price_cents, created_at
		FROM purchases ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Purchase
	for rows.Next() {
		var p Purchase
		var createdAt string
		if err := rows.Scan(&p.ID, &p.BlueprintID, &p.PriceCents, &createdAt); err != nil {
			return nil, err
		}
		var perr error
		if p.CreatedAt, perr = time.Parse(time.RFC3339, createdAt); perr != nil {
			return nil, fmt.Errorf("parsing created_at: %w", perr)
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// --- API Token ---

// GetOrCreateAPIToken returns the bearer token for the local API, creating
// one on first use. generate supplies the secret so callers control the
// source of randomness.
func (s *Store) GetOrCreateAPIToken(generate func() string) (string, error) {
	var secret string
	err := s.db.QueryRow("SELECT secret FROM api_tokens WHERE name = 'local'").Scan(&secret)
	if err == nil {
		return secret, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	secret = generate()
	_, err = s.db.Exec(`
		INSERT INTO api_tokens (name, secret, created_at) VALUES ('local', ?, ?)`,
		secret, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("storing API token: %w", err)
	}
	return secret, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
