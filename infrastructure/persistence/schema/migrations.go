package schema

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// Migration moves the schema from Version-1 to Version. Statements are
// kept per dialect because identity columns and booleans differ.
type Migration struct {
	Version     int
	Description string
	Statements  map[Dialect][]string
}

// Migrator applies registered migrations in version order, one
// transaction per migration, recording each in schema_version.
type Migrator struct {
	migrations []Migration
}

// NewMigrator returns a migrator preloaded with the provenance schema.
func NewMigrator() *Migrator {
	m := &Migrator{}
	for _, mig := range builtinMigrations() {
		if err := m.RegisterMigration(mig); err != nil {
			panic(err)
		}
	}
	return m
}

// RegisterMigration adds a migration. Versions must be unique and positive.
func (m *Migrator) RegisterMigration(mig Migration) error {
	if mig.Version <= 0 {
		return fmt.Errorf("invalid migration version %d", mig.Version)
	}
	for _, existing := range m.migrations {
		if existing.Version == mig.Version {
			return fmt.Errorf("migration %d already registered", mig.Version)
		}
	}
	m.migrations = append(m.migrations, mig)
	sort.Slice(m.migrations, func(i, j int) bool { return m.migrations[i].Version < m.migrations[j].Version })
	return nil
}

// LatestVersion is the highest registered version.
func (m *Migrator) LatestVersion() int {
	if len(m.migrations) == 0 {
		return 0
	}
	return m.migrations[len(m.migrations)-1].Version
}

// CurrentVersion reads the applied version, 0 for an empty database.
func (m *Migrator) CurrentVersion(ctx context.Context, db *sql.DB) (int, error) {
	if _, err := db.ExecContext(ctx, versionTableDDL); err != nil {
		return 0, fmt.Errorf("create schema_version: %w", err)
	}
	var version sql.NullInt64
	if err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(version.Int64), nil
}

// Migrate applies every pending migration and returns how many ran.
func (m *Migrator) Migrate(ctx context.Context, db *sql.DB, d Dialect) (int, error) {
	current, err := m.CurrentVersion(ctx, db)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, mig := range m.migrations {
		if mig.Version <= current {
			continue
		}
		if err := m.apply(ctx, db, d, mig); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

func (m *Migrator) apply(ctx context.Context, db *sql.DB, d Dialect, mig Migration) error {
	statements, ok := mig.Statements[d]
	if !ok {
		return fmt.Errorf("migration %d has no statements for %s", mig.Version, d)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", mig.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d (%s): %w", mig.Version, mig.Description, err)
		}
	}
	_, err = tx.ExecContext(ctx,
		d.Rebind("INSERT INTO schema_version (version, description, applied_at) VALUES (?, ?, ?)"),
		mig.Version, mig.Description, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record migration %d: %w", mig.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", mig.Version, err)
	}
	return nil
}

const versionTableDDL = `CREATE TABLE IF NOT EXISTS schema_version (
	version     INTEGER PRIMARY KEY,
	description TEXT NOT NULL,
	applied_at  TEXT NOT NULL
)`

func builtinMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "units, raw facts, bullet points and provenance edges",
			Statements: map[Dialect][]string{
				SQLite: {
					`CREATE TABLE units (
						id            INTEGER PRIMARY KEY AUTOINCREMENT,
						name          TEXT NOT NULL,
						echelon_level TEXT NOT NULL,
						parent_id     INTEGER REFERENCES units(id),
						created_at    TEXT NOT NULL
					)`,
					`CREATE TABLE raw_facts (
						id          INTEGER PRIMARY KEY AUTOINCREMENT,
						unit_id     INTEGER NOT NULL REFERENCES units(id),
						content     TEXT NOT NULL,
						source_type TEXT NOT NULL DEFAULT 'sitrep',
						created_at  TEXT NOT NULL
					)`,
					`CREATE TABLE bullet_points (
						id              INTEGER PRIMARY KEY AUTOINCREMENT,
						unit_id         INTEGER NOT NULL REFERENCES units(id),
						echelon_level   TEXT NOT NULL,
						content         TEXT NOT NULL,
						validity_status TEXT NOT NULL DEFAULT 'valid' CHECK (validity_status IN ('valid', 'invalid')),
						created_at      TEXT NOT NULL
					)`,
					`CREATE TABLE bullet_point_sources (
						parent_bullet_id INTEGER NOT NULL REFERENCES bullet_points(id),
						child_bullet_id  INTEGER NOT NULL REFERENCES bullet_points(id),
						PRIMARY KEY (parent_bullet_id, child_bullet_id)
					)`,
					`CREATE TABLE bullet_point_raw_refs (
						bullet_id   INTEGER NOT NULL REFERENCES bullet_points(id),
						raw_fact_id INTEGER NOT NULL REFERENCES raw_facts(id),
						source_type TEXT NOT NULL,
						PRIMARY KEY (bullet_id, raw_fact_id)
					)`,
				},
				Postgres: {
					`CREATE TABLE units (
						id            BIGSERIAL PRIMARY KEY,
						name          TEXT NOT NULL,
						echelon_level TEXT NOT NULL,
						parent_id     BIGINT REFERENCES units(id),
						created_at    TEXT NOT NULL
					)`,
					`CREATE TABLE raw_facts (
						id          BIGSERIAL PRIMARY KEY,
						unit_id     BIGINT NOT NULL REFERENCES units(id),
						content     TEXT NOT NULL,
						source_type TEXT NOT NULL DEFAULT 'sitrep',
						created_at  TEXT NOT NULL
					)`,
					`CREATE TABLE bullet_points (
						id              BIGSERIAL PRIMARY KEY,
						unit_id         BIGINT NOT NULL REFERENCES units(id),
						echelon_level   TEXT NOT NULL,
						content         TEXT NOT NULL,
						validity_status TEXT NOT NULL DEFAULT 'valid' CHECK (validity_status IN ('valid', 'invalid')),
						created_at      TEXT NOT NULL
					)`,
					`CREATE TABLE bullet_point_sources (
						parent_bullet_id BIGINT NOT NULL REFERENCES bullet_points(id),
						child_bullet_id  BIGINT NOT NULL REFERENCES bullet_points(id),
						PRIMARY KEY (parent_bullet_id, child_bullet_id)
					)`,
					`CREATE TABLE bullet_point_raw_refs (
						bullet_id   BIGINT NOT NULL REFERENCES bullet_points(id),
						raw_fact_id BIGINT NOT NULL REFERENCES raw_facts(id),
						source_type TEXT NOT NULL,
						PRIMARY KEY (bullet_id, raw_fact_id)
					)`,
				},
			},
		},
		{
			Version:     2,
			Description: "critical information requirements",
			Statements: map[Dialect][]string{
				SQLite: {
					`CREATE TABLE ccirs (
						id          INTEGER PRIMARY KEY AUTOINCREMENT,
						unit_id     INTEGER NOT NULL REFERENCES units(id),
						description TEXT NOT NULL,
						keywords    TEXT NOT NULL,
						active      INTEGER NOT NULL DEFAULT 1,
						created_at  TEXT NOT NULL
					)`,
				},
				Postgres: {
					`CREATE TABLE ccirs (
						id          BIGSERIAL PRIMARY KEY,
						unit_id     BIGINT NOT NULL REFERENCES units(id),
						description TEXT NOT NULL,
						keywords    TEXT NOT NULL,
						active      BOOLEAN NOT NULL DEFAULT TRUE,
						created_at  TEXT NOT NULL
					)`,
				},
			},
		},
		{
			Version:     3,
			Description: "lookup indexes",
			Statements: map[Dialect][]string{
				SQLite:   indexStatements,
				Postgres: indexStatements,
			},
		},
	}
}

var indexStatements = []string{
	`CREATE INDEX idx_units_parent ON units(parent_id)`,
	`CREATE INDEX idx_raw_facts_unit ON raw_facts(unit_id)`,
	`CREATE INDEX idx_bullet_points_unit ON bullet_points(unit_id)`,
	`CREATE INDEX idx_sources_child ON bullet_point_sources(child_bullet_id)`,
	`CREATE INDEX idx_raw_refs_raw_fact ON bullet_point_raw_refs(raw_fact_id)`,
	`CREATE INDEX idx_ccirs_unit ON ccirs(unit_id)`,
}
