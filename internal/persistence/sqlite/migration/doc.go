// Package migration applies versioned SQL migrations to SQLite databases.
//
// Migration files follow the naming convention {version}_{description}.sql
// (e.g. "001_initial_schema.sql") and are read from an fs.FS, normally an
// embedded directory. Applied versions are tracked in a schema_migrations
// table so each file runs at most once; every file runs inside its own
// transaction together with its version record.
//
// Example usage:
//
//	manager := NewManager(NewScanner(files, "migrations"), NewSQLiteExecutor(db), logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return fmt.Errorf("migrate: %w", err)
//	}
package migration
