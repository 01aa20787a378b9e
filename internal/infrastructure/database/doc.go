// Package database owns the daemon's SQLite file: opening it with WAL mode
// and a busy timeout, restricting it to owner read/write, and running the
// embedded schema migrations.
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are paired YYYYMMDD_HHMMSS_name.{up,down}.sql files registered
// through MigrationsFS; the migrations package at the repo root does that
// from an init func. Keep them additive: new columns are nullable or carry
// defaults, and nothing is dropped or renamed.
package database
