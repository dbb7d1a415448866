// Package database provides the SQLite connection used for the display's
// persisted preferences.
//
// This package manages:
//   - Opening the database file with WAL mode and a busy timeout
//   - Applying embedded schema migrations
//   - Transaction helpers and health checks
//
// Security Considerations:
//   - All queries use parameterised statements
//   - The database file holds the WiFi password and device secret, so its
//     permissions are set to 0600
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.Source()); err != nil {
//	    return err
//	}
package database
