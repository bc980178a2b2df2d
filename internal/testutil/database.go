package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the embedded goose migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Account table
		CREATE TABLE account (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			name VARCHAR(100) NOT NULL,
			currency VARCHAR(3) NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP NOT NULL,
			deleted_at DATETIME
		);

		-- Category table
		CREATE TABLE category (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			name VARCHAR(100) NOT NULL,
			type VARCHAR(7) NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP NOT NULL,
			deleted_at DATETIME
		);

		-- Ledger transaction table
		CREATE TABLE ledger_transaction (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			account_id VARCHAR(36) NOT NULL,
			category_id VARCHAR(36),
			type VARCHAR(7) NOT NULL,
			kind VARCHAR(8) NOT NULL,
			amount TEXT NOT NULL,
			currency VARCHAR(3) NOT NULL,
			description TEXT,
			occurred_at DATETIME NOT NULL,
			transfer_group_id VARCHAR(36),
			transfer_direction VARCHAR(3),
			related_account_id VARCHAR(36),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP NOT NULL,
			deleted_at DATETIME,
			FOREIGN KEY(account_id) REFERENCES account(id),
			FOREIGN KEY(category_id) REFERENCES category(id),
			FOREIGN KEY(related_account_id) REFERENCES account(id)
		);

		-- Recurring rule table
		CREATE TABLE recurring_rule (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			kind VARCHAR(8) NOT NULL,
			account_id VARCHAR(36),
			category_id VARCHAR(36),
			type VARCHAR(7),
			from_account_id VARCHAR(36),
			to_account_id VARCHAR(36),
			amount TEXT NOT NULL,
			description TEXT,
			cadence VARCHAR(7) NOT NULL,
			day_of_week INTEGER,
			day_of_month INTEGER,
			start_at DATETIME NOT NULL,
			end_at DATETIME,
			next_run_at DATETIME NOT NULL,
			last_run_at DATETIME,
			is_paused BOOLEAN DEFAULT FALSE NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP NOT NULL,
			deleted_at DATETIME,
			FOREIGN KEY(account_id) REFERENCES account(id),
			FOREIGN KEY(category_id) REFERENCES category(id),
			FOREIGN KEY(from_account_id) REFERENCES account(id),
			FOREIGN KEY(to_account_id) REFERENCES account(id)
		);

		-- Recurring run log table (idempotency journal)
		CREATE TABLE recurring_run_log (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			rule_id VARCHAR(36) NOT NULL,
			user_id VARCHAR(36) NOT NULL,
			scheduled_at DATETIME NOT NULL,
			transaction_ids TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP NOT NULL,
			FOREIGN KEY(rule_id) REFERENCES recurring_rule(id),
			CONSTRAINT unique_rule_occurrence UNIQUE (rule_id, scheduled_at)
		);

		-- Indexes for performance
		CREATE INDEX ix_account_user_id ON account(user_id);
		CREATE INDEX ix_category_user_id ON category(user_id);
		CREATE INDEX ix_ledger_transaction_user_id ON ledger_transaction(user_id);
		CREATE INDEX ix_ledger_transaction_account_id ON ledger_transaction(account_id);
		CREATE INDEX ix_ledger_transaction_occurred_at ON ledger_transaction(occurred_at);
		CREATE INDEX ix_ledger_transaction_transfer_group_id ON ledger_transaction(transfer_group_id);
		CREATE INDEX ix_recurring_rule_user_id ON recurring_rule(user_id);
		CREATE INDEX ix_recurring_rule_next_run_at ON recurring_rule(next_run_at);
		CREATE INDEX ix_recurring_run_log_rule_id ON recurring_run_log(rule_id);
	`

	_, err := db.Exec(schema)
	return err
}

// CleanDatabase truncates all tables in dependency order.
// Useful for reusing the same database across multiple tests.
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	// Order matters: delete children before parents due to foreign keys
	tables := []string{
		"recurring_run_log",
		"recurring_rule",
		"ledger_transaction",
		"category",
		"account",
	}

	for _, table := range tables {
		query := "DELETE FROM " + table
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in a table.
// Useful for assertions in tests.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	query := "SELECT COUNT(*) FROM " + table
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
//
// Example usage:
//
//	testutil.AssertRowCount(t, db, "ledger_transaction", 2)
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}
