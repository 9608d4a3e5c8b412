package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCatalogMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_catalog_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no catalog migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE TABLE IF NOT EXISTS branch_stocks",
		"PRIMARY KEY (product_id, branch_id)",
		"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE",
		"CHECK (qty >= 0)",
		"CHECK (shared_qty >= 0)",
		"DROP TABLE IF EXISTS branch_stocks",
	}
	for _, want := range checks {
		if !strings.Contains(content, want) {
			t.Fatalf("catalog migration missing %q", want)
		}
	}
}

func TestLedgerMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_ledger_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no ledger migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS sales",
		"CREATE TABLE IF NOT EXISTS sale_items",
		"CREATE TABLE IF NOT EXISTS transfers",
		"CREATE TABLE IF NOT EXISTS audit_records",
		"CHECK (num_nonnulls(seller_owner_id, seller_employee_id) = 1)",
		"CHECK (from_branch_id <> to_branch_id)",
		"CHECK (status IN ('pending', 'committed', 'rolled_back'))",
	}
	for _, want := range checks {
		if !strings.Contains(content, want) {
			t.Fatalf("ledger migration missing %q", want)
		}
	}
}

func TestMigrationFilenamesAreValid(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected migration files")
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			t.Fatalf("unexpected file %q", name)
		}
	}
}
