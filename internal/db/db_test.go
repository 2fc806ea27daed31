package db

import (
	"context"
	"errors"
	"testing"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/interfaces"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/query"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/entities"
)

func TestInMemoryDatabase(t *testing.T) {
	ctx := context.Background()

	db := NewInMemoryDatabase()
	if err := ConnectAndMigrate(ctx, db, AllSchemas()); err != nil {
		t.Fatalf("Failed to connect and migrate: %v", err)
	}
	defer db.Disconnect(ctx)

	if !db.IsHealthy(ctx) {
		t.Fatal("Database should be healthy")
	}

	skills := db.Repository(entities.MustLookup("skills").Schema)
	levels := db.Repository(entities.MustLookup("experience-levels").Schema)

	t.Run("CRUD Operations", func(t *testing.T) {
		testCRUDOperations(t, ctx, skills)
	})

	t.Run("Query Operations", func(t *testing.T) {
		testQueryOperations(t, ctx, levels)
	})

	t.Run("Constraint Validation", func(t *testing.T) {
		testConstraintValidation(t, ctx, skills)
	})

	t.Run("Transactions", func(t *testing.T) {
		testTransactions(t, ctx, db, skills)
	})
}

func testCRUDOperations(t *testing.T, ctx context.Context, repo interfaces.Repository) {
	skill, err := repo.Create(ctx, map[string]interface{}{
		"name":     "Kubernetes",
		"category": "Technical",
	})
	if err != nil {
		t.Fatalf("Failed to create skill: %v", err)
	}

	skillID, _ := skill["id"].(string)
	if skillID == "" {
		t.Fatal("Skill ID should not be empty")
	}
	if skill["created_at"] == nil || skill["updated_at"] == nil {
		t.Error("Timestamps should be set on create")
	}

	retrieved, err := repo.GetByID(ctx, interfaces.StringID(skillID))
	if err != nil {
		t.Fatalf("Failed to get skill by ID: %v", err)
	}
	if retrieved["name"] != "Kubernetes" {
		t.Errorf("Expected name 'Kubernetes', got '%v'", retrieved["name"])
	}

	updated, err := repo.Update(ctx, interfaces.StringID(skillID), map[string]interface{}{
		"category": "DevOps",
		"id":       "hijacked",
	})
	if err != nil {
		t.Fatalf("Failed to update skill: %v", err)
	}
	if updated["category"] != "DevOps" {
		t.Errorf("Expected category 'DevOps', got '%v'", updated["category"])
	}
	if updated["id"] != skillID {
		t.Errorf("Update must not change the id, got '%v'", updated["id"])
	}
	if updated["name"] != "Kubernetes" {
		t.Errorf("Untouched fields should survive an update, got '%v'", updated["name"])
	}

	if err := repo.Delete(ctx, interfaces.StringID(skillID)); err != nil {
		t.Fatalf("Failed to delete skill: %v", err)
	}

	if _, err := repo.GetByID(ctx, interfaces.StringID(skillID)); !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after deletion, got: %v", err)
	}
	if err := repo.Delete(ctx, interfaces.StringID(skillID)); !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got: %v", err)
	}
}

func testQueryOperations(t *testing.T, ctx context.Context, repo interfaces.Repository) {
	levels := []map[string]interface{}{
		{"name": "Senior", "min_years": 6.0},
		{"name": "Fresher", "min_years": 0},
		{"name": "Mid", "min_years": 3},
		{"name": "Junior", "min_years": 1},
	}
	for _, data := range levels {
		if _, err := repo.Create(ctx, data); err != nil {
			t.Fatalf("Failed to create level: %v", err)
		}
	}

	result, err := repo.FindMany(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to list levels: %v", err)
	}
	if got := names(result.Data); !equalStrings(got, []string{"Senior", "Fresher", "Mid", "Junior"}) {
		t.Errorf("Expected insertion order, got %v", got)
	}

	result, err = repo.FindMany(ctx, &interfaces.Query{
		OrderBy: []interfaces.OrderBy{{Field: "min_years", Direction: "desc"}},
	})
	if err != nil {
		t.Fatalf("Failed to sort levels: %v", err)
	}
	if got := names(result.Data); !equalStrings(got, []string{"Senior", "Mid", "Junior", "Fresher"}) {
		t.Errorf("Expected numeric desc order, got %v", got)
	}

	result, err = repo.FindMany(ctx, &interfaces.Query{
		Where: query.Search("IOR", []string{"name"}),
	})
	if err != nil {
		t.Fatalf("Failed to search levels: %v", err)
	}
	if got := names(result.Data); !equalStrings(got, []string{"Senior", "Junior"}) {
		t.Errorf("Expected case-insensitive search hits, got %v", got)
	}

	count, err := repo.Count(ctx, &interfaces.Query{
		Where: &interfaces.Filters{Conditions: []interfaces.Filter{
			{Field: "min_years", Operator: &interfaces.FilterOperator{Gte: 3}},
		}},
	})
	if err != nil {
		t.Fatalf("Failed to count levels: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 levels with at least 3 years, got %d", count)
	}

	limit, offset := 2, 1
	result, err = repo.FindMany(ctx, &interfaces.Query{Limit: &limit, Offset: &offset})
	if err != nil {
		t.Fatalf("Failed to paginate: %v", err)
	}
	if len(result.Data) != 2 || result.Total != 4 {
		t.Errorf("Expected 2 of 4 records, got %d of %d", len(result.Data), result.Total)
	}
}

func testConstraintValidation(t *testing.T, ctx context.Context, repo interfaces.Repository) {
	if _, err := repo.Create(ctx, map[string]interface{}{"name": "Go"}); err != nil {
		t.Fatalf("Failed to create skill: %v", err)
	}

	_, err := repo.Create(ctx, map[string]interface{}{"name": " go "})
	if !errors.Is(err, interfaces.ErrUniqueConstraint) {
		t.Errorf("Expected unique constraint violation, got: %v", err)
	}

	_, err = repo.Create(ctx, map[string]interface{}{"category": "Technical"})
	if !errors.Is(err, interfaces.ErrInvalidData) {
		t.Errorf("Expected missing name to be rejected, got: %v", err)
	}

	other, err := repo.Create(ctx, map[string]interface{}{"name": "Rust"})
	if err != nil {
		t.Fatalf("Failed to create skill: %v", err)
	}
	_, err = repo.Update(ctx, interfaces.StringID(other["id"].(string)), map[string]interface{}{"name": "GO"})
	if !errors.Is(err, interfaces.ErrUniqueConstraint) {
		t.Errorf("Expected rename onto an existing name to fail, got: %v", err)
	}
}

func testTransactions(t *testing.T, ctx context.Context, db interfaces.Database, repo interfaces.Repository) {
	before, err := repo.Count(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}

	boom := errors.New("boom")
	err = db.Transaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		if _, err := repo.Create(ctx, map[string]interface{}{"name": "Rolled Back"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected transaction error to propagate, got: %v", err)
	}

	after, err := repo.Count(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if after != before {
		t.Errorf("Expected rollback to restore %d records, got %d", before, after)
	}

	err = db.Transaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		_, err := repo.Create(ctx, map[string]interface{}{"name": "Committed"})
		return err
	})
	if err != nil {
		t.Fatalf("Transaction should commit: %v", err)
	}
	if after, _ = repo.Count(ctx, nil); after != before+1 {
		t.Errorf("Expected %d records after commit, got %d", before+1, after)
	}
}

func TestSeedAllIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := NewInMemoryDatabase()
	if err := ConnectAndMigrate(ctx, db, AllSchemas()); err != nil {
		t.Fatalf("Failed to connect and migrate: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := SeedAll(ctx, db); err != nil {
			t.Fatalf("Seed run %d failed: %v", i, err)
		}
	}

	for _, kind := range entities.All() {
		n, err := db.Repository(kind.Schema).Count(ctx, nil)
		if err != nil {
			t.Fatalf("Failed to count %s: %v", kind.Name, err)
		}
		if want := int64(len(Fixtures[kind.Name])); n != want {
			t.Errorf("%s: expected %d seeded records, got %d", kind.Name, want, n)
		}
	}
}

func TestNewDatabaseSelectsBackend(t *testing.T) {
	if _, err := NewDatabase(&Config{Type: "oracle"}, nil); err == nil {
		t.Error("Expected unsupported type to fail")
	}
	if _, err := NewDatabase(&Config{Type: "postgres"}, nil); err != nil {
		t.Errorf("Postgres without DSN should fall back to memory: %v", err)
	}
	if _, err := NewDatabase(nil, nil); err != nil {
		t.Errorf("Default config should work: %v", err)
	}
}

func names(records []map[string]interface{}) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i], _ = r["name"].(string)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
