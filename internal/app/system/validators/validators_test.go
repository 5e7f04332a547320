package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/assignportal/internal/app/system/validators"
	"github.com/dalemusser/assignportal/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}
	for _, expected := range []string{"users", "assignments", "audit_events"} {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func TestUsersValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	users := db.Collection("users")

	if _, err := users.InsertOne(ctx, bson.M{"username": "alice"}); err == nil {
		t.Error("expected validation error for user without password/role")
	}
	if _, err := users.InsertOne(ctx, bson.M{"username": "alice", "password": "h", "role": "superadmin"}); err == nil {
		t.Error("expected validation error for unknown role")
	}
	if _, err := users.InsertOne(ctx, bson.M{"username": "   ", "password": "h", "role": "user"}); err == nil {
		t.Error("expected validation error for blank username")
	}
	_, err := users.InsertOne(ctx, bson.M{"username": "alice", "password": "h", "role": "user", "created_at": time.Now()})
	if err != nil {
		t.Errorf("expected valid user to insert, got %v", err)
	}
}

func TestAssignmentsValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	assignments := db.Collection("assignments")

	if _, err := assignments.InsertOne(ctx, bson.M{"userId": "alice", "admin": "bob", "task": "hw1", "status": "archived"}); err == nil {
		t.Error("expected validation error for unknown status")
	}
	if _, err := assignments.InsertOne(ctx, bson.M{"userId": "alice", "task": "hw1", "status": "pending"}); err == nil {
		t.Error("expected validation error for missing admin")
	}
	_, err := assignments.InsertOne(ctx, bson.M{
		"userId": "alice", "admin": "bob", "task": "hw1", "status": "pending", "created_at": time.Now(),
	})
	if err != nil {
		t.Errorf("expected valid assignment to insert, got %v", err)
	}
}
