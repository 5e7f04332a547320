package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/assignportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	return WithChiURLParams(r, map[string]string{key: value})
}

// WithChiURLParams adds several chi URL parameters to the request context.
func WithChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with a bcrypt hash of password.
// MinCost keeps fixture setup fast.
func (f *Fixtures) CreateUser(ctx context.Context, username, password, role string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash fixture password: %v", err)
	}
	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin creates an admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, username, password string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, username, password, models.RoleAdmin)
}

// CreateAssignment inserts an assignment with the given status.
func (f *Fixtures) CreateAssignment(ctx context.Context, owner, admin, task, status string) models.Assignment {
	f.t.Helper()

	a := models.Assignment{
		ID:        primitive.NewObjectID(),
		UserID:    owner,
		Admin:     admin,
		Task:      task,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("assignments").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test assignment: %v", err)
	}
	return a
}

// GetAssignment loads an assignment directly from the collection.
func (f *Fixtures) GetAssignment(ctx context.Context, id primitive.ObjectID) models.Assignment {
	f.t.Helper()

	var a models.Assignment
	if err := f.db.Collection("assignments").FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		f.t.Fatalf("failed to load assignment %s: %v", id.Hex(), err)
	}
	return a
}
