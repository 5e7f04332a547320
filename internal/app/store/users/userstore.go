package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/assignportal/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateUsername is returned when creating a user whose username already exists.
	ErrDuplicateUsername = errors.New("a user with this username already exists")
	errBadRole           = errors.New(`role must be "user"|"admin"`)
	errNoUsername        = errors.New("username is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByUsername looks up a user by exact username. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"username": username}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Exists reports whether a user with this username is stored.
func (s *Store) Exists(ctx context.Context, username string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"username": username},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// Create inserts a new user. The caller supplies the already-hashed password.
// An empty role defaults to "user".
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return models.User{}, errNoUsername
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if !models.IsValidRole(u.Role) {
		return models.User{}, errBadRole
	}
	u.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, err
	}
	return u, nil
}

// RoleOf returns the role stored for username. found is false when no such
// user exists; that is not an error.
func (s *Store) RoleOf(ctx context.Context, username string) (role string, found bool, err error) {
	var doc struct {
		Role string `bson:"role"`
	}
	err = s.c.FindOne(ctx, bson.M{"username": username},
		options.FindOne().SetProjection(bson.M{"role": 1, "_id": 0})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return doc.Role, true, nil
}

// IsAdmin reports whether username names an existing admin account.
func (s *Store) IsAdmin(ctx context.Context, username string) (bool, error) {
	role, found, err := s.RoleOf(ctx, username)
	if err != nil {
		return false, err
	}
	return found && role == models.RoleAdmin, nil
}

// ListAdminUsernames returns the usernames of all admins, sorted.
func (s *Store) ListAdminUsernames(ctx context.Context) ([]string, error) {
	cur, err := s.c.Find(ctx, bson.M{"role": models.RoleAdmin},
		options.Find().
			SetProjection(bson.M{"username": 1, "_id": 0}).
			SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	names := make([]string, 0)
	for cur.Next(ctx) {
		var doc struct {
			Username string `bson:"username"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		names = append(names, doc.Username)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// Count returns the number of stored users.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
