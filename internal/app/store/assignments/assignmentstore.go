package assignmentstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/assignportal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no assignment with the id is addressed to the admin.
	ErrNotFound = errors.New("assignment not found")
	// ErrInvalidAction is returned for review actions other than accept/reject.
	ErrInvalidAction = errors.New("invalid action")
	// ErrAlreadyDecided is returned when the assignment is no longer pending.
	ErrAlreadyDecided = errors.New("assignment already decided")
)

// Store manages assignment records.
type Store struct {
	c *mongo.Collection
}

// New creates a new assignment Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("assignments")}
}

// Create inserts a pending assignment from owner addressed to admin.
// It does not check that admin names an admin account.
func (s *Store) Create(ctx context.Context, owner, admin, task string) (models.Assignment, error) {
	a := models.Assignment{
		ID:        primitive.NewObjectID(),
		UserID:    owner,
		Admin:     admin,
		Task:      task,
		Status:    models.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

// ListPendingForAdmin returns every pending assignment addressed to admin,
// oldest first.
func (s *Store) ListPendingForAdmin(ctx context.Context, admin string) ([]models.Assignment, error) {
	filter := bson.M{"admin": admin, "status": models.StatusPending}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Assignment, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByOwner returns the assignments submitted by owner, newest first.
func (s *Store) ListByOwner(ctx context.Context, owner string) ([]models.Assignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"userId": owner}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Assignment, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetForAdmin loads an assignment by id, constrained to the given admin.
// Returns ErrNotFound if absent.
func (s *Store) GetForAdmin(ctx context.Context, id primitive.ObjectID, admin string) (*models.Assignment, error) {
	var a models.Assignment
	err := s.c.FindOne(ctx, bson.M{"_id": id, "admin": admin}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Decide applies an admin's review action to an assignment.
//
// The lookup is constrained to {_id, admin}, so an admin can only decide
// assignments addressed to them. An unparsable id is reported as
// ErrNotFound. The status change itself is a single conditional update on
// status=pending: of two concurrent decisions exactly one succeeds, the
// other gets ErrAlreadyDecided.
func (s *Store) Decide(ctx context.Context, idHex, admin, action string) (models.Assignment, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return models.Assignment{}, ErrNotFound
	}

	current, err := s.GetForAdmin(ctx, id, admin)
	if err != nil {
		return models.Assignment{}, err
	}

	status, ok := models.StatusForAction(action)
	if !ok {
		return models.Assignment{}, ErrInvalidAction
	}
	if current.IsDecided() {
		return models.Assignment{}, ErrAlreadyDecided
	}

	now := time.Now().UTC()
	filter := bson.M{"_id": id, "admin": admin, "status": models.StatusPending}
	update := bson.M{"$set": bson.M{"status": status, "decided_at": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Assignment
	err = s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Assignment{}, ErrAlreadyDecided
	}
	if err != nil {
		return models.Assignment{}, err
	}
	return updated, nil
}
