// internal/domain/models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment review states. Pending is the initial state; accepted and
// rejected are terminal.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Review actions an admin can take on a pending assignment.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// Assignment is a task submitted by a user and addressed to one admin.
//
// The JSON field names match the wire format clients already consume:
// the ObjectID is rendered as its hex string under "_id".
type Assignment struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID string             `bson:"userId" json:"userId"` // submitter username
	Admin  string             `bson:"admin" json:"admin"`   // reviewing admin username
	Task   string             `bson:"task" json:"task"`
	Status string             `bson:"status" json:"status"` // pending | accepted | rejected

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	DecidedAt *time.Time `bson:"decided_at,omitempty" json:"decided_at,omitempty"`
}

// StatusForAction maps a review action to the status it produces.
// ok is false for anything other than "accept" or "reject".
func StatusForAction(action string) (status string, ok bool) {
	switch action {
	case ActionAccept:
		return StatusAccepted, true
	case ActionReject:
		return StatusRejected, true
	default:
		return "", false
	}
}

// IsDecided reports whether the assignment has left the pending state.
func (a *Assignment) IsDecided() bool {
	return a.Status != StatusPending
}
