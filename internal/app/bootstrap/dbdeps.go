// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/assignportal/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
// One client (and its pool) is shared by every store.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// LoginLimiter runs background sweeps; Shutdown stops them.
	LoginLimiter *ratelimit.LoginLimiter
}
