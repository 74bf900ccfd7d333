// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/retreatreg/internal/app/system/backend"
	"github.com/dalemusser/retreatreg/internal/app/system/viewstate"
	"github.com/dalemusser/retreatreg/internal/app/system/workers"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backends the handlers share. The Mongo fields are nil
// when no audit database is configured.
type DBDeps struct {
	Backend  *backend.Client
	Registry *prometheus.Registry

	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Views   *viewstate.Store
	Sweeper *workers.ViewStateSweeper
}
