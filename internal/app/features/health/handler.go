package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/retreatreg/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pinger is anything that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Backend Pinger
	Client  *mongo.Client // nil when no audit database is configured
	Log     *zap.Logger
}

// NewHandler constructs a health Handler. client may be nil.
func NewHandler(backend Pinger, client *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Backend: backend,
		Client:  client,
		Log:     logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Backend  string `json:"backend"`
	Database string `json:"database"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "backend":"reachable", "database":"connected" }
//
// database is "not configured" when no audit database is in use. When
// either check fails: 503 with status "error" and the failure in "error".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	var backendErr, dbErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		backendErr = h.Backend.Ping(gctx)
		return nil
	})
	if h.Client != nil {
		g.Go(func() error {
			dbErr = h.Client.Ping(gctx, readpref.Primary())
			return nil
		})
	}
	_ = g.Wait()

	resp := healthResponse{
		Status:   "ok",
		Backend:  "reachable",
		Database: "connected",
	}
	if h.Client == nil {
		resp.Database = "not configured"
	}

	status := http.StatusOK
	if dbErr != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(dbErr))
		status = http.StatusServiceUnavailable
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = dbErr.Error()
	}
	if backendErr != nil {
		h.Log.Error("health-check: backend ping failed", zap.Error(backendErr))
		status = http.StatusServiceUnavailable
		resp.Status = "error"
		resp.Backend = "unreachable"
		resp.Message = "Registration backend unavailable"
		resp.Error = backendErr.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
