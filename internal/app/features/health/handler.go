package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/modconsole/internal/app/system/backend"
	"github.com/dalemusser/modconsole/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client  *mongo.Client
	Backend *backend.Client
	Log     *zap.Logger
}

// NewHandler constructs a health Handler. client may be nil when the
// console runs without a database.
func NewHandler(client *mongo.Client, be *backend.Client, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Client:  client,
		Backend: be,
		Log:     logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Backend  string `json:"backend"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "backend":"reachable" }
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
//
// The backend check is informational: an unreachable backend is reported
// but does not fail the probe.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "disabled",
		Backend:  h.backendStatus(ctx),
	}

	if h.Client != nil {
		if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
			h.Log.Error("health-check: mongo ping failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			resp.Status = "error"
			resp.Database = "disconnected"
			resp.Message = "Database unavailable"
			resp.Error = err.Error()
			_ = json.NewEncoder(w).Encode(resp)
			return
		}
		resp.Database = "connected"
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// backendStatus reports whether the REST API answered at all. Any HTTP
// response, including an error status, counts as reachable.
func (h *Handler) backendStatus(ctx context.Context) string {
	if h.Backend == nil {
		return "unconfigured"
	}
	_, err := h.Backend.Get(ctx, "/health", nil)
	var te *backend.TransportError
	if errors.As(err, &te) {
		h.Log.Warn("health-check: backend unreachable", zap.Error(err))
		return "unreachable"
	}
	return "reachable"
}
