package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prestaweb/api/pkg/response"
	"github.com/redis/go-redis/v9"
)

// pingTimeout bounds each backing-store check so a hung store cannot stall
// the readiness endpoint.
const pingTimeout = 5 * time.Second

type HealthHandler struct {
	db    *sqlx.DB
	redis *redis.Client
}

func NewHealthHandler(db *sqlx.DB, redis *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health reports liveness only. It never touches the backing stores.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, HealthStatus{Status: "ok", Timestamp: time.Now()})
}

// Ready verifies Postgres and Redis answer before the instance takes
// traffic. The per-store results ride along in the body either way.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks: map[string]string{
			"database": pingCheck(r.Context(), h.db.PingContext),
			"redis": pingCheck(r.Context(), func(ctx context.Context) error {
				return h.redis.Ping(ctx).Err()
			}),
		},
	}

	for _, result := range status.Checks {
		if result != "ok" {
			status.Status = "unavailable"
			response.JSON(w, http.StatusServiceUnavailable, status)
			return
		}
	}

	response.Success(w, status)
}

func pingCheck(ctx context.Context, ping func(context.Context) error) string {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := ping(ctx); err != nil {
		return "failed: " + err.Error()
	}
	return "ok"
}
