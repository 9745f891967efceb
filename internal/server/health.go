package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cdn/internal/app"
)

// HealthStatus represents the overall health of the system
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentStatus represents the health of an individual component
type ComponentStatus string

const (
	ComponentStatusUp       ComponentStatus = "up"
	ComponentStatusDown     ComponentStatus = "down"
	ComponentStatusDegraded ComponentStatus = "degraded"
	ComponentStatusDisabled ComponentStatus = "disabled"
)

// Health represents the complete health check response
type Health struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents the health of a single system component
type ComponentHealth struct {
	Status    ComponentStatus `json:"status"`
	Message   string          `json:"message,omitempty"`
	LatencyMs float64         `json:"latency_ms,omitempty"`
}

// slowThreshold marks a component degraded when its check takes longer.
const slowThreshold = time.Second

// handleHealth reports every component; 503 when any is down.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.checkHealth(r.Context())

	statusCode := http.StatusOK
	if health.Status == HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, health)
}

// handleReady is the readiness probe: can we reach the database?
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.app.PingDatabase(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "database unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleLive is the liveness probe; it answers as long as the process runs.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

func (s *Server) checkHealth(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health := Health{
		Timestamp: time.Now(),
		Version:   s.cfg.Version,
		Components: map[string]ComponentHealth{
			"database": checkComponent(ctx, "database", s.app.PingDatabase),
			"redis":    checkComponent(ctx, "redis", s.app.PingRedis),
			"storage":  checkComponent(ctx, "storage", s.app.PingStorage),
		},
	}
	health.Status = overallHealth(health.Components)
	return health
}

func checkComponent(ctx context.Context, name string, ping func(context.Context) error) ComponentHealth {
	start := time.Now()
	err := ping(ctx)
	latency := time.Since(start)

	switch {
	case errors.Is(err, app.ErrStorageDisabled):
		return ComponentHealth{Status: ComponentStatusDisabled}
	case err != nil:
		return ComponentHealth{
			Status:  ComponentStatusDown,
			Message: name + " check failed: " + err.Error(),
		}
	}

	c := ComponentHealth{
		Status:    ComponentStatusUp,
		Message:   name + " healthy",
		LatencyMs: float64(latency.Microseconds()) / 1000,
	}
	if latency > slowThreshold {
		c.Status = ComponentStatusDegraded
		c.Message = name + " latency high"
	}
	return c
}

// overallHealth calculates overall health from component statuses
func overallHealth(components map[string]ComponentHealth) HealthStatus {
	var downCount, degradedCount int
	for _, component := range components {
		switch component.Status {
		case ComponentStatusDown:
			downCount++
		case ComponentStatusDegraded:
			degradedCount++
		}
	}

	if downCount > 0 {
		return HealthStatusUnhealthy
	}
	if degradedCount > 0 {
		return HealthStatusDegraded
	}
	return HealthStatusHealthy
}
