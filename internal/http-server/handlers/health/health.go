package health

import (
	"log/slog"
	"net/http"

	"churchhelper/entity"

	"github.com/go-chi/render"
)

type Core interface {
	Health() error
}

type Scheduler interface {
	Status() *entity.SchedulerStatus
}

type status struct {
	Status    string                  `json:"status"`
	Database  string                  `json:"database"`
	Scheduler *entity.SchedulerStatus `json:"scheduler,omitempty"`
}

// Health reports store reachability and scheduler state. Unauthenticated.
func Health(logger *slog.Logger, core Core, scheduler Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.health.Health"

		s := status{Status: "healthy", Database: "connected"}
		if err := core.Health(); err != nil {
			logger.With(slog.String("op", op)).Warn("health check degraded", slog.String("error", err.Error()))
			s.Status = "degraded"
			s.Database = "unreachable"
		}
		if scheduler != nil {
			s.Scheduler = scheduler.Status()
		}

		if s.Status != "healthy" {
			render.Status(r, http.StatusServiceUnavailable)
		}
		render.JSON(w, r, s)
	}
}

// Root serves the service banner.
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{
			"service": "church administration api",
			"status":  "running",
		})
	}
}
