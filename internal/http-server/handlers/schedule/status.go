package schedule

import (
	"log/slog"
	"net/http"

	"churchhelper/internal/lib/api/response"

	"github.com/go-chi/render"
)

func Status(_ *slog.Logger, scheduler Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.Ok(scheduler.Status()))
	}
}
