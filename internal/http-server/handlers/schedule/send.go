package schedule

import (
	"log/slog"
	"net/http"

	"churchhelper/internal/lib/api/response"

	"github.com/go-chi/render"
)

// Send triggers the consolidated celebration broadcast immediately.
func Send(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedule.Send"

		log := logger.With(slog.String("op", op))

		summary := core.SendDailyCelebrations()
		if !summary.Success {
			log.Error("celebration broadcast failed", slog.String("error", summary.Error))
			render.JSON(w, r, response.OkWithMessage(summary, "Broadcast failed"))
			return
		}

		render.JSON(w, r, response.OkWithMessage(summary, "Broadcast finished"))
	}
}
