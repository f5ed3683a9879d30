package schedule

import (
	"log/slog"
	"net/http"

	"churchhelper/internal/lib/api/response"
	apierrors "churchhelper/internal/lib/errors"

	"github.com/go-chi/render"
)

// ManualRun triggers the broadcast through the scheduler's overlap guard.
// A run already in progress is reported as a conflict, not overlapped.
func ManualRun(logger *slog.Logger, scheduler Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedule.ManualRun"

		log := logger.With(slog.String("op", op))

		summary, err := scheduler.RunManual()
		if err != nil {
			apiErr := apierrors.NewBadRequestError(err.Error())
			apiErr.HTTPStatus = http.StatusConflict
			log.Warn("manual run rejected", slog.String("error", err.Error()))
			w.WriteHeader(apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr))
			return
		}

		render.JSON(w, r, response.OkWithMessage(summary, "Manual run finished"))
	}
}
