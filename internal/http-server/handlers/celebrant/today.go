package celebrant

import (
	"log/slog"
	"net/http"

	"churchhelper/entity"
	"churchhelper/internal/lib/api/response"
	apierrors "churchhelper/internal/lib/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func Today(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.celebrant.Today"

		log := logger.With(slog.String("op", op))

		celebrants, err := core.TodaysCelebrants()
		if err != nil {
			apiErr := apierrors.NewDatabaseError("TodaysCelebrants")
			log.Error("failed to load today's celebrants", slog.String("error", err.Error()))
			w.WriteHeader(apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr))
			return
		}

		render.JSON(w, r, response.Ok(celebrants))
	}
}

// ByDate serves celebrants for an explicit MM-DD date path parameter.
func ByDate(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.celebrant.ByDate"

		date := chi.URLParam(r, "date")
		log := logger.With(
			slog.String("op", op),
			slog.String("date", date),
		)

		if err := entity.ValidateEventDate(date); err != nil {
			apiErr := apierrors.NewValidationError("Invalid date, expected MM-DD")
			log.Warn("invalid celebration date", slog.String("error", err.Error()))
			w.WriteHeader(apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr))
			return
		}

		celebrants, err := core.CelebrantsForDate(date)
		if err != nil {
			apiErr := apierrors.NewDatabaseError("CelebrantsForDate")
			log.Error("failed to load celebrants", slog.String("error", err.Error()))
			w.WriteHeader(apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr))
			return
		}

		render.JSON(w, r, response.Ok(celebrants))
	}
}
