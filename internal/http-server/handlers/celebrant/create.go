package celebrant

import (
	"errors"
	"log/slog"
	"net/http"

	"churchhelper/entity"
	"churchhelper/internal/lib/api/request"
	"churchhelper/internal/lib/api/response"
	apierrors "churchhelper/internal/lib/errors"

	"github.com/go-chi/render"
)

func Create(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.celebrant.Create"

		log := logger.With(slog.String("op", op))

		celebrant := &entity.Celebrant{Active: true}
		if err := request.DecodeAndValidate(r, celebrant); err != nil {
			if errors.Is(err, request.ErrEmptyBody) {
				apiErr := apierrors.NewBadRequestError("Empty request body")
				log.Warn("request body is empty")
				w.WriteHeader(apiErr.HTTPStatus)
				render.JSON(w, r, response.ErrorFromAPIError(apiErr))
				return
			}
			apiErr := apierrors.NewValidationError(err.Error())
			log.Warn("invalid celebrant data", slog.String("error", err.Error()))
			w.WriteHeader(apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr))
			return
		}

		added, err := core.SaveCelebrant(celebrant)
		if err != nil {
			apiErr := apierrors.NewDatabaseError("SaveCelebrant")
			log.Error("failed to save celebrant", slog.String("error", err.Error()))
			w.WriteHeader(apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr))
			return
		}

		message := "Celebrant updated"
		if added {
			message = "Celebrant created"
		}
		render.JSON(w, r, response.OkWithMessage(celebrant, message))
	}
}
