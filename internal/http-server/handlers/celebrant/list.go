package celebrant

import (
	"log/slog"
	"net/http"

	"churchhelper/internal/lib/api/request"
	"churchhelper/internal/lib/api/response"
	apierrors "churchhelper/internal/lib/errors"

	"github.com/go-chi/render"
)

func List(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.celebrant.List"

		log := logger.With(slog.String("op", op))

		page, count, offset := request.Pagination(r)

		celebrants, total, err := core.ListCelebrants(offset, count)
		if err != nil {
			apiErr := apierrors.NewDatabaseError("ListCelebrants")
			log.Error("failed to list celebrants", slog.String("error", err.Error()))
			w.WriteHeader(apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr))
			return
		}

		render.JSON(w, r, response.OkWithPagination(celebrants, page, count, total))
	}
}
