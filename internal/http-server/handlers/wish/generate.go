package wish

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"churchhelper/entity"
	"churchhelper/internal/lib/api/request"
	apierrors "churchhelper/internal/lib/errors"
	"churchhelper/internal/lib/util"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Generate handles the public wish endpoint. Responses use the documented
// flat shapes rather than the admin envelope.
func Generate(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.wish.Generate"

		identity := util.ClientIdentity(r.RemoteAddr, r.Header.Get("X-Forwarded-For"), r.Header.Get("X-Real-IP"))
		log := logger.With(
			slog.String("op", op),
			slog.String("identity", identity),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		req := &entity.WishRequest{}
		if err := request.DecodeAndValidate(r, req); err != nil {
			apiErr := apierrors.NewValidationError(validationMessage(err))
			log.Warn("invalid wish request", slog.String("error", err.Error()))
			render.Status(r, apiErr.HTTPStatus)
			render.JSON(w, r, apiErr)
			return
		}

		resp, info, allowed := core.GenerateAnniversaryWish(r.Context(), identity, req)
		if !allowed {
			if info == nil {
				apiErr := apierrors.NewInternalError("")
				render.Status(r, apiErr.HTTPStatus)
				render.JSON(w, r, apiErr)
				return
			}
			apiErr := apierrors.NewRateLimitError("Rate limit exceeded. Try again later.", info.RetryAfterSeconds)
			w.Header().Set("Retry-After", strconv.Itoa(info.RetryAfterSeconds))
			render.Status(r, apiErr.HTTPStatus)
			render.JSON(w, r, apiErr)
			return
		}

		resp.RequestID = middleware.GetReqID(r.Context())
		render.JSON(w, r, resp)
	}
}

func validationMessage(err error) string {
	if errors.Is(err, request.ErrEmptyBody) {
		return "Request body is empty"
	}
	return err.Error()
}
