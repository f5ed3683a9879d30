package wish

import (
	"log/slog"
	"net/http"

	"churchhelper/entity"
	apierrors "churchhelper/internal/lib/errors"
	"churchhelper/internal/lib/util"

	"github.com/go-chi/render"
)

// Info reports the caller's quota state without consuming a request.
func Info(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.wish.Info"

		identity := util.ClientIdentity(r.RemoteAddr, r.Header.Get("X-Forwarded-For"), r.Header.Get("X-Real-IP"))
		log := logger.With(
			slog.String("op", op),
			slog.String("identity", identity),
		)

		info, err := core.RateLimitInfo(identity)
		if err != nil {
			apiErr := apierrors.NewInternalError("")
			log.Error("rate limit info failed", slog.String("error", err.Error()))
			render.Status(r, apiErr.HTTPStatus)
			render.JSON(w, r, apiErr)
			return
		}

		render.JSON(w, r, struct {
			IPAddress string `json:"ip_address"`
			*entity.RateLimitInfo
		}{identity, info})
	}
}
