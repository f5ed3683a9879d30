package celebrant

import (
	"log/slog"
	"net/http"
	"strings"

	"churchhelper/internal/lib/api/response"
	apierrors "churchhelper/internal/lib/errors"

	"github.com/go-chi/render"
)

const maxUploadBytes = 10 << 20

// Upload ingests a celebrant roster from a multipart CSV file.
func Upload(logger *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.celebrant.Upload"

		log := logger.With(slog.String("op", op))

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			apiErr := apierrors.NewBadRequestError("Expected multipart form with a csv file")
			log.Warn("failed to parse multipart form", slog.String("error", err.Error()))
			w.WriteHeader(apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			apiErr := apierrors.NewBadRequestError("Missing file field")
			log.Warn("missing upload file", slog.String("error", err.Error()))
			w.WriteHeader(apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr))
			return
		}
		defer func() {
			_ = file.Close()
		}()

		if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
			apiErr := apierrors.NewValidationError("Only .csv files are accepted")
			log.Warn("rejected upload", slog.String("filename", header.Filename))
			w.WriteHeader(apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr))
			return
		}

		upload, warnings, err := core.ImportCSV(header.Filename, file)
		if err != nil {
			apiErr := apierrors.NewValidationError(err.Error())
			log.Warn("csv import rejected", slog.String("error", err.Error()))
			w.WriteHeader(apiErr.HTTPStatus)
			render.JSON(w, r, response.ErrorFromAPIError(apiErr))
			return
		}

		data := struct {
			Upload   interface{} `json:"upload"`
			Warnings []string    `json:"warnings,omitempty"`
		}{upload, warnings}

		render.JSON(w, r, response.Ok(data))
	}
}
