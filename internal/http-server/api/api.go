package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"churchhelper/internal/config"
	"churchhelper/internal/http-server/handlers/celebrant"
	"churchhelper/internal/http-server/handlers/errors"
	"churchhelper/internal/http-server/handlers/health"
	"churchhelper/internal/http-server/handlers/schedule"
	"churchhelper/internal/http-server/handlers/wish"
	"churchhelper/internal/http-server/middleware/authenticate"
	"churchhelper/internal/http-server/middleware/timeout"
	"churchhelper/internal/lib/sl"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	wish.Core
	celebrant.Core
	schedule.Core
	health.Core
}

type Scheduler interface {
	schedule.Scheduler
	health.Scheduler
}

func New(conf *config.Config, log *slog.Logger, handler Handler, scheduler Scheduler) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(60))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	// Public surface: wish generation, quota peek, health, banner.
	router.Get("/", health.Root())
	router.Get("/health", health.Health(log, handler, scheduler))
	router.Route("/api/anniversary-wish", func(r chi.Router) {
		r.Post("/", wish.Generate(log, handler))
		r.Get("/rate-limit-info", wish.Info(log, handler))
	})

	// Admin surface behind bearer-token authentication.
	router.Group(func(admin chi.Router) {
		admin.Use(authenticate.New(log, handler))

		admin.Route("/people", func(r chi.Router) {
			r.Get("/", celebrant.List(log, handler))
			r.Post("/", celebrant.Create(log, handler))
		})
		admin.Route("/celebrations", func(r chi.Router) {
			r.Get("/today", celebrant.Today(log, handler))
			r.Get("/{date}", celebrant.ByDate(log, handler))
		})
		admin.Post("/upload-csv", celebrant.Upload(log, handler))
		admin.Post("/send-celebrations", schedule.Send(log, handler))
		admin.Route("/scheduler", func(r chi.Router) {
			r.Get("/status", schedule.Status(log, scheduler))
			r.Post("/manual-run", schedule.ManualRun(log, scheduler))
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
