package keepalive

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Clinet/squadbot/utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

var Log *logger.Logger

//Alive is the body served to uptime monitors
const Alive = "Bot is alive!"

//StatusSource reports the state of the voice keeper
type StatusSource interface {
	Active() bool
	Connected() bool
}

type Status struct {
	VoiceLoopActive bool   `json:"voiceLoopActive"`
	Connected       bool   `json:"connected"`
	Uptime          string `json:"uptime"`
}

type APIError struct {
	Error string `json:"error"`
}

//Server serves liveness pings and a small status document
type Server struct {
	http    *http.Server
	source  StatusSource
	started time.Time
}

//logPrinter sends chi's request lines to our logger
type logPrinter struct{}

func (logPrinter) Print(v ...interface{}) {
	Log.Debug(v...)
}

//NewServer returns a server listening on addr, source may be nil when nothing keeps the bot in voice
func NewServer(addr string, source StatusSource) *Server {
	srv := &Server{
		source:  source,
		started: time.Now(),
	}
	srv.http = &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv
}

func (srv *Server) Router() *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logPrinter{}, NoColor: true}),
		middleware.RedirectSlashes,
		middleware.Recoverer,
	)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, Alive)
	})
	router.Route("/api", func(r chi.Router) {
		r.Mount("/v0", srv.apiV0())
	})
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, &APIError{Error: "not found"})
	})

	return router
}

func (srv *Server) apiV0() *chi.Mux {
	router := chi.NewRouter()
	router.Use(render.SetContentType(render.ContentTypeJSON))
	router.Get("/status", srv.getStatus)
	return router
}

func (srv *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	status := &Status{
		Uptime: time.Since(srv.started).Round(time.Second).String(),
	}
	if srv.source != nil {
		status.VoiceLoopActive = srv.source.Active()
		status.Connected = srv.source.Connected()
	}
	render.JSON(w, r, status)
}

//Start serves in the background until Shutdown is called
func (srv *Server) Start() {
	Log.Info("Keep-alive server listening on ", srv.http.Addr)
	go func() {
		if err := srv.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Log.Error("Keep-alive server stopped: ", err)
		}
	}()
}

func (srv *Server) Shutdown(ctx context.Context) error {
	Log.Trace("--- Server.Shutdown() ---")
	return srv.http.Shutdown(ctx)
}
