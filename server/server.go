// Package server contains effects control server.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Logger system representation.
	logSystem = "server"

	// Time given to in-flight requests on shutdown.
	shutdownTimeout = 10 * time.Second
)

// EffectsServer describes effects control server.
type EffectsServer struct {
	Settings providers.ISettingsProvider
	Logger   common.ILoggerProvider

	state      IServerStateProvider
	wsSettings websocket.Upgrader
	httpServer *http.Server
}

// NewServer constructs a new control server.
func NewServer(settings providers.ISettingsProvider) (*EffectsServer, error) {
	server := EffectsServer{
		Logger:   settings.SystemLogger(),
		Settings: settings,
		state:    newServerState(settings),
		wsSettings: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	return &server, nil
}

// Start loads effects and launches control server.
// Blocks until termination signal is received.
func (s *EffectsServer) Start() {
	s.state.Load(context.Background())
	s.startPoller()

	port := s.Settings.ServerSettings().Port
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			s.Logger.Fatal("Failed to start server", err, common.LogSystemToken, logSystem)
		}
	}()

	s.Logger.Info(fmt.Sprintf("Started server on port %d", port), common.LogSystemToken, logSystem)
	go func() {
		sl := s.Settings.ServerSettings().DelayedStart
		if sl > 0 {
			time.Sleep(time.Duration(sl) * time.Second)
		}

		s.state.AutoStart()
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	s.Logger.Info("Received stop command, exiting", common.LogSystemToken, logSystem)
	s.Shutdown()
}

// RunOnce loads effects, renders a single frame of each and releases everything.
func (s *EffectsServer) RunOnce(ctx context.Context) error {
	s.state.Load(ctx)
	s.startPoller()
	failed := s.state.RunOnceAll(ctx)
	s.Shutdown()

	if failed > 0 {
		return &common.ErrEffectExecution{Effect: "*", Err: fmt.Errorf("%d effects failed", failed)}
	}

	return nil
}

// Shutdown stops effects and releases all sub-systems.
func (s *EffectsServer) Shutdown() {
	if nil != s.httpServer {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.Logger.Error("Failed to stop server", err, common.LogSystemToken, logSystem)
		}
		cancel()
	}

	if poller := s.Settings.StatePoller(); nil != poller {
		poller.Stop()
	}

	s.state.Unload()
	s.Settings.Connections().CloseAll()
	s.Settings.FanOut().Close()
	s.Settings.State().Close()
	s.Settings.Cron().Stop()
	s.Logger.Flush()
}

// Handler returns API router wrapped with middleware.
func (s *EffectsServer) Handler() http.Handler {
	router := mux.NewRouter()
	s.registerAPI(router)

	origins := s.Settings.ServerSettings().CORSOrigins
	if 0 == len(origins) {
		origins = []string{"*"}
	}

	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(&recoveryLogger{logger: s.Logger}),
		handlers.PrintRecoveryStack(false),
	)

	return recovery(cors(router))
}

// All API registration.
func (s *EffectsServer) registerAPI(router *mux.Router) {
	publicRouter := router.PathPrefix("/pub").Subrouter()
	publicRouter.HandleFunc("/ping", s.ping).Methods(http.MethodGet)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	apiRouter := router.PathPrefix(routeAPI).Subrouter()
	apiRouter.HandleFunc("/effect-types", s.getEffectTypes).Methods(http.MethodGet)
	apiRouter.HandleFunc(fmt.Sprintf("/effect-types/{%s}", urlEffectType), s.getEffectType).
		Methods(http.MethodGet)

	apiRouter.HandleFunc("/effects", s.getEffects).Methods(http.MethodGet)
	apiRouter.HandleFunc(fmt.Sprintf("/effects/{%s}", urlEffectName), s.getEffect).Methods(http.MethodGet)
	apiRouter.HandleFunc(fmt.Sprintf("/effects/{%s}/spec", urlEffectName), s.getEffectSpec).
		Methods(http.MethodGet)
	apiRouter.HandleFunc(fmt.Sprintf("/effects/{%s}/config", urlEffectName), s.updateEffectConfig).
		Methods(http.MethodPut, http.MethodPost)
	apiRouter.HandleFunc(fmt.Sprintf("/effects/{%s}/{%s}", urlEffectName, urlCommandName), s.effectCommand).
		Methods(http.MethodPost)

	apiRouter.HandleFunc("/entities", s.getEntities).Methods(http.MethodGet)
	apiRouter.HandleFunc(fmt.Sprintf("/entities/{%s}", urlEntityID), s.getEntity).Methods(http.MethodGet)
	apiRouter.HandleFunc(fmt.Sprintf("/entities/{%s}", urlEntityID), s.setEntity).
		Methods(http.MethodPut, http.MethodPost)
	apiRouter.HandleFunc(fmt.Sprintf("/events/{%s}", urlEventType), s.fireEvent).Methods(http.MethodPost)

	apiRouter.HandleFunc("/devices", s.getDevices).Methods(http.MethodGet)
	apiRouter.HandleFunc("/ws", s.handleWS)
	apiRouter.Use(s.logMiddleware, s.authMiddleware)
}

// Starts Home Assistant poller if configured.
func (s *EffectsServer) startPoller() {
	poller := s.Settings.StatePoller()
	if nil == poller {
		return
	}

	if err := poller.Start(); err != nil {
		s.Logger.Error("Failed to start state poller", err, common.LogSystemToken, logSystem)
	}
}
