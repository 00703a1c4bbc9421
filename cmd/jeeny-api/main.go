// README: Entry point; loads config, wires services, serves HTTP until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"jeeny/internal/app"
	"jeeny/internal/config"
	httptransport "jeeny/internal/http"
	"jeeny/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(".", "./config")
	if err != nil {
		logging.New("info", "text").Fatal(err)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := app.Build(ctx, cfg, log, app.Options{})
	if err != nil {
		log.WithError(err).Fatal("wiring failed")
	}
	defer services.Close()

	gin.SetMode(gin.ReleaseMode)
	handler := httptransport.NewServer(httptransport.ServerDeps{
		Chat:           services.Planner,
		Quotes:         services.Quotes,
		Locations:      services.Locations,
		Usage:          services.Usage,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Log:            log,
	})
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("shutdown failed")
		}
	}()

	log.WithField("addr", cfg.HTTP.Addr).Info("jeeny api listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Info("stopped")
}
