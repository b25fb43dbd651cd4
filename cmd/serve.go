package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sales-analytics/internal/analytics"
	"github.com/sells-group/sales-analytics/internal/source"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve engine reports over a JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		engine, err := newEngine()
		if err != nil {
			return err
		}

		src, err := initSource(ctx, cmd)
		if err != nil {
			return err
		}
		defer src.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(engine, src),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(engine *analytics.Engine, src source.Source) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/pipeline", func(w http.ResponseWriter, req *http.Request) {
		opps, err := src.Opportunities(req.Context(), "")
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, engine.AnalyzePipeline(opps))
	})

	r.Get("/forecast", func(w http.ResponseWriter, req *http.Request) {
		opps, err := src.Opportunities(req.Context(), "")
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, engine.Forecast(opps, time.Now().UTC(), 0))
	})

	r.Get("/predictions", func(w http.ResponseWriter, req *http.Request) {
		opps, err := src.Opportunities(req.Context(), "")
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, engine.PredictDeals(opps, time.Now().UTC()))
	})

	r.Get("/winloss", func(w http.ResponseWriter, req *http.Request) {
		opps, err := src.Opportunities(req.Context(), "")
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, engine.AnalyzeWinLoss(opps))
	})

	r.Route("/accounts/{id}", func(r chi.Router) {
		r.Get("/churn", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			report, err := analyzeAccount(req.Context(), engine, src, id, time.Now().UTC())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, report.ChurnRisk)
		})
		r.Get("/engagement", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			comms, err := src.Communications(req.Context(), id)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, engine.AnalyzeEngagement(comms, time.Now().UTC()))
		})
		r.Get("/patterns", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			report, err := analyzeAccount(req.Context(), engine, src, id, time.Now().UTC())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, report.BuyingPatterns)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if strings.Contains(err.Error(), "not found") {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
