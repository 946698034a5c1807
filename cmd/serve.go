package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/pricing-cli/internal/comps"
	"github.com/sells-group/pricing-cli/internal/model"
	"github.com/sells-group/pricing-cli/internal/poi"
	"github.com/sells-group/pricing-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server for fill requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/fill", func(w http.ResponseWriter, req *http.Request) {
			var fillReq model.FillRequest
			if err := json.NewDecoder(req.Body).Decode(&fillReq); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if fillReq.CentreID == "" || fillReq.Address == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "centre_id and address are required"})
				return
			}

			result, err := env.Pipeline.Run(req.Context(), fillReq)
			if err != nil {
				zap.L().Error("serve: fill failed",
					zap.String("centre_id", fillReq.CentreID),
					zap.Error(err),
				)
				writeJSON(w, http.StatusUnprocessableEntity, result)
				return
			}
			writeJSON(w, http.StatusOK, result)
		})

		r.Get("/comps", func(w http.ResponseWriter, req *http.Request) {
			address := req.URL.Query().Get("address")
			if address == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "address is required"})
				return
			}
			gr, err := env.Geocoder.Geocode(req.Context(), address)
			if err != nil {
				writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
				return
			}
			if !gr.Matched {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "address not matched"})
				return
			}
			result, err := comps.Find(gr.Coordinates(), env.Dataset.Records, compsOptions())
			if err != nil {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, result)
		})

		r.Get("/coworking", func(w http.ResponseWriter, req *http.Request) {
			address := req.URL.Query().Get("address")
			if address == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "address is required"})
				return
			}
			gr, err := env.Geocoder.Geocode(req.Context(), address)
			if err != nil {
				writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
				return
			}
			if !gr.Matched {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "address not matched"})
				return
			}
			coords := gr.Coordinates()
			spaces := poi.Find(req.Context(), coords, env.Overpass.Query, poiOptions())

			city := ""
			if rev, revErr := env.Geocoder.ReverseGeocode(req.Context(), coords); revErr == nil {
				city = rev.City
			}
			units := model.AreaUnit(req.URL.Query().Get("units"))
			if units == "" {
				units = model.AreaSqFt
			}
			writeJSON(w, http.StatusOK, struct {
				City     string      `json:"city"`
				Spaces   []poi.Space `json:"spaces"`
				Estimate float64     `json:"estimate"`
			}{city, spaces, env.Estimator.Estimate(city, units)})
		})

		r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
			runs, err := env.Store.ListRuns(req.Context(), store.RunFilter{
				Status:   model.RunStatus(req.URL.Query().Get("status")),
				CentreID: req.URL.Query().Get("centre_id"),
			})
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, runs)
		})

		r.Get("/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
			run, err := env.Store.GetRun(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
				return
			}
			writeJSON(w, http.StatusOK, run)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			drainServer(srv)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// shutdownTimeout bounds how long in-flight requests may keep draining
// after the stop signal.
const shutdownTimeout = 10 * time.Second

// drainServer shuts the server down on a fresh timeout context. The
// signal context is already cancelled by the time shutdown starts, so it
// must not drive the drain.
func drainServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Warn("server shutdown", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
