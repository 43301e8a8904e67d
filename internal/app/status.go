package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gridsound/audiograph/internal/ctxlog"
)

// statusNode is the wire shape of one node in the status report.
type statusNode struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Materialized bool   `json:"materialized"`
	Disposed     bool   `json:"disposed,omitempty"`
}

// statusReport is the wire shape of the /status endpoint.
type statusReport struct {
	Preset      string       `json:"preset"`
	Session     string       `json:"session"`
	Playing     bool         `json:"playing"`
	Nodes       []statusNode `json:"nodes"`
	Connections int          `json:"connections"`
	Modulation  int          `json:"modulation"`
}

func (a *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	report := statusReport{
		Playing:     a.graph.IsPlaying(),
		Session:     a.graph.SessionID(),
		Connections: len(a.graph.Connections()),
		Modulation:  len(a.graph.ModulationRoutes()),
	}
	if cfg := a.graph.Config(); cfg != nil {
		report.Preset = cfg.Name
	}
	for _, inst := range a.graph.Nodes() {
		report.Nodes = append(report.Nodes, statusNode{
			ID:           inst.ID,
			Type:         inst.Type,
			Materialized: inst.Materialized(),
			Disposed:     inst.Disposed,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		a.logger.Warn("Failed to encode status report.", "error", err)
	}
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// startStatusServer runs the status HTTP server in the background.
func (a *App) startStatusServer(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/status", a.statusHandler)

	addr := fmt.Sprintf(":%d", a.config.StatusPort)
	a.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("🩺 Status server starting", "address", fmt.Sprintf("http://localhost%s/status", addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Status server failed unexpectedly", "error", err)
		}
	}()
}

func (a *App) closeStatusServer(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	if a.httpServer == nil {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Status server shutdown failed", "error", err)
		return
	}
	logger.Debug("Status server shut down gracefully.")
}
