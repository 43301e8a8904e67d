package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gridsound/audiograph/internal/ctxlog"
)

// Run plays the loaded preset once: initialize, trigger, hold for the
// configured duration, release, tear down.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.StatusPort > 0 {
		a.startStatusServer(ctx)
		defer a.closeStatusServer(ctx)
	}

	if err := a.graph.Initialize(ctx, a.preset); err != nil {
		return fmt.Errorf("failed to initialize graph: %w", err)
	}
	a.logger.Info("🎛️  Graph initialized.", "preset", a.preset.Name, "session", a.graph.SessionID())

	var note any
	if a.config.Note != "" {
		if freq, err := strconv.ParseFloat(a.config.Note, 64); err == nil {
			note = freq
		} else {
			note = a.config.Note
		}
	}
	if err := a.graph.Trigger(ctx, note); err != nil {
		return fmt.Errorf("trigger failed: %w", err)
	}
	a.logger.Info("🔊 Playing.", "for", a.config.PlayFor.String())

	select {
	case <-time.After(a.config.PlayFor):
	case <-ctx.Done():
		a.logger.Warn("Playback interrupted.", "reason", ctx.Err())
	}

	a.graph.Release(ctx)
	a.logger.Info("🔇 Released.")

	if a.config.PreviewPath != "" {
		if err := a.writePreview(a.config.PreviewPath); err != nil {
			a.logger.Warn("Could not write waveform preview.", "path", a.config.PreviewPath, "error", err)
		} else {
			a.logger.Info("Waveform preview written.", "path", a.config.PreviewPath)
		}
	}

	a.Close(ctx)
	a.logger.Debug("App.Run method finished.")
	return nil
}

// Close tears down the graph and stops the audio engine.
func (a *App) Close(ctx context.Context) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.graph.Teardown(ctx)
	if closer, ok := a.engine.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("Engine shutdown reported an error.", "error", err)
		}
	}
}

// writePreview dumps the cached waveform preview as a JSON array of points.
func (a *App) writePreview(path string) error {
	wave := a.graph.WaveformData()
	if wave == nil {
		return fmt.Errorf("no waveform preview has been rendered")
	}
	data, err := json.Marshal(wave)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
