package dsp

import (
	"context"
	"fmt"
	"sync"

	pa "github.com/gordonklaus/portaudio"

	"github.com/gridsound/audiograph/internal/ctxlog"
)

// DefaultFramesPerBuffer is the device write quantum.
const DefaultFramesPerBuffer = 1024

// PortAudioDevice plays mono sample buffers through the system's default
// output via PortAudio, using a blocking-write loop on its own goroutine.
type PortAudioDevice struct {
	framesPerBuffer int

	mu     sync.Mutex
	stream *pa.Stream
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewPortAudioDevice creates a device with the given write quantum;
// framesPerBuffer <= 0 selects the default.
func NewPortAudioDevice(framesPerBuffer int) *PortAudioDevice {
	if framesPerBuffer <= 0 {
		framesPerBuffer = DefaultFramesPerBuffer
	}
	return &PortAudioDevice{framesPerBuffer: framesPerBuffer}
}

// Start implements OutputDevice.
func (d *PortAudioDevice) Start(ctx context.Context, sampleRate float64, pull func(out []float32)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream != nil {
		return nil
	}

	if err := pa.Initialize(); err != nil {
		return fmt.Errorf("portaudio initialization failed: %w", err)
	}
	buf := make([]float32, d.framesPerBuffer)
	stream, err := pa.OpenDefaultStream(0, 1, sampleRate, d.framesPerBuffer, &buf)
	if err != nil {
		_ = pa.Terminate()
		return fmt.Errorf("opening default output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = pa.Terminate()
		return fmt.Errorf("starting output stream: %w", err)
	}

	logger := ctxlog.FromContext(ctx)
	info := stream.Info()
	logger.Info("PortAudio output opened.", "sampleRate", info.SampleRate, "framesPerBuffer", d.framesPerBuffer)

	d.stream = stream
	d.done = make(chan struct{})
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-d.done:
				return
			default:
			}
			pull(buf)
			if err := stream.Write(); err != nil {
				logger.Warn("Output stream write failed; stopping playback.", "error", err)
				return
			}
		}
	}()
	return nil
}

// Stop implements OutputDevice.
func (d *PortAudioDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream == nil {
		return nil
	}
	close(d.done)
	d.wg.Wait()

	err := d.stream.Stop()
	if cerr := d.stream.Close(); err == nil {
		err = cerr
	}
	if terr := pa.Terminate(); err == nil {
		err = terr
	}
	d.stream = nil
	return err
}
