// Package engine provides the frame loop that drives a receiver, standing in
// for a host's animation callback.
package engine

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultFPS is the frame rate used when none is configured.
const DefaultFPS = 60

// Engine calls OnFrame once per frame, synchronously, on the goroutine that
// called Run. Nothing else in the loop touches receiver state.
type Engine struct {
	Frame     uint64        // Frames completed (monotonic, never resets)
	Speed     float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval  time.Duration // Wall time per frame at speed 1
	MaxFrames uint64        // Stop after this many frames; 0 runs until Stop

	// Callbacks, populated during setup. dt is simulated seconds per frame
	// and does not depend on Speed.
	OnFrame  func(frame uint64, dt float64)
	OnSecond func(frame uint64) // Every FPS() frames

	running atomic.Bool
	stopReq atomic.Bool // set by Stop, consumed when Run returns
}

// NewEngine creates an engine running at fps frames per second.
// A non-positive fps uses DefaultFPS.
func NewEngine(fps int) *Engine {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Engine{
		Speed:    1.0,
		Interval: time.Second / time.Duration(fps),
	}
}

// FPS returns the nominal frame rate implied by Interval.
func (e *Engine) FPS() uint64 {
	if e.Interval <= 0 {
		return DefaultFPS
	}
	fps := uint64((time.Second + e.Interval/2) / e.Interval)
	if fps == 0 {
		return 1
	}
	return fps
}

// Run starts the frame loop. Blocks until Stop is called or MaxFrames is
// reached. A Stop issued before Run makes it return without running a frame.
// Run may be called again after it returns; Frame carries on.
func (e *Engine) Run() {
	e.running.Store(true)
	slog.Info("frame loop started", "frame", e.Frame, "fps", e.FPS(), "speed", e.Speed)

	for !e.stopReq.Load() {
		if e.MaxFrames > 0 && e.Frame >= e.MaxFrames {
			break
		}
		if e.Speed <= 0 {
			// Paused: sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.step()

		// Sleep for the remainder of the frame, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	e.stopReq.Store(false)
	e.running.Store(false)
	slog.Info("frame loop stopped", "frame", e.Frame, "elapsed", Elapsed(e.Frame, e.FPS()))
}

// Stop halts the frame loop after the current frame. Safe to call from any
// goroutine. If Run has not started yet, the request waits for it.
func (e *Engine) Stop() {
	e.stopReq.Store(true)
}

// Running reports whether Run is looping.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Advance runs n frames immediately without sleeping. Used by hosts that
// drive frames themselves and by tests.
func (e *Engine) Advance(n int) {
	for i := 0; i < n; i++ {
		e.step()
	}
}

// step advances the loop by one frame.
func (e *Engine) step() {
	e.Frame++

	if e.OnFrame != nil {
		e.OnFrame(e.Frame, e.Interval.Seconds())
	}

	if e.Frame%e.FPS() == 0 && e.OnSecond != nil {
		e.OnSecond(e.Frame)
	}
}

// Elapsed returns a human-readable simulated time for a frame count.
func Elapsed(frame, fps uint64) string {
	if fps == 0 {
		fps = DefaultFPS
	}
	seconds := frame / fps
	return fmt.Sprintf("%d:%02d.%02d", seconds/60, seconds%60, frame%fps)
}
