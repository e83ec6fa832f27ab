// Package tracker runs the logger's processing loop: byte stream in,
// status snapshot and GPX trackpoints out.
package tracker

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"tracklog-ng/internal/gps"
	"tracklog-ng/internal/nmea"
	"tracklog-ng/internal/track"
)

type Config struct {
	// TrackDir is the removable-storage directory for GPX files.
	TrackDir string
	// SampleInterval gates trackpoint emission; zero means the default 3s.
	SampleInterval time.Duration
}

// Status is the read-only view the display consumes.
type Status struct {
	Quality   nmea.FixQuality
	Position  gps.Snapshot
	Recording bool
	FilePath  string
	LastSaved string
	LastError string
}

type command int

const (
	cmdStart command = iota
	cmdStop
	cmdToggle
)

// Runtime owns all recording state. A single goroutine (run loop) performs
// every mutation of the assembler, extractor output, provider, session and
// sampler; other goroutines interact only through the command channel and
// the published status snapshot.
type Runtime struct {
	cfg Config
	src io.Reader

	asm      nmea.Assembler
	quality  nmea.FixQuality
	provider gps.Provider
	session  *track.Session
	sampler  *track.Sampler
	lastErr  string

	cmds chan command
	last atomic.Value // Status

	// now is swappable for tests.
	now func() time.Time
}

func New(cfg Config, src io.Reader) *Runtime {
	r := &Runtime{
		cfg:     cfg,
		src:     src,
		session: track.NewSession(cfg.TrackDir),
		sampler: track.NewSampler(cfg.SampleInterval),
		cmds:    make(chan command, 4),
		now:     time.Now,
	}
	r.last.Store(Status{})
	return r
}

// Status returns the most recently published snapshot.
func (r *Runtime) Status() Status {
	return r.last.Load().(Status)
}

// StartRecording, StopRecording and ToggleRecording enqueue edge-triggered
// commands. Wrong-state commands are no-ops inside the loop.
func (r *Runtime) StartRecording()  { r.send(cmdStart) }
func (r *Runtime) StopRecording()   { r.send(cmdStop) }
func (r *Runtime) ToggleRecording() { r.send(cmdToggle) }

func (r *Runtime) send(c command) {
	select {
	case r.cmds <- c:
	default:
		// Presses faster than the loop drains them carry no information.
		log.Printf("tracker: command dropped, queue full")
	}
}

// Run processes the byte stream until ctx is cancelled or the stream ends.
// EOF is a clean stop (replay sources end). An active session is always
// stopped before returning so the track file closes well-formed; the
// caller remains responsible for closing the source to release the reader.
func (r *Runtime) Run(ctx context.Context) error {
	chunks := make(chan []byte, 8)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := r.src.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case chunks <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	defer func() {
		if r.session.Active() {
			if err := r.session.Stop(); err != nil {
				log.Printf("tracker: closing track on shutdown: %v", err)
			} else {
				log.Printf("tracker: saved %s", r.session.LastSaved())
			}
			r.publish()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-r.cmds:
			r.handleCommand(c)
			r.publish()
		case chunk := <-chunks:
			for _, b := range chunk {
				if line, ok := r.asm.Feed(b); ok {
					r.handleLine(line)
				}
			}
			r.publish()
		case err := <-readErr:
			// The reader enqueues every chunk before reporting the error;
			// drain what is already buffered so no sentence is lost.
			r.drainChunks(chunks)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (r *Runtime) drainChunks(chunks <-chan []byte) {
	for {
		select {
		case chunk := <-chunks:
			for _, b := range chunk {
				if line, ok := r.asm.Feed(b); ok {
					r.handleLine(line)
				}
			}
			r.publish()
		default:
			return
		}
	}
}

// handleLine processes one complete sentence: fix-quality extraction,
// provider update, then the sampling decision.
func (r *Runtime) handleLine(line string) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return
	}
	if q, ok := nmea.ParseGGA(line); ok {
		r.quality = q
	}
	r.provider.Update(line)
	r.maybeAppend()
}

func (r *Runtime) maybeAppend() {
	if !r.session.Active() {
		return
	}
	now := r.now()
	if !r.sampler.ShouldEmit(now) {
		return
	}
	written, err := r.session.AppendPoint(r.provider.Snapshot(), r.quality)
	if err != nil {
		// Write failure: the session has already terminated itself. Surface
		// the error and carry on; retrying against failed media would stall
		// the loop.
		log.Printf("tracker: recording aborted: %v", err)
		r.lastErr = err.Error()
		return
	}
	if written {
		r.sampler.MarkEmitted(now)
	}
}

func (r *Runtime) handleCommand(c command) {
	switch c {
	case cmdToggle:
		if r.session.Active() {
			r.stopRecording()
		} else {
			r.startRecording()
		}
	case cmdStart:
		r.startRecording()
	case cmdStop:
		r.stopRecording()
	}
}

func (r *Runtime) startRecording() {
	err := r.session.Start(r.now(), r.provider.Snapshot())
	switch {
	case err == nil:
		r.sampler.Reset()
		r.lastErr = ""
		log.Printf("tracker: recording to %s", r.session.Path())
	case errors.Is(err, track.ErrAlreadyActive):
		// Defined no-op.
	default:
		log.Printf("tracker: start recording: %v", err)
		r.lastErr = err.Error()
	}
}

func (r *Runtime) stopRecording() {
	err := r.session.Stop()
	switch {
	case err == nil:
		log.Printf("tracker: saved %s", r.session.LastSaved())
	case errors.Is(err, track.ErrNotActive):
		// Defined no-op.
	default:
		// File is closed and Idle regardless; keep the error visible.
		log.Printf("tracker: stop recording: %v", err)
		r.lastErr = err.Error()
	}
}

func (r *Runtime) publish() {
	r.last.Store(Status{
		Quality:   r.quality,
		Position:  r.provider.Snapshot(),
		Recording: r.session.Active(),
		FilePath:  r.session.Path(),
		LastSaved: r.session.LastSaved(),
		LastError: r.lastErr,
	})
}
