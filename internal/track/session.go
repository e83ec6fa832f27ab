package track

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tracklog-ng/internal/gps"
	"tracklog-ng/internal/nmea"
)

var (
	// ErrAlreadyActive is returned by Start when a session is open.
	ErrAlreadyActive = errors.New("track: session already active")
	// ErrNotActive is returned by AppendPoint/Stop when no session is open.
	ErrNotActive = errors.New("track: no active session")
)

// Session is the recording state machine. At most one track file is open
// at a time; the file handle is owned exclusively by the session between
// Start and Stop. A fatal write failure closes the session (Active→Idle)
// rather than retrying against failed media.
type Session struct {
	dir string

	f         *os.File
	path      string
	lastSaved string
}

func NewSession(dir string) *Session {
	return &Session{dir: dir}
}

// Active reports whether a track file is open.
func (s *Session) Active() bool { return s.f != nil }

// Path returns the open track file path, or "" when Idle.
func (s *Session) Path() string { return s.path }

// LastSaved returns the path of the most recently closed track file.
func (s *Session) LastSaved() string { return s.lastSaved }

// Start opens a new track file and writes the GPX preamble.
//
// The filename is track_<YYYY>-<MM>-<DD>_<epoch>.gpx when the snapshot
// carries a valid date, track_<epoch>.gpx otherwise; epoch seconds keep
// same-day sessions from colliding. Start while Active is a defined no-op
// returning ErrAlreadyActive. On create or preamble failure the session
// stays Idle.
func (s *Session) Start(now time.Time, snap gps.Snapshot) error {
	if s.f != nil {
		return ErrAlreadyActive
	}

	var name string
	if snap.DateValid {
		name = fmt.Sprintf("track_%04d-%02d-%02d_%d.gpx", snap.Year, snap.Month, snap.Day, now.Unix())
	} else {
		name = fmt.Sprintf("track_%d.gpx", now.Unix())
	}
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("track: create %s: %w", path, err)
	}
	if _, err := f.WriteString(gpxPreamble); err != nil {
		_ = f.Close()
		return fmt.Errorf("track: write preamble: %w", err)
	}

	s.f = f
	s.path = path
	return nil
}

// AppendPoint writes one trackpoint and syncs the file so points already
// written survive an abrupt power loss. Snapshots without a valid location
// are skipped silently (written=false, nil error) so the caller's sample
// clock does not advance. A write or sync failure terminates the session.
func (s *Session) AppendPoint(snap gps.Snapshot, q nmea.FixQuality) (written bool, err error) {
	if s.f == nil {
		return false, ErrNotActive
	}
	if !snap.LocValid {
		return false, nil
	}

	if _, err := s.f.WriteString(Trackpoint(snap, q)); err != nil {
		s.fail()
		return false, fmt.Errorf("track: append point: %w", err)
	}
	if err := s.f.Sync(); err != nil {
		s.fail()
		return false, fmt.Errorf("track: sync: %w", err)
	}
	return true, nil
}

// Stop appends the closing tags, releases the file and returns to Idle.
// Stop while Idle is a defined no-op returning ErrNotActive. The session
// transitions to Idle even when the closing write fails (removed media);
// the file is then missing its footer but every point line remains valid.
func (s *Session) Stop() error {
	if s.f == nil {
		return ErrNotActive
	}

	_, werr := s.f.WriteString(gpxFooter)
	cerr := s.f.Close()
	s.lastSaved = s.path
	s.f = nil
	s.path = ""

	if werr != nil {
		return fmt.Errorf("track: write footer: %w", werr)
	}
	if cerr != nil {
		return fmt.Errorf("track: close: %w", cerr)
	}
	return nil
}

// fail releases the handle after a fatal write error. No footer is
// attempted: the same media fault would reject it, and the truncated file
// stays recoverable.
func (s *Session) fail() {
	_ = s.f.Close()
	s.lastSaved = s.path
	s.f = nil
	s.path = ""
}
