package tracker

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func nmeaLine(payload string) string {
	ck := byte(0)
	for i := 0; i < len(payload); i++ {
		ck ^= payload[i]
	}
	return fmt.Sprintf("$%s*%02X", payload, ck)
}

func rmcAt(hhmmss string) string {
	return nmeaLine("GPRMC," + hhmmss + ",A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W")
}

func ggaAt(hhmmss string) string {
	return nmeaLine("GPGGA," + hhmmss + ",4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")
}

func newTestRuntime(t *testing.T, dir string) (*Runtime, *time.Time) {
	t.Helper()
	r := New(Config{TrackDir: dir, SampleInterval: 3 * time.Second}, strings.NewReader(""))
	clock := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }
	return r, &clock
}

func countTrackpoints(t *testing.T, dir string) (string, int) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("files=%v want exactly one", names)
	}
	path := filepath.Join(dir, entries[0].Name())
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	return path, strings.Count(string(b), "<trkpt ")
}

func TestRuntime_NoPointsWhileIdle(t *testing.T) {
	dir := t.TempDir()
	r, _ := newTestRuntime(t, dir)

	r.handleLine(ggaAt("120000"))
	r.handleLine(rmcAt("120000"))

	r.publish()
	st := r.Status()
	if !st.Position.LocValid {
		t.Fatalf("expected valid position from the stream")
	}
	if st.Recording {
		t.Fatalf("expected Idle")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no track file while idle")
	}
}

func TestRuntime_RecordCycleSamplesAtInterval(t *testing.T) {
	dir := t.TempDir()
	r, clock := newTestRuntime(t, dir)

	r.handleLine(ggaAt("120000"))
	r.handleLine(rmcAt("120000"))

	r.handleCommand(cmdToggle)
	r.publish()
	if st := r.Status(); !st.Recording || st.FilePath == "" {
		t.Fatalf("expected active recording, got %+v", st)
	}

	// First point is written immediately after the session opens.
	r.handleLine(rmcAt("120001"))
	if _, n := countTrackpoints(t, dir); n != 1 {
		t.Fatalf("points=%d want 1", n)
	}

	// Within the 3s window: sentences arrive, no new point.
	*clock = clock.Add(time.Second)
	r.handleLine(rmcAt("120002"))
	r.handleLine(ggaAt("120002"))
	if _, n := countTrackpoints(t, dir); n != 1 {
		t.Fatalf("points=%d want still 1 inside the window", n)
	}

	// Past the window: one more point.
	*clock = clock.Add(3 * time.Second)
	r.handleLine(rmcAt("120005"))
	if _, n := countTrackpoints(t, dir); n != 2 {
		t.Fatalf("points=%d want 2", n)
	}

	r.handleCommand(cmdToggle)
	r.publish()
	st := r.Status()
	if st.Recording {
		t.Fatalf("expected Idle after toggle")
	}
	if st.LastSaved == "" {
		t.Fatalf("expected LastSaved to be set")
	}

	b, err := os.ReadFile(st.LastSaved)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	var doc struct {
		XMLName xml.Name `xml:"gpx"`
	}
	if err := xml.Unmarshal(b, &doc); err != nil {
		t.Fatalf("closed track is not well-formed XML: %v\n%s", err, b)
	}
}

func TestRuntime_InvalidFixNotWritten(t *testing.T) {
	dir := t.TempDir()
	r, _ := newTestRuntime(t, dir)

	r.handleCommand(cmdStart)
	// Only a void fix arrives; the due sample must be skipped.
	r.handleLine(nmeaLine("GPRMC,120000,V,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"))
	if _, n := countTrackpoints(t, dir); n != 0 {
		t.Fatalf("points=%d want 0 without a valid location", n)
	}
}

func TestRuntime_WrongStateCommandsAreNoOps(t *testing.T) {
	dir := t.TempDir()
	r, _ := newTestRuntime(t, dir)

	r.handleCommand(cmdStop) // stop with nothing active
	r.publish()
	if st := r.Status(); st.Recording || st.LastError != "" {
		t.Fatalf("expected clean idle status, got %+v", st)
	}

	r.handleCommand(cmdStart)
	r.handleCommand(cmdStart) // start while active
	r.publish()
	if st := r.Status(); !st.Recording || st.LastError != "" {
		t.Fatalf("expected single active session, got %+v", st)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("files=%d want 1", len(entries))
	}
}

func TestRuntime_StartFailureSurfacesError(t *testing.T) {
	r, _ := newTestRuntime(t, filepath.Join(t.TempDir(), "missing"))
	r.handleCommand(cmdStart)
	r.publish()
	st := r.Status()
	if st.Recording {
		t.Fatalf("expected Idle after failed start")
	}
	if st.LastError == "" {
		t.Fatalf("expected a visible error")
	}
}

func TestRuntime_RunProcessesStreamAndStopsOnEOF(t *testing.T) {
	dir := t.TempDir()
	r := New(Config{TrackDir: dir}, strings.NewReader(ggaAt("120000")+"\r\n"+rmcAt("120000")+"\r\n"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	st := r.Status()
	if !st.Position.LocValid || st.Quality.Quality != 1 {
		t.Fatalf("expected stream to update status, got %+v", st)
	}
}

func TestRuntime_RunClosesTrackOnShutdown(t *testing.T) {
	dir := t.TempDir()
	pr, pw := io.Pipe()
	r := New(Config{TrackDir: dir}, pr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	r.StartRecording()
	waitFor(t, func() bool { return r.Status().Recording })

	if _, err := io.WriteString(pw, ggaAt("120000")+"\r\n"+rmcAt("120000")+"\r\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, func() bool {
		_, n := quietCountTrackpoints(dir)
		return n >= 1
	})

	// EOF ends the run; the active session must be closed well-formed.
	_ = pw.Close()
	if err := <-done; err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	st := r.Status()
	if st.Recording {
		t.Fatalf("expected session closed on shutdown")
	}
	b, err := os.ReadFile(st.LastSaved)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(string(b)), "</trkseg></trk></gpx>") {
		t.Fatalf("expected closing tags, got:\n%s", b)
	}
}

func quietCountTrackpoints(dir string) (string, int) {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		return "", 0
	}
	path := filepath.Join(dir, entries[0].Name())
	b, err := os.ReadFile(path)
	if err != nil {
		return path, 0
	}
	return path, strings.Count(string(b), "<trkpt ")
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
