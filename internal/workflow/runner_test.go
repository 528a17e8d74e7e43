package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"github.com/mapitman/ripsharp/internal/config"
	"github.com/mapitman/ripsharp/internal/deps"
	"github.com/mapitman/ripsharp/internal/disc"
	"github.com/mapitman/ripsharp/internal/logging"
	"github.com/mapitman/ripsharp/internal/media"
	"github.com/mapitman/ripsharp/internal/queue"
	"github.com/mapitman/ripsharp/internal/ripping"
)

type fakeScanner struct {
	result *disc.ScanResult
	err    error
}

func (f *fakeScanner) Scan(context.Context, string) (*disc.ScanResult, error) {
	return f.result, f.err
}

type fakeRipper struct {
	err   error
	calls int
}

func (f *fakeRipper) Run(_ context.Context, job *ripping.Job, _ *ripping.Estimator) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if err := os.MkdirAll(job.TempDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(job.TempDir, job.ExpectedOutputName)
	if job.ExpectedOutputName == "" {
		path = filepath.Join(job.TempDir, "title.mkv")
	}
	if err := os.WriteFile(path, []byte("ripped"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeProber struct {
	tracks []media.Track
	err    error
}

func (f *fakeProber) Inspect(context.Context, string) (media.ProbeResult, error) {
	if f.err != nil {
		return media.ProbeResult{}, f.err
	}
	result := media.ProbeResult{}
	for _, track := range f.tracks {
		stream := media.ProbeStream{Index: track.Index}
		switch track.Kind {
		case media.KindVideo:
			stream.CodecType = "video"
			stream.Width = track.Width
			stream.Height = track.Height
		case media.KindAudio:
			stream.CodecType = "audio"
			stream.Channels = track.Channels
			stream.Tags.Language = track.Language
		case media.KindSubtitle:
			stream.CodecType = "subtitle"
			stream.Tags.Language = track.Language
		}
		result.Streams = append(result.Streams, stream)
	}
	return result, nil
}

type fakeEncoder struct {
	err   error
	calls int
}

func (f *fakeEncoder) Encode(_ context.Context, input, output string, _ media.EncodeSpec) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	return os.WriteFile(output, data, 0o644)
}

type fakePlacer struct {
	dir string
	err error
}

func (f *fakePlacer) Place(path, filename string, _ bool) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	dest := filepath.Join(f.dir, filename)
	if err := os.Rename(path, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func movieScan() *disc.ScanResult {
	return &disc.ScanResult{
		DiscName: "THE_BIG_MOVIE",
		Titles: []disc.Title{
			{ID: 0, Name: "THE_BIG_MOVIE_t00.mkv", Duration: 7200, Chapters: 12, SizeBytes: 1 << 20},
			{ID: 1, Name: "extras_t01.mkv", Duration: 600, Chapters: 1, SizeBytes: 1 << 10},
		},
	}
}

func tvScan() *disc.ScanResult {
	return &disc.ScanResult{
		DiscName: "SOME_SHOW_S1D1",
		Titles: []disc.Title{
			{ID: 0, Name: "ep1_t00.mkv", Duration: 1500, Chapters: 5},
			{ID: 1, Name: "ep2_t01.mkv", Duration: 1480, Chapters: 5},
			{ID: 2, Name: "menu_t02.mkv", Duration: 90, Chapters: 1},
		},
	}
}

func englishStereoTracks() []media.Track {
	return []media.Track{
		{Index: 0, Kind: media.KindVideo, Width: 1920, Height: 1080},
		{Index: 1, Kind: media.KindAudio, Language: "eng", Channels: 2},
	}
}

type runnerFixture struct {
	runner  *Runner
	store   *queue.Store
	ripper  *fakeRipper
	encoder *fakeEncoder
}

func newTestRunner(t *testing.T, scan *disc.ScanResult) *runnerFixture {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.TempDir = filepath.Join(t.TempDir(), "tmp")
	cfg.Paths.LibraryDir = filepath.Join(t.TempDir(), "library")
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	store, err := queue.Open(t.TempDir())
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ripper := &fakeRipper{}
	encoder := &fakeEncoder{}
	libDir := filepath.Join(t.TempDir(), "final")
	if err := os.MkdirAll(libDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	runner, err := NewRunner(&cfg, logging.NewNop(), store)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	runner.scanner = &fakeScanner{result: scan}
	runner.newRipper = func(ripping.ProgressFunc) (TitleRipper, error) { return ripper, nil }
	runner.prober = &fakeProber{tracks: englishStereoTracks()}
	runner.encoder = encoder
	runner.placer = &fakePlacer{dir: libDir}
	runner.checkSpace = func(int64, string) (ripping.SpaceCheck, error) {
		return ripping.SpaceCheck{OK: true}, nil
	}
	runner.checkDeps = func() []deps.Status {
		return []deps.Status{{Name: "makemkv", Command: "makemkvcon", Available: true}}
	}
	return &runnerFixture{runner: runner, store: store, ripper: ripper, encoder: encoder}
}

func TestRunnerMovieHappyPath(t *testing.T) {
	fx := newTestRunner(t, movieScan())

	result, err := fx.runner.Run(context.Background(), Options{Year: 2001})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.SessionID == "" {
		t.Fatal("expected a session ID")
	}
	if len(result.Titles) != 1 {
		t.Fatalf("len(titles) = %d, want 1", len(result.Titles))
	}
	if result.Titles[0].Err != nil {
		t.Fatalf("title error: %v", result.Titles[0].Err)
	}
	if filepath.Base(result.Titles[0].FinalFile) != "The Big Movie (2001).mkv" {
		t.Fatalf("final file = %q", result.Titles[0].FinalFile)
	}
	if fx.ripper.calls != 1 || fx.encoder.calls != 1 {
		t.Fatalf("rips = %d encodes = %d, want 1 each", fx.ripper.calls, fx.encoder.calls)
	}

	items, err := fx.store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Status != queue.StatusCompleted {
		t.Fatalf("job status = %q, want %q", items[0].Status, queue.StatusCompleted)
	}
	if items[0].FinalFile == "" {
		t.Fatal("expected job record to carry final file")
	}
}

func TestRunnerTVSeriesEpisodeNaming(t *testing.T) {
	fx := newTestRunner(t, tvScan())

	result, err := fx.runner.Run(context.Background(),
		Options{TVSeries: true, Season: 1, Episode: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Titles) != 2 {
		t.Fatalf("len(titles) = %d, want 2", len(result.Titles))
	}
	want := []string{"Some Show S1d1 - S01E01.mkv", "Some Show S1d1 - S01E02.mkv"}
	for i, title := range result.Titles {
		if title.Err != nil {
			t.Fatalf("title %d error: %v", i, title.Err)
		}
		if filepath.Base(title.FinalFile) != want[i] {
			t.Fatalf("title %d final = %q, want %q", i, filepath.Base(title.FinalFile), want[i])
		}
	}
}

func TestRunnerTitleFailureIsolated(t *testing.T) {
	fx := newTestRunner(t, tvScan())
	invocations := 0
	fx.runner.newRipper = func(ripping.ProgressFunc) (TitleRipper, error) {
		invocations++
		if invocations == 1 {
			return &fakeRipper{err: errors.New("tray ejected")}, nil
		}
		return fx.ripper, nil
	}

	result, err := fx.runner.Run(context.Background(), Options{TVSeries: true, Season: 1, Episode: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Titles) != 2 {
		t.Fatalf("len(titles) = %d, want 2", len(result.Titles))
	}
	if result.Titles[0].Err == nil {
		t.Fatal("expected first title to fail")
	}
	if result.Titles[1].Err != nil {
		t.Fatalf("second title: %v", result.Titles[1].Err)
	}
	if result.Failed() != 1 {
		t.Fatalf("Failed() = %d, want 1", result.Failed())
	}

	items, err := fx.store.List(context.Background(), queue.StatusFailed)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("failed jobs = %d, want 1", len(items))
	}
	if items[0].ErrorMessage == "" {
		t.Fatal("expected failure message on job record")
	}
}

func TestRunnerLowSpaceWarnsButProceeds(t *testing.T) {
	fx := newTestRunner(t, movieScan())
	fx.runner.checkSpace = func(estimatedBytes int64, _ string) (ripping.SpaceCheck, error) {
		required := uint64(estimatedBytes) * 2
		return ripping.SpaceCheck{
			RequiredBytes:  required,
			FreeBytes:      required / 2,
			ShortfallBytes: required / 2,
		}, nil
	}

	result, err := fx.runner.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Titles) != 1 || result.Titles[0].Err != nil {
		t.Fatalf("expected the rip to proceed despite the shortfall, got %+v", result.Titles)
	}
	if fx.ripper.calls != 1 {
		t.Fatalf("rip attempts = %d, want 1", fx.ripper.calls)
	}
}

func TestRunnerMissingDependencies(t *testing.T) {
	fx := newTestRunner(t, movieScan())
	fx.runner.checkDeps = func() []deps.Status {
		return []deps.Status{{Name: "makemkv", Command: "makemkvcon", Available: false}}
	}

	if _, err := fx.runner.Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}

func TestRunnerNoSelectableTitles(t *testing.T) {
	scan := &disc.ScanResult{
		DiscName: "EMPTY",
		Titles:   []disc.Title{{ID: 0, Duration: 120, Chapters: 1}},
	}
	fx := newTestRunner(t, scan)

	if _, err := fx.runner.Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected error when nothing is selectable")
	}
}

func TestRunnerSecondInstanceRefused(t *testing.T) {
	fx := newTestRunner(t, movieScan())

	// Hold the session lock the way a concurrent run would.
	if err := os.MkdirAll(fx.runner.cfg.Paths.TempDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	lock := flock.New(filepath.Join(fx.runner.cfg.Paths.TempDir, "ripsharp.lock"))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock: locked=%v err=%v", locked, err)
	}
	defer lock.Unlock()

	if _, err := fx.runner.Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected error while another session holds the lock")
	}
	if fx.ripper.calls != 0 {
		t.Fatalf("rip attempts = %d, want 0", fx.ripper.calls)
	}
}
