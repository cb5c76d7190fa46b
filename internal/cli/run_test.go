package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/civiclab/qualsync/internal/config"
	"github.com/civiclab/qualsync/internal/fault"
)

// fakeExportClient serves a canned archive without touching the network.
type fakeExportClient struct {
	archive []byte
	fail    error
}

func (f *fakeExportClient) StartExport(ctx context.Context) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	return "PG_1", nil
}

func (f *fakeExportClient) AwaitCompletion(ctx context.Context, progressID string) (string, error) {
	return "FILE_1", nil
}

func (f *fakeExportClient) FetchArchive(ctx context.Context, fileID string) ([]byte, error) {
	return f.archive, nil
}

func exportArchive(t *testing.T, csvContent string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("responses.csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(csvContent)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		BaseURL:  "https://example.test",
		APIToken: "tok",
		SurveyID: "SV_1",
		Columns: config.Columns{
			Title:          "Title",
			Body:           "Body",
			ResponseID:     "ResponseId",
			Published:      "Finished",
			RecordedDate:   "RecordedDate",
			PublishedValue: "1",
		},
		NamingStrategy: config.StrategyToken,
		EncryptionKey:  "0123456789abcdef",
		PetitionsDir:   dir,
		PollInterval:   time.Millisecond,
		PollTimeout:    time.Second,
	}
}

// install wires a fake runtime and resets command state between executions.
func install(t *testing.T, cfg *config.Config, client ExportClient) {
	t.Helper()
	prev := Bootstrap
	Bootstrap = func() (*Runtime, error) {
		return &Runtime{Cfg: cfg, Client: client}, nil
	}
	t.Cleanup(func() {
		Bootstrap = prev
		runDryRun = false
	})
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	runDryRun = false
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

const sampleCSV = "Title,Body,ResponseId,Finished,RecordedDate\n" +
	"Fix Potholes,Please fix.,R_1,1,2024-01-01\n" +
	"Draft,not done,R_2,0,2024-01-02\n"

func TestRunCommand_SyncsPetitions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "_petitions")
	install(t, testConfig(dir), &fakeExportClient{archive: exportArchive(t, sampleCSV)})

	if err := execute(t, "run"); err != nil {
		t.Fatalf("run: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 petition, found %d", len(entries))
	}
}

func TestRunCommand_SecondRunIsNoOp(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "_petitions")
	install(t, testConfig(dir), &fakeExportClient{archive: exportArchive(t, sampleCSV)})

	if err := execute(t, "run"); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(petitionPath(t, dir))
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(petitionPath(t, dir))
	if err != nil {
		t.Fatal(err)
	}

	if err := execute(t, "run"); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(petitionPath(t, dir))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("document content changed on an unchanged second run")
	}
	info2, err := os.Stat(petitionPath(t, dir))
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(info2.ModTime()) {
		t.Error("document rewritten on an unchanged second run")
	}
}

func TestRunCommand_DryRunWritesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "_petitions")
	install(t, testConfig(dir), &fakeExportClient{archive: exportArchive(t, sampleCSV)})

	if err := execute(t, "run", "--dry-run"); err != nil {
		t.Fatalf("run --dry-run: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dry run wrote %d file(s)", len(entries))
	}
}

func TestRunCommand_RemoteFailurePropagates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "_petitions")
	failure := &fault.RemoteError{URL: "https://example.test", Detail: "boom"}
	install(t, testConfig(dir), &fakeExportClient{fail: failure})

	err := execute(t, "run")
	var remoteErr *fault.RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("error = %v, want *fault.RemoteError", err)
	}
}

func TestRunCommand_MissingColumnAborts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "_petitions")
	// The export lacks the configured Body column entirely.
	csv := "Title,ResponseId,Finished,RecordedDate\nT,R_1,1,d\n"
	install(t, testConfig(dir), &fakeExportClient{archive: exportArchive(t, csv)})

	err := execute(t, "run")
	var cfgErr *fault.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *fault.ConfigError", err)
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Errorf("no row may be processed after a column error, found %d file(s)", len(entries))
	}
}

func petitionPath(t *testing.T, dir string) string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 petition, found %d", len(entries))
	}
	return filepath.Join(dir, entries[0].Name())
}
