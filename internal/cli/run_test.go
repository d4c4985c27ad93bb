package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/course-events/internal/config"
	"github.com/pfrederiksen/course-events/internal/notifier"
	"github.com/pfrederiksen/course-events/internal/storage"
)

const testPage = `<html><body>
<article>
  <h5 class="headline">AI Summer School</h5>
  <time datetime="2026-06-01">1 June 2026</time>
  <p><a class="register" href="/courses/ai/register">Register</a></p>
</article>
<article>
  <h5 class="headline">Data Ethics Workshop</h5>
  <span class="date">15 July 2026</span>
  <p><a class="register" href="/courses/ethics/register">Register</a></p>
</article>
</body></html>`

func testConfig(t *testing.T, pageURL string) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := config.Default()
	cfg.TargetURL = pageURL
	cfg.RegLinkSelector = "a.register"
	cfg.TitleSelector = "h5.headline"
	cfg.DateSelector = "time, .date"
	cfg.StateFile = filepath.Join(tmpDir, "seen.json")
	cfg.FeedFile = filepath.Join(tmpDir, "feed.xml")
	cfg.TimeoutSeconds = 2
	return cfg
}

func pageServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testPage))
	}))
}

func TestRunOnce_DetectsAndPersists(t *testing.T) {
	server := pageServer(t)
	defer server.Close()

	cfg := testConfig(t, server.URL)
	result, err := runOnce(cfg, nil)
	if err != nil {
		t.Fatalf("runOnce() failed: %v", err)
	}

	if result.NewCount != 2 {
		t.Fatalf("expected 2 new events, got %d", result.NewCount)
	}
	if result.TotalKnown != 2 {
		t.Errorf("expected 2 known events, got %d", result.TotalKnown)
	}

	store, err := storage.Load(cfg.StateFile)
	if err != nil {
		t.Fatalf("loading persisted state: %v", err)
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 events in state file, got %d", store.Len())
	}

	feedData, err := os.ReadFile(cfg.FeedFile)
	if err != nil {
		t.Fatalf("reading feed file: %v", err)
	}
	for _, want := range []string{"<rss", "AI Summer School", "Data Ethics Workshop"} {
		if !strings.Contains(string(feedData), want) {
			t.Errorf("feed missing %q", want)
		}
	}
}

func TestRunOnce_SecondRunFindsNothingNew(t *testing.T) {
	server := pageServer(t)
	defer server.Close()

	cfg := testConfig(t, server.URL)
	if _, err := runOnce(cfg, nil); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	stateBefore, err := os.ReadFile(cfg.StateFile)
	if err != nil {
		t.Fatalf("reading state: %v", err)
	}

	result, err := runOnce(cfg, nil)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if result.NewCount != 0 {
		t.Errorf("expected 0 new events on second run, got %d", result.NewCount)
	}
	if result.TotalKnown != 2 {
		t.Errorf("expected store to still hold 2 events, got %d", result.TotalKnown)
	}

	stateAfter, err := os.ReadFile(cfg.StateFile)
	if err != nil {
		t.Fatalf("rereading state: %v", err)
	}
	if !bytes.Equal(stateBefore, stateAfter) {
		t.Error("state file bytes changed across a zero-new-events run")
	}
}

func TestRunOnce_FetchFailureLeavesNoTrace(t *testing.T) {
	server := pageServer(t)
	cfg := testConfig(t, server.URL)

	// Seed state and feed with a successful run
	if _, err := runOnce(cfg, nil); err != nil {
		t.Fatalf("seed run failed: %v", err)
	}
	stateBefore, err := os.ReadFile(cfg.StateFile)
	if err != nil {
		t.Fatalf("reading state: %v", err)
	}
	feedBefore, err := os.ReadFile(cfg.FeedFile)
	if err != nil {
		t.Fatalf("reading feed: %v", err)
	}

	// Server goes away; the fetch must fail and mutate nothing
	server.Close()
	if _, err := runOnce(cfg, nil); err == nil {
		t.Fatal("expected error when fetch fails, got nil")
	}

	stateAfter, _ := os.ReadFile(cfg.StateFile)
	feedAfter, _ := os.ReadFile(cfg.FeedFile)
	if !bytes.Equal(stateBefore, stateAfter) {
		t.Error("state file changed despite fetch failure")
	}
	if !bytes.Equal(feedBefore, feedAfter) {
		t.Error("feed file changed despite fetch failure")
	}
}

func TestRunOnce_PersistenceFailureIsTerminal(t *testing.T) {
	server := pageServer(t)
	defer server.Close()

	cfg := testConfig(t, server.URL)
	cfg.StateFile = filepath.Join(t.TempDir(), "missing", "deeper", "seen.json")

	if _, err := runOnce(cfg, nil); err == nil {
		t.Error("expected error when state file is unwritable, got nil")
	}
}

func TestRunOnce_WebhookFailureDoesNotBlockPersistence(t *testing.T) {
	server := pageServer(t)
	defer server.Close()

	// Webhook that rejects everything
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rejected", http.StatusBadGateway)
	}))
	defer webhook.Close()

	cfg := testConfig(t, server.URL)
	n, err := notifier.NewWebhookNotifier(webhook.URL, time.Second)
	if err != nil {
		t.Fatalf("creating notifier: %v", err)
	}

	result, err := runOnce(cfg, n)
	if err != nil {
		t.Fatalf("runOnce() failed despite best-effort notifier: %v", err)
	}
	if result.NewCount != 2 {
		t.Fatalf("expected 2 new events, got %d", result.NewCount)
	}

	store, err := storage.Load(cfg.StateFile)
	if err != nil {
		t.Fatalf("loading state: %v", err)
	}
	if store.Len() != 2 {
		t.Errorf("expected both events persisted despite webhook failures, got %d", store.Len())
	}
	if _, err := os.Stat(cfg.FeedFile); err != nil {
		t.Errorf("expected feed file to exist: %v", err)
	}
}

func TestRunOnce_NotifiesOnlyNewEvents(t *testing.T) {
	server := pageServer(t)
	defer server.Close()

	var deliveries int
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deliveries++
	}))
	defer webhook.Close()

	cfg := testConfig(t, server.URL)
	n, err := notifier.NewWebhookNotifier(webhook.URL, time.Second)
	if err != nil {
		t.Fatalf("creating notifier: %v", err)
	}

	if _, err := runOnce(cfg, n); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if deliveries != 2 {
		t.Fatalf("expected 2 deliveries on first run, got %d", deliveries)
	}

	if _, err := runOnce(cfg, n); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if deliveries != 2 {
		t.Errorf("expected no deliveries on second run, still got %d total", deliveries)
	}
}
