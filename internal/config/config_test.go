package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

const sampleYAML = `
refresh_every: 120
refresh_on_start: false
feeds:
  - title: Standalone
    url: https://solo.example
    feed: https://solo.example/rss
  - title: Tech
    feeds:
      - title: HN
        url: https://news.ycombinator.com
        feed: https://news.ycombinator.com/rss
      - title: Rust
        feeds:
          - title: Rust Blog
            url: https://blog.rust-lang.org
            feed: https://blog.rust-lang.org/feed.xml
  - title: Empty Corner
    feeds: []
`

func TestFeedItem_UnionDiscriminatedByFeedsKey(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(sampleYAML), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.Feeds[0].Feed == nil || cfg.Feeds[0].Group != nil {
		t.Fatalf("first item should be a feed: %+v", cfg.Feeds[0])
	}
	if cfg.Feeds[1].Group == nil {
		t.Fatalf("second item should be a group: %+v", cfg.Feeds[1])
	}
	// A group with an explicitly empty feeds list stays a group.
	if cfg.Feeds[2].Group == nil || len(cfg.Feeds[2].Group.Feeds) != 0 {
		t.Fatalf("empty group mis-decoded: %+v", cfg.Feeds[2])
	}
}

func TestFeedItem_MarshalRoundTrip(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(sampleYAML), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := yaml.Marshal(cfg.Feeds)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again []FeedItem
	if err := yaml.Unmarshal(out, &again); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if !reflect.DeepEqual(cfg.Feeds, again) {
		t.Fatalf("round trip changed the tree:\nbefore=%+v\nafter=%+v", cfg.Feeds, again)
	}
}

func TestCollectFeeds_PathsAndOrder(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(sampleYAML), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	flat := cfg.CollectFeeds()

	gotPaths := make([]string, len(flat))
	for i, f := range flat {
		gotPaths[i] = f.GroupPath
	}
	wantPaths := []string{"", "Tech", "Tech > Rust"}
	if !reflect.DeepEqual(gotPaths, wantPaths) {
		t.Fatalf("paths: got=%v want=%v", gotPaths, wantPaths)
	}
	if flat[2].Source.FetchURL() != "https://blog.rust-lang.org/feed.xml" {
		t.Fatalf("fetch URL should prefer the feed field, got %q", flat[2].Source.FetchURL())
	}
}

func TestCollectEmptyGroups(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(sampleYAML), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := cfg.CollectEmptyGroups()
	want := []string{"Empty Corner"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.RefreshEvery != 300 || !cfg.RefreshOnStart {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if len(cfg.Keybindings.Global.Quit) == 0 {
		t.Fatalf("default keybindings missing")
	}
}

func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("refresh_every: 60\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RefreshEvery != 60 {
		t.Fatalf("explicit value lost: %d", cfg.RefreshEvery)
	}
	if cfg.Display.Columns.FeedsList != 25 {
		t.Fatalf("column defaults lost: %+v", cfg.Display.Columns)
	}
}

func TestSaveFeeds_PreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "refresh_every: 77\nfeeds:\n  - title: Old\n    url: https://old.example\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	InsertFeed(&cfg.Feeds, "", FeedSource{Title: "New", URL: "https://new.example"})
	if err := cfg.SaveFeeds(path); err != nil {
		t.Fatalf("save feeds: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.RefreshEvery != 77 {
		t.Fatalf("unrelated key clobbered: %d", reloaded.RefreshEvery)
	}
	if len(reloaded.Feeds) != 2 {
		t.Fatalf("feeds not persisted: %+v", reloaded.Feeds)
	}
}

func TestPath_EnvOverride(t *testing.T) {
	t.Setenv("LAZYFEED_CONFIG", "/tmp/custom.yaml")
	got, err := Path()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if got != "/tmp/custom.yaml" {
		t.Fatalf("got %q", got)
	}
}
