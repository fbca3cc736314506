package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return store
}

func TestOpen_CreatesMissingDatabaseDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lazyfeed", "news.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open under nonexistent directory: %v", err)
	}
	defer store.Close()

	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
}

func testConfigFeeds() []ConfigFeed {
	return []ConfigFeed{
		{GroupPath: "Tech", Title: "HN", URL: "https://hn.example/rss", SiteURL: "https://hn.example"},
		{GroupPath: "Tech > Rust", Title: "Rust Blog", URL: "https://rust.example/feed"},
		{GroupPath: "", Title: "Standalone", URL: "https://solo.example/rss"},
	}
}

func mustSync(t *testing.T, store *Store, feeds []ConfigFeed) []Feed {
	t.Helper()
	ctx := context.Background()
	if err := store.SyncFeedsFromConfig(ctx, feeds); err != nil {
		t.Fatalf("sync: %v", err)
	}
	got, err := store.GetAllFeeds(ctx)
	if err != nil {
		t.Fatalf("get feeds: %v", err)
	}
	return got
}

func TestSyncFeedsFromConfig_Idempotent(t *testing.T) {
	store := newTestStore(t)

	first := mustSync(t, store, testConfigFeeds())
	second := mustSync(t, store, testConfigFeeds())

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("feed counts: %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("resync must not reassign ids: %+v vs %+v", first[i], second[i])
		}
	}
}

func TestSyncFeedsFromConfig_RemovedFeedCascadesArticles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feeds := mustSync(t, store, testConfigFeeds())

	var hn Feed
	for _, f := range feeds {
		if f.URL == "https://hn.example/rss" {
			hn = f
		}
	}
	if _, err := store.UpsertArticles(ctx, []Article{{FeedID: hn.ID, GUID: "a1", Title: "One"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	remaining := mustSync(t, store, testConfigFeeds()[1:])
	if len(remaining) != 2 {
		t.Fatalf("expected 2 feeds after resync, got %d", len(remaining))
	}
	all, err := store.GetAllArticles(ctx)
	if err != nil {
		t.Fatalf("get articles: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("articles of a removed feed must cascade, got %+v", all)
	}
}

func TestSyncFeedsFromConfig_EmptyConfigClearsFeeds(t *testing.T) {
	store := newTestStore(t)
	mustSync(t, store, testConfigFeeds())
	if got := mustSync(t, store, nil); len(got) != 0 {
		t.Fatalf("expected no feeds, got %+v", got)
	}
}

func TestUpsertArticles_DeduplicatesOnFeedAndGUID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feeds := mustSync(t, store, testConfigFeeds())

	batch := []Article{
		{FeedID: feeds[0].ID, GUID: "g1", Title: "One"},
		{FeedID: feeds[0].ID, GUID: "g2", Title: "Two"},
	}
	inserted, err := store.UpsertArticles(ctx, batch)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("first upsert: got %d want 2", inserted)
	}

	batch = append(batch, Article{FeedID: feeds[0].ID, GUID: "g3", Title: "Three"})
	inserted, err = store.UpsertArticles(ctx, batch)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("only the new guid should insert: got %d want 1", inserted)
	}

	// Same guid under a different feed is a distinct article.
	inserted, err = store.UpsertArticles(ctx, []Article{{FeedID: feeds[1].ID, GUID: "g1", Title: "Other"}})
	if err != nil {
		t.Fatalf("cross-feed upsert: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("same guid in another feed should insert: got %d", inserted)
	}
}

func TestToggleRead_ReturnsNewValueAndUpdatesUnreadCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feeds := mustSync(t, store, testConfigFeeds())

	if _, err := store.UpsertArticles(ctx, []Article{{FeedID: feeds[0].ID, GUID: "g1", Title: "One"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	articles, err := store.GetArticlesForFeed(ctx, feeds[0].ID)
	if err != nil {
		t.Fatalf("get articles: %v", err)
	}

	isRead, err := store.ToggleRead(ctx, articles[0].ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !isRead {
		t.Fatalf("first toggle should report read")
	}
	isRead, err = store.ToggleRead(ctx, articles[0].ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if isRead {
		t.Fatalf("second toggle should report unread")
	}

	refreshed, err := store.GetAllFeeds(ctx)
	if err != nil {
		t.Fatalf("get feeds: %v", err)
	}
	for _, f := range refreshed {
		if f.ID == feeds[0].ID && f.UnreadCount != 1 {
			t.Fatalf("unread count: got %d want 1", f.UnreadCount)
		}
	}
}

func TestToggleStar(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feeds := mustSync(t, store, testConfigFeeds())
	if _, err := store.UpsertArticles(ctx, []Article{{FeedID: feeds[0].ID, GUID: "g1"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	articles, _ := store.GetArticlesForFeed(ctx, feeds[0].ID)

	starred, err := store.ToggleStar(ctx, articles[0].ID)
	if err != nil || !starred {
		t.Fatalf("toggle star: starred=%v err=%v", starred, err)
	}
}

func TestGetArticlesForGroup_ExactMatchOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feeds := mustSync(t, store, testConfigFeeds())

	byURL := map[string]Feed{}
	for _, f := range feeds {
		byURL[f.URL] = f
	}
	batch := []Article{
		{FeedID: byURL["https://hn.example/rss"].ID, GUID: "t1", Title: "Tech"},
		{FeedID: byURL["https://rust.example/feed"].ID, GUID: "r1", Title: "Rust"},
	}
	if _, err := store.UpsertArticles(ctx, batch); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.GetArticlesForGroup(ctx, "Tech")
	if err != nil {
		t.Fatalf("get for group: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Tech" {
		t.Fatalf("exact group match only: got %+v", got)
	}
}

func TestMarkGroupRead_RecursiveCoversNestedGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feeds := mustSync(t, store, testConfigFeeds())

	byURL := map[string]Feed{}
	for _, f := range feeds {
		byURL[f.URL] = f
	}
	batch := []Article{
		{FeedID: byURL["https://hn.example/rss"].ID, GUID: "t1"},
		{FeedID: byURL["https://rust.example/feed"].ID, GUID: "r1"},
		{FeedID: byURL["https://solo.example/rss"].ID, GUID: "s1"},
	}
	if _, err := store.UpsertArticles(ctx, batch); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := store.MarkGroupRead(ctx, "Tech", false); err != nil {
		t.Fatalf("mark group: %v", err)
	}
	unread := unreadByURL(t, store)
	if unread["https://hn.example/rss"] != 0 || unread["https://rust.example/feed"] != 1 {
		t.Fatalf("non-recursive mark touched the wrong feeds: %v", unread)
	}

	if err := store.MarkGroupRead(ctx, "Tech", true); err != nil {
		t.Fatalf("mark group recursive: %v", err)
	}
	unread = unreadByURL(t, store)
	if unread["https://rust.example/feed"] != 0 {
		t.Fatalf("recursive mark missed the nested group: %v", unread)
	}
	if unread["https://solo.example/rss"] != 1 {
		t.Fatalf("recursive mark leaked outside the group: %v", unread)
	}
}

func unreadByURL(t *testing.T, store *Store) map[string]int {
	t.Helper()
	feeds, err := store.GetAllFeeds(context.Background())
	if err != nil {
		t.Fatalf("get feeds: %v", err)
	}
	out := map[string]int{}
	for _, f := range feeds {
		out[f.URL] = f.UnreadCount
	}
	return out
}

func TestMarkAllRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feeds := mustSync(t, store, testConfigFeeds())
	if _, err := store.UpsertArticles(ctx, []Article{
		{FeedID: feeds[0].ID, GUID: "a"},
		{FeedID: feeds[1].ID, GUID: "b"},
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := store.MarkAllRead(ctx); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	for url, n := range unreadByURL(t, store) {
		if n != 0 {
			t.Fatalf("feed %s still has %d unread", url, n)
		}
	}
}

func TestArticles_OrderedByPublishedDescending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feeds := mustSync(t, store, testConfigFeeds())

	older := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	if _, err := store.UpsertArticles(ctx, []Article{
		{FeedID: feeds[0].ID, GUID: "old", Title: "Old", Published: &older},
		{FeedID: feeds[0].ID, GUID: "new", Title: "New", Published: &newer},
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.GetArticlesForFeed(ctx, feeds[0].ID)
	if err != nil {
		t.Fatalf("get articles: %v", err)
	}
	if got[0].GUID != "new" || got[1].GUID != "old" {
		t.Fatalf("expected newest first, got %+v", got)
	}
	if got[0].Published == nil || !got[0].Published.Equal(newer) {
		t.Fatalf("published timestamp lost: %+v", got[0].Published)
	}
}

func TestUpdateLastFetched(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	feeds := mustSync(t, store, testConfigFeeds())

	if feeds[0].LastFetched != nil {
		t.Fatalf("fresh feed should have no last_fetched")
	}
	if err := store.UpdateLastFetched(ctx, feeds[0].ID); err != nil {
		t.Fatalf("update: %v", err)
	}
	refreshed, err := store.GetAllFeeds(ctx)
	if err != nil {
		t.Fatalf("get feeds: %v", err)
	}
	for _, f := range refreshed {
		if f.ID == feeds[0].ID && f.LastFetched == nil {
			t.Fatalf("last_fetched not set")
		}
	}
}
