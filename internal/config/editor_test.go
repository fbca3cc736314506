package config

import (
	"reflect"
	"testing"
)

func sampleTree() []FeedItem {
	return []FeedItem{
		{Feed: &FeedSource{Title: "Standalone", URL: "https://solo.example", Feed: "https://solo.example/rss"}},
		{Group: &FeedGroup{Title: "Tech", Feeds: []FeedItem{
			{Feed: &FeedSource{Title: "HN", URL: "https://news.ycombinator.com", Feed: "https://news.ycombinator.com/rss"}},
			{Group: &FeedGroup{Title: "Rust", Feeds: []FeedItem{
				{Feed: &FeedSource{Title: "Rust Blog", URL: "https://blog.rust-lang.org", Feed: "https://blog.rust-lang.org/feed.xml"}},
			}}},
		}}},
		{Group: &FeedGroup{Title: "News", Feeds: []FeedItem{}}},
	}
}

func TestInsertGroup_CreatesNestedSegmentsIdempotently(t *testing.T) {
	items := sampleTree()
	InsertGroup(&items, "Tech > Go")
	InsertGroup(&items, "Tech > Go")

	group, ok := FindGroup(items, "Tech > Go")
	if !ok {
		t.Fatalf("Tech > Go not created")
	}
	if len(group.Feeds) != 0 {
		t.Fatalf("new group should be empty, got %+v", group.Feeds)
	}
	tech, _ := FindGroup(items, "Tech")
	count := 0
	for _, item := range tech.Feeds {
		if item.Group != nil && item.Group.Title == "Go" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("duplicate insert must be a no-op, found %d Go groups", count)
	}
}

func TestRemoveFeed_MatchesOnlyFeedURLField(t *testing.T) {
	items := sampleTree()

	// The display URL never matches.
	if RemoveFeed(&items, "https://news.ycombinator.com") {
		t.Fatalf("display URL must not match")
	}
	if !RemoveFeed(&items, "https://news.ycombinator.com/rss") {
		t.Fatalf("feed URL should match")
	}
	if _, ok := ExtractFeed(&items, "https://news.ycombinator.com/rss"); ok {
		t.Fatalf("feed should be gone after removal")
	}
}

func TestRemoveFeed_EmptiedGroupIsNotPruned(t *testing.T) {
	items := sampleTree()
	if !RemoveFeed(&items, "https://blog.rust-lang.org/feed.xml") {
		t.Fatalf("removal failed")
	}
	group, ok := FindGroup(items, "Tech > Rust")
	if !ok {
		t.Fatalf("emptied group must remain in the tree")
	}
	if len(group.Feeds) != 0 {
		t.Fatalf("group should be empty, got %+v", group.Feeds)
	}
}

func TestCutPasteGroup_RoundTripRestoresContent(t *testing.T) {
	items := sampleTree()
	original, ok := FindGroup(items, "Tech > Rust")
	if !ok {
		t.Fatalf("sample tree missing Tech > Rust")
	}
	want := CloneItems(original.Feeds)

	cut, ok := ExtractGroup(&items, "Tech > Rust")
	if !ok {
		t.Fatalf("extract failed")
	}
	if _, ok := FindGroup(items, "Tech > Rust"); ok {
		t.Fatalf("group still present after cut")
	}

	// Paste at the root.
	PasteGroup(&items, "", cut)
	pasted, ok := FindGroup(items, "Rust")
	if !ok {
		t.Fatalf("pasted group not found at root")
	}
	if !reflect.DeepEqual(pasted.Feeds, want) {
		t.Fatalf("paste lost content: got=%+v want=%+v", pasted.Feeds, want)
	}
}

func TestPasteGroup_RecreatesMissingParentHierarchy(t *testing.T) {
	items := sampleTree()
	cut, _ := ExtractGroup(&items, "Tech > Rust")
	RemoveGroup(&items, "Tech")

	PasteGroup(&items, "Tech > Languages", cut)
	if _, ok := FindGroup(items, "Tech > Languages > Rust"); !ok {
		t.Fatalf("parent hierarchy not recreated")
	}
}

func TestUpdateFeed_MatchesDisplayOrFeedURL(t *testing.T) {
	items := sampleTree()
	updated := FeedSource{Title: "Hacker News", URL: "https://hn.example", Feed: "https://hn.example/rss"}

	if !UpdateFeed(&items, "https://news.ycombinator.com", updated) {
		t.Fatalf("update by display URL failed")
	}
	got, ok := FindFeed(items, "https://hn.example/rss")
	if !ok || got.Title != "Hacker News" {
		t.Fatalf("updated feed not found: %+v ok=%v", got, ok)
	}

	if !UpdateFeed(&items, "https://hn.example/rss", FeedSource{Title: "HN2", URL: "https://hn.example"}) {
		t.Fatalf("update by feed URL failed")
	}
}

func TestRemoveGroup_WholesaleIncludingNested(t *testing.T) {
	items := sampleTree()
	if !RemoveGroup(&items, "Tech") {
		t.Fatalf("remove failed")
	}
	if _, ok := FindGroup(items, "Tech"); ok {
		t.Fatalf("Tech still present")
	}
	if _, ok := FindFeed(items, "https://blog.rust-lang.org/feed.xml"); ok {
		t.Fatalf("nested feed should be gone with its group")
	}
	// Siblings untouched.
	if _, ok := FindGroup(items, "News"); !ok {
		t.Fatalf("sibling group lost")
	}
}

func TestRenameGroup(t *testing.T) {
	items := sampleTree()
	if !RenameGroup(&items, "Tech > Rust", "Rustlang") {
		t.Fatalf("rename failed")
	}
	if _, ok := FindGroup(items, "Tech > Rustlang"); !ok {
		t.Fatalf("renamed group not found")
	}
}

func TestCloneItems_IsADeepCopy(t *testing.T) {
	items := sampleTree()
	snapshot := CloneItems(items)

	RemoveGroup(&items, "Tech")
	items[0].Feed.Title = "mutated"

	if _, ok := FindGroup(snapshot, "Tech > Rust"); !ok {
		t.Fatalf("snapshot lost a group after mutating the original")
	}
	if snapshot[0].Feed.Title != "Standalone" {
		t.Fatalf("snapshot shares feed pointers with the original")
	}
}
