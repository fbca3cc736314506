package grouptree

import (
	"reflect"
	"testing"
)

func TestSplitPath(t *testing.T) {
	if got := SplitPath(""); got != nil {
		t.Fatalf("empty path should have no segments, got %v", got)
	}
	got := SplitPath("News > Sports > F1")
	want := []string{"News", "Sports", "F1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
}

func TestJoinPathRoundTrip(t *testing.T) {
	path := "Tech > Rust"
	if got := JoinPath(SplitPath(path)); got != path {
		t.Fatalf("round trip changed path: got %q", got)
	}
}

func TestLastSegment(t *testing.T) {
	if got := LastSegment("News > Sports"); got != "Sports" {
		t.Fatalf("got %q want Sports", got)
	}
	if got := LastSegment(""); got != "" {
		t.Fatalf("empty path last segment should be empty, got %q", got)
	}
}

func TestIsDescendant(t *testing.T) {
	if !IsDescendant("News > Sports", "News") {
		t.Fatalf("News > Sports should descend from News")
	}
	if IsDescendant("Newsroom", "News") {
		t.Fatalf("prefix match without separator must not count as descent")
	}
	if IsDescendant("News", "News") {
		t.Fatalf("a path is not its own descendant")
	}
}
