package article

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestText_ParagraphsSeparatedByBlankLine(t *testing.T) {
	got := Text("<p>First paragraph.</p><p>Second paragraph.</p>", 80)
	want := "First paragraph.\n\nSecond paragraph."
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestText_DropsScriptsAndStyles(t *testing.T) {
	got := Text(`<p>Visible</p><script>alert("x")</script><style>p{}</style>`, 80)
	if strings.Contains(got, "alert") || strings.Contains(got, "p{}") {
		t.Fatalf("script or style leaked into output: %q", got)
	}
	if !strings.Contains(got, "Visible") {
		t.Fatalf("text content lost: %q", got)
	}
}

func TestText_ListItemsGetBullets(t *testing.T) {
	got := Text("<ul><li>one</li><li>two</li></ul>", 80)
	if !strings.Contains(got, "- one") || !strings.Contains(got, "- two") {
		t.Fatalf("list items not bulleted: %q", got)
	}
}

func TestText_ImagesBecomePlaceholders(t *testing.T) {
	got := Text(`<p><img src="x.png" alt="diagram"> and <img src="y.png"></p>`, 80)
	if !strings.Contains(got, "[image: diagram]") {
		t.Fatalf("alt text placeholder missing: %q", got)
	}
	if !strings.Contains(got, "[image]") {
		t.Fatalf("bare image placeholder missing: %q", got)
	}
}

func TestText_OverlongWordsBreakOnRuneBoundaries(t *testing.T) {
	word := strings.Repeat("ü", 30)
	got := Text("<p>"+word+"</p>", 10)

	if !utf8.ValidString(got) {
		t.Fatalf("output contains invalid UTF-8: %q", got)
	}
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines of 10 runes, got %d: %q", len(lines), got)
	}
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n != 10 {
			t.Fatalf("line has %d runes, want 10: %q", n, line)
		}
	}
}

func TestText_WrapsAtWidth(t *testing.T) {
	got := Text("<p>"+strings.Repeat("word ", 40)+"</p>", 20)
	for _, line := range strings.Split(got, "\n") {
		if len(line) > 20 {
			t.Fatalf("line exceeds width: %q", line)
		}
	}
}

func TestText_BreakTagsKeptWithinParagraph(t *testing.T) {
	got := Text("<p>line one<br>line two</p>", 80)
	if !strings.Contains(got, "line one\nline two") {
		t.Fatalf("br not preserved: %q", got)
	}
}

func TestText_EmptyInput(t *testing.T) {
	if got := Text("", 80); got != "" {
		t.Fatalf("empty input should render empty, got %q", got)
	}
	if got := Text("   \n  ", 80); got != "" {
		t.Fatalf("whitespace input should render empty, got %q", got)
	}
}

func TestText_PlainTextPassesThrough(t *testing.T) {
	got := Text("Just plain text, no markup.", 80)
	if got != "Just plain text, no markup." {
		t.Fatalf("got %q", got)
	}
}

func TestDocument_HeaderBlock(t *testing.T) {
	got := Document("<p>Body text.</p>", Meta{
		Title:     "A Title",
		Author:    "Alice",
		Published: "2026-02-01",
	}, 80)

	want := "A Title\nBy Alice\n2026-02-01\n\n---\n\nBody text."
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestDocument_OmitsMissingMetaLines(t *testing.T) {
	got := Document("<p>Body.</p>", Meta{Title: "Only Title"}, 80)
	if strings.Contains(got, "By ") {
		t.Fatalf("author line should be absent: %q", got)
	}
	if !strings.HasPrefix(got, "Only Title\n\n---\n\n") {
		t.Fatalf("unexpected header: %q", got)
	}
}
