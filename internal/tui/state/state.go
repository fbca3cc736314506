package state

import (
	"github.com/sujaltv/lazyfeed/internal/storage"
	"github.com/sujaltv/lazyfeed/internal/tui/grouptree"
)

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}

func PageStep(height int) int {
	if height <= 0 {
		return 10
	}
	step := height / 2
	if step < 3 {
		step = 3
	}
	return step
}

func CenteredWindow(totalRows, cursor, height int) (int, int) {
	if totalRows <= 0 {
		return 0, 0
	}
	if height <= 0 || totalRows <= height {
		return 0, totalRows
	}
	cursor = ClampCursor(cursor, totalRows)
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	maxStart := totalRows - height
	if start > maxStart {
		start = maxStart
	}
	return start, start + height
}

// ReconcileFeedCursor recomputes the feeds-pane cursor after the row list
// was rebuilt. Identity wins over position: the All row reselects All, a
// feed is found again by id, a group header by full path. Only when the
// previous row has no counterpart does the old index get clamped into the
// new bounds.
func ReconcileFeedCursor(prevRows []grouptree.Row, prevCursor int, newRows []grouptree.Row) int {
	if len(newRows) == 0 {
		return 0
	}
	if prevCursor < 0 || prevCursor >= len(prevRows) {
		return ClampCursor(prevCursor, len(newRows))
	}

	prev := prevRows[prevCursor]
	switch prev.Kind {
	case grouptree.RowAll:
		for i, row := range newRows {
			if row.Kind == grouptree.RowAll {
				return i
			}
		}
	case grouptree.RowFeed:
		for i, row := range newRows {
			if row.Kind == grouptree.RowFeed && row.Feed.ID == prev.Feed.ID {
				return i
			}
		}
	case grouptree.RowGroup:
		for i, row := range newRows {
			if row.Kind == grouptree.RowGroup && row.Path == prev.Path {
				return i
			}
		}
	}
	return ClampCursor(prevCursor, len(newRows))
}

// ArticleIndexByID finds an article by identity in a freshly loaded batch.
// Returns -1 when the article is gone.
func ArticleIndexByID(articles []storage.Article, articleID int64) int {
	if articleID == 0 {
		return -1
	}
	for i, article := range articles {
		if article.ID == articleID {
			return i
		}
	}
	return -1
}
