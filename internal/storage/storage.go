package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Feed is a row of the feeds table. GroupPath is empty for standalone feeds.
// UnreadCount is derived on every read, never stored.
type Feed struct {
	ID          int64
	GroupPath   string
	Title       string
	URL         string
	SiteURL     string
	LastFetched *time.Time
	UnreadCount int
}

// Article is a row of the articles table, scoped to one feed and
// de-duplicated on (feed_id, guid).
type Article struct {
	ID        int64
	FeedID    int64
	GUID      string
	Title     string
	URL       string
	Author    string
	Summary   string
	Content   string
	Published *time.Time
	IsRead    bool
	IsStarred bool
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS feeds (
  id            INTEGER PRIMARY KEY AUTOINCREMENT,
  group_title   TEXT NOT NULL,
  title         TEXT NOT NULL,
  url           TEXT NOT NULL UNIQUE,
  site_url      TEXT,
  last_fetched  TEXT
);

CREATE TABLE IF NOT EXISTS articles (
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  feed_id     INTEGER NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
  guid        TEXT NOT NULL,
  title       TEXT NOT NULL DEFAULT '',
  url         TEXT,
  author      TEXT,
  summary     TEXT,
  content     TEXT,
  published   TEXT,
  is_read     INTEGER NOT NULL DEFAULT 0,
  is_starred  INTEGER NOT NULL DEFAULT 0,
  created_at  TEXT NOT NULL DEFAULT (datetime('now')),
  UNIQUE(feed_id, guid)
);

CREATE INDEX IF NOT EXISTS idx_articles_feed_id ON articles(feed_id);
CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published);
CREATE INDEX IF NOT EXISTS idx_articles_feed_id_is_read ON articles(feed_id, is_read);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// ConfigFeed is one flattened feed from the configuration, as consumed by
// SyncFeedsFromConfig. URL is the fetchable feed URL (the unique key) and
// SiteURL the human-facing page.
type ConfigFeed struct {
	GroupPath string
	Title     string
	URL       string
	SiteURL   string
}

// SyncFeedsFromConfig reconciles the feeds table with the configuration's
// flattened feed list. Feeds absent from the config are deleted (their
// articles cascade), the rest are upserted keyed on url. Idempotent.
func (s *Store) SyncFeedsFromConfig(ctx context.Context, feeds []ConfigFeed) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if len(feeds) == 0 {
		if _, err := tx.ExecContext(ctx, "DELETE FROM feeds"); err != nil {
			return fmt.Errorf("delete all feeds: %w", err)
		}
		return tx.Commit()
	}

	placeholders := "?"
	args := []any{feeds[0].URL}
	for _, f := range feeds[1:] {
		placeholders += ",?"
		args = append(args, f.URL)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM feeds WHERE url NOT IN ("+placeholders+")", args...); err != nil {
		return fmt.Errorf("delete stale feeds: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO feeds (group_title, title, url, site_url) VALUES (?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
  group_title=excluded.group_title,
  title=excluded.title,
  site_url=excluded.site_url
`)
	if err != nil {
		return fmt.Errorf("prepare feed upsert: %w", err)
	}
	defer stmt.Close()

	for _, f := range feeds {
		if _, err := stmt.ExecContext(ctx, f.GroupPath, f.Title, f.URL, f.SiteURL); err != nil {
			return fmt.Errorf("upsert feed %q: %w", f.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAllFeeds returns every feed ordered by group path then title, with the
// unread article count computed per feed.
func (s *Store) GetAllFeeds(ctx context.Context) ([]Feed, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT
  feeds.id,
  feeds.group_title,
  feeds.title,
  feeds.url,
  COALESCE(feeds.site_url, ''),
  feeds.last_fetched,
  (SELECT COUNT(*) FROM articles
   WHERE articles.feed_id = feeds.id AND articles.is_read = 0) AS unread_count
FROM feeds
ORDER BY feeds.group_title, feeds.title
`)
	if err != nil {
		return nil, fmt.Errorf("query feeds: %w", err)
	}
	defer rows.Close()

	feeds := make([]Feed, 0, 16)
	for rows.Next() {
		var feed Feed
		var lastFetched sql.NullString
		if err := rows.Scan(
			&feed.ID,
			&feed.GroupPath,
			&feed.Title,
			&feed.URL,
			&feed.SiteURL,
			&lastFetched,
			&feed.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		feed.LastFetched = parseOptionalTime(lastFetched)
		feeds = append(feeds, feed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return feeds, nil
}

const articleColumns = `
SELECT articles.id, articles.feed_id, articles.guid, articles.title,
       COALESCE(articles.url, ''), COALESCE(articles.author, ''),
       COALESCE(articles.summary, ''), COALESCE(articles.content, ''),
       articles.published, articles.is_read, articles.is_starred
FROM articles
`

func (s *Store) GetArticlesForFeed(ctx context.Context, feedID int64) ([]Article, error) {
	return s.queryArticles(ctx, articleColumns+`
WHERE articles.feed_id = ?
ORDER BY articles.published DESC, articles.created_at DESC
`, feedID)
}

// GetArticlesForGroup returns the articles of every feed whose group path
// matches exactly. Nested groups are separate paths and are not included.
func (s *Store) GetArticlesForGroup(ctx context.Context, groupPath string) ([]Article, error) {
	return s.queryArticles(ctx, articleColumns+`
INNER JOIN feeds ON articles.feed_id = feeds.id
WHERE feeds.group_title = ?
ORDER BY articles.published DESC, articles.created_at DESC
`, groupPath)
}

func (s *Store) GetAllArticles(ctx context.Context) ([]Article, error) {
	return s.queryArticles(ctx, articleColumns+`
ORDER BY articles.published DESC, articles.created_at DESC
`)
}

func (s *Store) queryArticles(ctx context.Context, query string, args ...any) ([]Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	articles := make([]Article, 0, 32)
	for rows.Next() {
		var a Article
		var published sql.NullString
		var isRead, isStarred int
		if err := rows.Scan(
			&a.ID,
			&a.FeedID,
			&a.GUID,
			&a.Title,
			&a.URL,
			&a.Author,
			&a.Summary,
			&a.Content,
			&published,
			&isRead,
			&isStarred,
		); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a.Published = parseOptionalTime(published)
		a.IsRead = isRead != 0
		a.IsStarred = isStarred != 0
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}

// UpsertArticles inserts articles that do not already exist, keyed on
// (feed_id, guid), and returns the number of newly inserted rows.
func (s *Store) UpsertArticles(ctx context.Context, articles []Article) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO articles
  (feed_id, guid, title, url, author, summary, content, published)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return 0, fmt.Errorf("prepare article insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, a := range articles {
		res, err := stmt.ExecContext(
			ctx,
			a.FeedID,
			a.GUID,
			a.Title,
			a.URL,
			a.Author,
			a.Summary,
			a.Content,
			formatOptionalTime(a.Published),
		)
		if err != nil {
			return 0, fmt.Errorf("insert article %q: %w", a.GUID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return inserted, nil
}

// ToggleRead flips the read flag of one article and returns the new value.
func (s *Store) ToggleRead(ctx context.Context, articleID int64) (bool, error) {
	return s.toggleFlag(ctx, articleID, "is_read")
}

// ToggleStar flips the starred flag of one article and returns the new value.
func (s *Store) ToggleStar(ctx context.Context, articleID int64) (bool, error) {
	return s.toggleFlag(ctx, articleID, "is_starred")
}

func (s *Store) toggleFlag(ctx context.Context, articleID int64, column string) (bool, error) {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE articles SET "+column+" = NOT "+column+" WHERE id = ?", articleID); err != nil {
		return false, fmt.Errorf("toggle %s: %w", column, err)
	}
	var value int
	if err := s.db.QueryRowContext(ctx,
		"SELECT "+column+" FROM articles WHERE id = ?", articleID).Scan(&value); err != nil {
		return false, fmt.Errorf("read %s after toggle: %w", column, err)
	}
	return value != 0, nil
}

func (s *Store) MarkFeedRead(ctx context.Context, feedID int64) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE articles SET is_read = 1 WHERE feed_id = ?", feedID); err != nil {
		return fmt.Errorf("mark feed read: %w", err)
	}
	return nil
}

func (s *Store) MarkAllRead(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE articles SET is_read = 1"); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

// MarkGroupRead marks every article of the feeds under groupPath as read.
// With recursive set it also covers feeds in nested groups, matched by the
// "path > " prefix.
func (s *Store) MarkGroupRead(ctx context.Context, groupPath string, recursive bool) error {
	query := `
UPDATE articles SET is_read = 1
WHERE feed_id IN (SELECT id FROM feeds WHERE group_title = ?)
`
	args := []any{groupPath}
	if recursive {
		query = `
UPDATE articles SET is_read = 1
WHERE feed_id IN (SELECT id FROM feeds WHERE group_title = ? OR group_title LIKE ?)
`
		args = append(args, groupPath+" > %")
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark group read: %w", err)
	}
	return nil
}

func (s *Store) UpdateLastFetched(ctx context.Context, feedID int64) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE feeds SET last_fetched = datetime('now') WHERE id = ?", feedID); err != nil {
		return fmt.Errorf("update last_fetched: %w", err)
	}
	return nil
}

const timeLayout = "2006-01-02 15:04:05"

func parseOptionalTime(value sql.NullString) *time.Time {
	if !value.Valid || value.String == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, timeLayout} {
		if t, err := time.Parse(layout, value.String); err == nil {
			return &t
		}
	}
	return nil
}

func formatOptionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
