package actions

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sujaltv/lazyfeed/internal/storage"
)

// Store is the slice of the record store the background commands need.
type Store interface {
	GetAllFeeds(ctx context.Context) ([]storage.Feed, error)
	GetArticlesForFeed(ctx context.Context, feedID int64) ([]storage.Article, error)
	GetArticlesForGroup(ctx context.Context, groupPath string) ([]storage.Article, error)
	GetAllArticles(ctx context.Context) ([]storage.Article, error)
	UpsertArticles(ctx context.Context, articles []storage.Article) (int, error)
	UpdateLastFetched(ctx context.Context, feedID int64) error
	ToggleRead(ctx context.Context, articleID int64) (bool, error)
	ToggleStar(ctx context.Context, articleID int64) (bool, error)
	MarkFeedRead(ctx context.Context, feedID int64) error
	MarkAllRead(ctx context.Context) error
	MarkGroupRead(ctx context.Context, groupPath string, recursive bool) error
	SyncFeedsFromConfig(ctx context.Context, feeds []storage.ConfigFeed) error
}

// Fetcher downloads and parses one feed.
type Fetcher interface {
	Fetch(ctx context.Context, feed storage.Feed) ([]storage.Article, error)
}

type TargetKind int

const (
	TargetAll TargetKind = iota
	TargetFeed
	TargetGroup
)

// Target identifies which article list a load was issued for. Results carry
// their target so the model can discard ones the user has navigated away
// from before they completed.
type Target struct {
	Kind      TargetKind
	FeedID    int64
	GroupPath string
}

func (t Target) Equal(other Target) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TargetFeed:
		return t.FeedID == other.FeedID
	case TargetGroup:
		return t.GroupPath == other.GroupPath
	default:
		return true
	}
}

type FeedsLoadedMsg struct {
	Feeds []storage.Feed
}

type ArticlesLoadedMsg struct {
	Target   Target
	Articles []storage.Article
}

type ReadToggledMsg struct {
	ArticleID int64
	IsRead    bool
}

type StarToggledMsg struct {
	ArticleID int64
	IsStarred bool
}

type MarkedReadMsg struct{}

type FeedFetchedMsg struct {
	FeedID   int64
	Title    string
	Inserted int
	Err      error
}

type StoreErrorMsg struct {
	Op  string
	Err error
}

type ContentRenderedMsg struct {
	ArticleID int64
	Content   string
}

type ClearStatusMsg struct {
	ID int
}

type RefreshTickMsg struct{}

const storeTimeout = 10 * time.Second

func LoadFeedsCmd(store Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		feeds, err := store.GetAllFeeds(ctx)
		if err != nil {
			return StoreErrorMsg{Op: "load feeds", Err: err}
		}
		return FeedsLoadedMsg{Feeds: feeds}
	}
}

func LoadArticlesCmd(store Store, target Target) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		var articles []storage.Article
		var err error
		switch target.Kind {
		case TargetFeed:
			articles, err = store.GetArticlesForFeed(ctx, target.FeedID)
		case TargetGroup:
			articles, err = store.GetArticlesForGroup(ctx, target.GroupPath)
		default:
			articles, err = store.GetAllArticles(ctx)
		}
		if err != nil {
			return StoreErrorMsg{Op: "load articles", Err: err}
		}
		return ArticlesLoadedMsg{Target: target, Articles: articles}
	}
}

func ToggleReadCmd(store Store, articleID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		isRead, err := store.ToggleRead(ctx, articleID)
		if err != nil {
			return StoreErrorMsg{Op: "toggle read", Err: err}
		}
		return ReadToggledMsg{ArticleID: articleID, IsRead: isRead}
	}
}

func ToggleStarCmd(store Store, articleID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		isStarred, err := store.ToggleStar(ctx, articleID)
		if err != nil {
			return StoreErrorMsg{Op: "toggle star", Err: err}
		}
		return StarToggledMsg{ArticleID: articleID, IsStarred: isStarred}
	}
}

// MarkReadCmd marks a whole target read: one feed, one group (optionally
// recursive), or everything.
func MarkReadCmd(store Store, target Target, recursive bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		var err error
		switch target.Kind {
		case TargetFeed:
			err = store.MarkFeedRead(ctx, target.FeedID)
		case TargetGroup:
			err = store.MarkGroupRead(ctx, target.GroupPath, recursive)
		default:
			err = store.MarkAllRead(ctx)
		}
		if err != nil {
			return StoreErrorMsg{Op: "mark read", Err: err}
		}
		return MarkedReadMsg{}
	}
}

// FetchFeedCmd runs the full refresh pipeline for one feed: fetch, merge
// into the store, stamp last_fetched. Fetch errors are carried in the
// message so a batch refresh keeps going feed by feed.
func FetchFeedCmd(store Store, fetcher Fetcher, feed storage.Feed) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 35*time.Second)
		defer cancel()

		articles, err := fetcher.Fetch(ctx, feed)
		if err != nil {
			return FeedFetchedMsg{FeedID: feed.ID, Title: feed.Title, Err: err}
		}

		inserted, err := store.UpsertArticles(ctx, articles)
		if err != nil {
			return FeedFetchedMsg{FeedID: feed.ID, Title: feed.Title, Err: err}
		}
		if err := store.UpdateLastFetched(ctx, feed.ID); err != nil {
			return FeedFetchedMsg{FeedID: feed.ID, Title: feed.Title, Inserted: inserted, Err: err}
		}
		return FeedFetchedMsg{FeedID: feed.ID, Title: feed.Title, Inserted: inserted}
	}
}

// SyncFeedsCmd reconciles the store with the config's flattened feed list
// and reloads the feed records.
func SyncFeedsCmd(store Store, feeds []storage.ConfigFeed) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		if err := store.SyncFeedsFromConfig(ctx, feeds); err != nil {
			return StoreErrorMsg{Op: "sync feeds", Err: err}
		}
		loaded, err := store.GetAllFeeds(ctx)
		if err != nil {
			return StoreErrorMsg{Op: "load feeds", Err: err}
		}
		return FeedsLoadedMsg{Feeds: loaded}
	}
}

// RenderContentCmd converts one article's HTML to display text off the
// update loop.
func RenderContentCmd(articleID int64, render func() string) tea.Cmd {
	return func() tea.Msg {
		return ContentRenderedMsg{ArticleID: articleID, Content: render()}
	}
}

func ClearStatusCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return ClearStatusMsg{ID: id}
	})
}

func RefreshTickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return RefreshTickMsg{}
	})
}
