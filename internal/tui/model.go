package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sujaltv/lazyfeed/internal/config"
	"github.com/sujaltv/lazyfeed/internal/render/article"
	"github.com/sujaltv/lazyfeed/internal/storage"
	"github.com/sujaltv/lazyfeed/internal/tui/actions"
	"github.com/sujaltv/lazyfeed/internal/tui/grouptree"
	"github.com/sujaltv/lazyfeed/internal/tui/platform"
	"github.com/sujaltv/lazyfeed/internal/tui/state"
	"github.com/sujaltv/lazyfeed/internal/tui/theme"
)

type pane int

const (
	paneFeeds pane = iota
	paneArticles
	paneContent
)

// clipboardItem holds at most one cut feed or group, together with where it
// came from. Populated by cut, consumed by the next paste.
type clipboardItem struct {
	feed       *config.FeedSource
	group      *config.FeedGroup
	originPath string
}

// Model owns all core state. Background work runs in commands that report
// back through typed messages; nothing outside Update touches these fields.
type Model struct {
	store   actions.Store
	fetcher actions.Fetcher
	cfg     *config.Config
	cfgPath string
	theme   theme.Theme

	feeds       []storage.Feed
	emptyGroups []string
	rows        []grouptree.Row
	feedCursor  int
	collapsed   map[string]bool

	articles          []storage.Article
	articleCursor     int
	selectedArticleID int64

	content    string
	contentTop int

	clipboard *clipboardItem
	popup     *popup

	activePane         pane
	pendingRefreshes   int
	skipArticlesReload bool
	initialRefresh     bool
	countPrefix        int
	status             string
	statusID           int
	width              int
	height             int

	openURLFn func(string) error
}

func NewModel(store actions.Store, fetcher actions.Fetcher, cfg *config.Config, cfgPath string) Model {
	return Model{
		store:       store,
		fetcher:     fetcher,
		cfg:         cfg,
		cfgPath:     cfgPath,
		theme:       theme.FromConfig(cfg.Display.Colours),
		emptyGroups: cfg.CollectEmptyGroups(),
		collapsed:   make(map[string]bool),
		openURLFn:   platform.OpenURLInBrowser,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{actions.LoadFeedsCmd(m.store)}
	if m.cfg.RefreshEvery > 0 {
		cmds = append(cmds, actions.RefreshTickCmd(time.Duration(m.cfg.RefreshEvery)*time.Second))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.popup != nil {
			return m.updatePopup(msg)
		}
		return m.handleKey(msg)

	case actions.FeedsLoadedMsg:
		m.feeds = msg.Feeds
		m.rebuildRows()
		var cmds []tea.Cmd
		if m.cfg.RefreshOnStart && !m.initialRefresh {
			m.initialRefresh = true
			if cmd := m.startRefreshAll(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		if m.skipArticlesReload {
			m.skipArticlesReload = false
		} else {
			cmds = append(cmds, actions.LoadArticlesCmd(m.store, m.currentTarget()))
		}
		return m, tea.Batch(cmds...)

	case actions.ArticlesLoadedMsg:
		// Stale result: the view moved on before this load finished.
		if !msg.Target.Equal(m.currentTarget()) {
			return m, nil
		}
		m.articles = msg.Articles
		if idx := state.ArticleIndexByID(m.articles, m.selectedArticleID); idx >= 0 {
			m.articleCursor = idx
			return m, nil
		}
		if len(m.articles) == 0 {
			m.articleCursor = 0
			m.selectedArticleID = 0
			m.content = ""
			m.contentTop = 0
			return m, nil
		}
		m.articleCursor = 0
		m.selectedArticleID = m.articles[0].ID
		cmds := []tea.Cmd{m.renderSelectedCmd()}
		if !m.articles[0].IsRead {
			cmds = append(cmds, actions.ToggleReadCmd(m.store, m.articles[0].ID))
		}
		return m, tea.Batch(cmds...)

	case actions.ReadToggledMsg:
		m.setArticleRead(msg.ArticleID, msg.IsRead)
		// Reload feeds for fresh unread counts, but the articles on screen
		// are already correct; skip the reload the feeds load would chain.
		m.skipArticlesReload = true
		return m, actions.LoadFeedsCmd(m.store)

	case actions.StarToggledMsg:
		m.setArticleStarred(msg.ArticleID, msg.IsStarred)
		return m, nil

	case actions.MarkedReadMsg:
		m.skipArticlesReload = true
		return m, tea.Batch(
			actions.LoadArticlesCmd(m.store, m.currentTarget()),
			actions.LoadFeedsCmd(m.store),
		)

	case actions.FeedFetchedMsg:
		if m.pendingRefreshes > 0 {
			m.pendingRefreshes--
		}
		if msg.Err != nil {
			return m, tea.Batch(
				m.setStatus(fmt.Sprintf("Fetch error (%s): %v", msg.Title, msg.Err)),
				actions.LoadFeedsCmd(m.store),
			)
		}
		return m, actions.LoadFeedsCmd(m.store)

	case actions.StoreErrorMsg:
		return m, m.setStatus(fmt.Sprintf("Store error (%s): %v", msg.Op, msg.Err))

	case actions.ContentRenderedMsg:
		// Discard renders for an article that is no longer selected.
		if msg.ArticleID != m.selectedArticleID {
			return m, nil
		}
		m.content = msg.Content
		m.contentTop = 0
		return m, nil

	case actions.ClearStatusMsg:
		if msg.ID == m.statusID {
			m.status = ""
		}
		return m, nil

	case actions.RefreshTickMsg:
		cmd := m.startRefreshAll()
		tick := actions.RefreshTickCmd(time.Duration(m.cfg.RefreshEvery) * time.Second)
		return m, tea.Batch(cmd, tick)
	}
	return m, nil
}

// --- selection and derived state -------------------------------------------

func (m *Model) rebuildRows() {
	prevRows, prevCursor := m.rows, m.feedCursor
	forest := grouptree.Build(m.feeds, m.emptyGroups)
	m.rows = grouptree.FlattenRows(m.feeds, forest, m.collapsed)
	m.feedCursor = state.ReconcileFeedCursor(prevRows, prevCursor, m.rows)
}

// currentTarget maps the feeds-pane selection to the article list it shows.
func (m Model) currentTarget() actions.Target {
	if m.feedCursor < 0 || m.feedCursor >= len(m.rows) {
		return actions.Target{Kind: actions.TargetAll}
	}
	row := m.rows[m.feedCursor]
	switch row.Kind {
	case grouptree.RowFeed:
		return actions.Target{Kind: actions.TargetFeed, FeedID: row.Feed.ID}
	case grouptree.RowGroup:
		return actions.Target{Kind: actions.TargetGroup, GroupPath: row.Path}
	default:
		return actions.Target{Kind: actions.TargetAll}
	}
}

func (m Model) selectedArticle() (storage.Article, bool) {
	if m.articleCursor < 0 || m.articleCursor >= len(m.articles) {
		return storage.Article{}, false
	}
	return m.articles[m.articleCursor], true
}

func (m *Model) setArticleRead(articleID int64, isRead bool) {
	for i := range m.articles {
		if m.articles[i].ID == articleID {
			m.articles[i].IsRead = isRead
			return
		}
	}
}

func (m *Model) setArticleStarred(articleID int64, isStarred bool) {
	for i := range m.articles {
		if m.articles[i].ID == articleID {
			m.articles[i].IsStarred = isStarred
			return
		}
	}
}

func (m *Model) renderSelectedCmd() tea.Cmd {
	selected, ok := m.selectedArticle()
	if !ok {
		return nil
	}
	raw := selected.Content
	if raw == "" {
		raw = selected.Summary
	}
	meta := article.Meta{Title: selected.Title, Author: selected.Author}
	if selected.Published != nil {
		meta.Published = selected.Published.Format(m.cfg.Display.Format.Date)
	}
	width := m.contentWidth()
	return actions.RenderContentCmd(selected.ID, func() string {
		return article.Document(raw, meta, width)
	})
}

func (m *Model) setStatus(text string) tea.Cmd {
	m.status = text
	m.statusID++
	return actions.ClearStatusCmd(m.statusID, 5*time.Second)
}

// --- refresh ---------------------------------------------------------------

func (m *Model) startRefreshAll() tea.Cmd {
	if len(m.feeds) == 0 || m.pendingRefreshes > 0 {
		return nil
	}
	m.pendingRefreshes = len(m.feeds)
	cmds := make([]tea.Cmd, 0, len(m.feeds))
	for _, feed := range m.feeds {
		cmds = append(cmds, actions.FetchFeedCmd(m.store, m.fetcher, feed))
	}
	return tea.Batch(cmds...)
}

func (m *Model) startRefreshCurrent() tea.Cmd {
	if m.feedCursor < 0 || m.feedCursor >= len(m.rows) {
		return nil
	}
	row := m.rows[m.feedCursor]
	if row.Kind != grouptree.RowFeed {
		return m.startRefreshAll()
	}
	m.pendingRefreshes++
	return actions.FetchFeedCmd(m.store, m.fetcher, row.Feed)
}

// --- key handling ----------------------------------------------------------

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	keys := m.cfg.Keybindings

	// Vim-style count prefix (5j, 10k).
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' && !(key == "0" && m.countPrefix == 0) {
		m.countPrefix = m.countPrefix*10 + int(key[0]-'0')
		return m, nil
	}
	count := m.countPrefix
	if count == 0 {
		count = 1
	}
	m.countPrefix = 0

	switch {
	case keys.Global.Quit.Matches(key):
		return m, tea.Quit
	case keys.Global.FocusNext.Matches(key):
		m.activePane = (m.activePane + 1) % 3
		return m, nil
	case keys.Global.FocusPrev.Matches(key):
		m.activePane = (m.activePane + 2) % 3
		return m, nil
	case keys.Global.RefreshAll.Matches(key):
		return m, m.startRefreshAll()
	case keys.Global.RefreshCurrent.Matches(key):
		return m, m.startRefreshCurrent()
	case keys.Global.OpenBrowser.Matches(key):
		return m.openSelectedArticle()
	case keys.Global.CreateGroup.Matches(key):
		m.popup = newCreateGroupPopup(m.selectedGroupPath())
		return m, nil
	case keys.Global.CreateFeed.Matches(key):
		m.popup = newCreateFeedPopup(m.selectedGroupPath())
		return m, nil
	}

	switch m.activePane {
	case paneFeeds:
		return m.handleFeedsKey(key, count)
	case paneArticles:
		return m.handleArticlesKey(key, count)
	default:
		return m.handleContentKey(key, count)
	}
}

func (m Model) handleFeedsKey(key string, count int) (tea.Model, tea.Cmd) {
	keys := m.cfg.Keybindings
	switch {
	case keys.Feeds.MoveDown.Matches(key):
		return m.moveFeedCursor(count)
	case keys.Feeds.MoveUp.Matches(key):
		return m.moveFeedCursor(-count)
	case keys.Global.JumpTop.Matches(key):
		return m.moveFeedCursor(-len(m.rows))
	case keys.Global.JumpBottom.Matches(key):
		return m.moveFeedCursor(len(m.rows))
	case key == "pgdown" || key == "ctrl+d":
		return m.moveFeedCursor(state.PageStep(m.height))
	case key == "pgup" || key == "ctrl+u":
		return m.moveFeedCursor(-state.PageStep(m.height))
	case keys.Feeds.Select.Matches(key):
		m.activePane = paneArticles
		return m, actions.LoadArticlesCmd(m.store, m.currentTarget())
	case keys.Feeds.ToggleCollapse.Matches(key):
		return m.toggleCollapseCurrent()
	case keys.Feeds.ExpandAll.Matches(key):
		m.collapsed = make(map[string]bool)
		m.rebuildRows()
		return m, nil
	case keys.Feeds.CollapseAll.Matches(key):
		m.collapseAllGroups()
		m.rebuildRows()
		return m, nil
	case keys.Feeds.ToggleCollapseAll.Matches(key):
		m.toggleAllGroups()
		m.rebuildRows()
		return m, nil
	case keys.Articles.MarkAllRead.Matches(key):
		recursive := false
		target := m.currentTarget()
		if target.Kind == actions.TargetGroup {
			recursive = true
		}
		return m, actions.MarkReadCmd(m.store, target, recursive)
	case keys.Feeds.Cut.Matches(key):
		return m.cutSelectedItem()
	case keys.Feeds.Paste.Matches(key):
		return m.pasteClipboard()
	case keys.Feeds.Edit.Matches(key):
		return m.openEditPopup()
	case keys.Feeds.Delete.Matches(key):
		return m.openDeletePopup()
	case keys.Feeds.Collapse.Matches(key):
		return m.collapseCurrent()
	case keys.Feeds.Expand.Matches(key):
		return m.expandCurrent()
	}
	return m, nil
}

func (m Model) handleArticlesKey(key string, count int) (tea.Model, tea.Cmd) {
	keys := m.cfg.Keybindings
	switch {
	case keys.Articles.MoveDown.Matches(key):
		m.articleCursor = state.ClampCursor(m.articleCursor+count, len(m.articles))
		return m, nil
	case keys.Articles.MoveUp.Matches(key):
		m.articleCursor = state.ClampCursor(m.articleCursor-count, len(m.articles))
		return m, nil
	case keys.Global.JumpTop.Matches(key):
		m.articleCursor = 0
		return m, nil
	case keys.Global.JumpBottom.Matches(key):
		m.articleCursor = state.ClampCursor(len(m.articles)-1, len(m.articles))
		return m, nil
	case key == "pgdown" || key == "ctrl+d":
		m.articleCursor = state.ClampCursor(m.articleCursor+state.PageStep(m.height), len(m.articles))
		return m, nil
	case key == "pgup" || key == "ctrl+u":
		m.articleCursor = state.ClampCursor(m.articleCursor-state.PageStep(m.height), len(m.articles))
		return m, nil
	case keys.Articles.Select.Matches(key):
		return m.selectArticle()
	case keys.Articles.ToggleRead.Matches(key):
		if selected, ok := m.selectedArticle(); ok {
			return m, actions.ToggleReadCmd(m.store, selected.ID)
		}
		return m, nil
	case keys.Articles.ToggleStar.Matches(key):
		if selected, ok := m.selectedArticle(); ok {
			return m, actions.ToggleStarCmd(m.store, selected.ID)
		}
		return m, nil
	case keys.Articles.MarkAllRead.Matches(key):
		return m, actions.MarkReadCmd(m.store, m.currentTarget(), false)
	}
	return m, nil
}

func (m Model) handleContentKey(key string, count int) (tea.Model, tea.Cmd) {
	keys := m.cfg.Keybindings
	switch {
	case keys.ArticleView.ScrollDown.Matches(key):
		m.contentTop += count
		return m, nil
	case keys.ArticleView.ScrollUp.Matches(key):
		m.contentTop -= count
		if m.contentTop < 0 {
			m.contentTop = 0
		}
		return m, nil
	case key == "pgdown" || key == "ctrl+d":
		m.contentTop += state.PageStep(m.height)
		return m, nil
	case key == "pgup" || key == "ctrl+u":
		m.contentTop -= state.PageStep(m.height)
		if m.contentTop < 0 {
			m.contentTop = 0
		}
		return m, nil
	case keys.Global.JumpTop.Matches(key):
		m.contentTop = 0
		return m, nil
	}
	return m, nil
}

func (m Model) moveFeedCursor(delta int) (tea.Model, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}
	m.feedCursor = state.ClampCursor(m.feedCursor+delta, len(m.rows))
	// Selection drives the articles pane, so every move reloads it. A slow
	// load that arrives after another move is discarded by the target check.
	return m, actions.LoadArticlesCmd(m.store, m.currentTarget())
}

func (m Model) selectArticle() (tea.Model, tea.Cmd) {
	selected, ok := m.selectedArticle()
	if !ok {
		return m, nil
	}
	m.selectedArticleID = selected.ID
	m.activePane = paneContent
	cmds := []tea.Cmd{m.renderSelectedCmd()}
	if !selected.IsRead {
		cmds = append(cmds, actions.ToggleReadCmd(m.store, selected.ID))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) openSelectedArticle() (tea.Model, tea.Cmd) {
	selected, ok := m.selectedArticle()
	if !ok {
		return m, nil
	}
	validURL, err := platform.ValidateArticleURL(selected.URL)
	if err != nil {
		return m, m.setStatus(err.Error())
	}
	if err := m.openURLFn(validURL); err != nil {
		if copyErr := platform.CopyURLToClipboard(validURL); copyErr == nil {
			return m, m.setStatus("Could not open browser, URL copied to clipboard")
		}
		return m, m.setStatus(fmt.Sprintf("Could not open URL: %v", err))
	}
	return m, m.setStatus("Opened in browser")
}

// --- collapse state ----------------------------------------------------------

func (m Model) toggleCollapseCurrent() (tea.Model, tea.Cmd) {
	if m.feedCursor < 0 || m.feedCursor >= len(m.rows) {
		return m, nil
	}
	row := m.rows[m.feedCursor]
	if row.Kind != grouptree.RowGroup {
		return m, nil
	}
	m.collapsed[row.Path] = !m.collapsed[row.Path]
	m.rebuildRows()
	return m, nil
}

func (m Model) collapseCurrent() (tea.Model, tea.Cmd) {
	if m.feedCursor < 0 || m.feedCursor >= len(m.rows) {
		return m, nil
	}
	row := m.rows[m.feedCursor]
	path := row.Path
	if row.Kind == grouptree.RowFeed {
		path = row.Feed.GroupPath
	}
	if path != "" && !m.collapsed[path] {
		m.collapsed[path] = true
		m.rebuildRows()
	}
	return m, nil
}

func (m Model) expandCurrent() (tea.Model, tea.Cmd) {
	if m.feedCursor < 0 || m.feedCursor >= len(m.rows) {
		return m, nil
	}
	row := m.rows[m.feedCursor]
	if row.Kind == grouptree.RowGroup && m.collapsed[row.Path] {
		m.collapsed[row.Path] = false
		m.rebuildRows()
	}
	return m, nil
}

// collapseAllGroups fills the collapsed set with every known group path,
// from feed placement and empty groups alike.
func (m *Model) collapseAllGroups() {
	m.collapsed = make(map[string]bool)
	forest := grouptree.Build(m.feeds, m.emptyGroups)
	for _, path := range grouptree.AllPaths(forest) {
		m.collapsed[path] = true
	}
}

func (m *Model) toggleAllGroups() {
	for _, isCollapsed := range m.collapsed {
		if isCollapsed {
			m.collapsed = make(map[string]bool)
			return
		}
	}
	m.collapseAllGroups()
}

// --- config edits ------------------------------------------------------------

// selectedGroupPath is the group the cursor points at, or the parent group
// of the selected feed. Empty for the All row and standalone feeds.
func (m Model) selectedGroupPath() string {
	if m.feedCursor < 0 || m.feedCursor >= len(m.rows) {
		return ""
	}
	row := m.rows[m.feedCursor]
	switch row.Kind {
	case grouptree.RowGroup:
		return row.Path
	case grouptree.RowFeed:
		return row.Feed.GroupPath
	default:
		return ""
	}
}

// applyConfigChange persists the feeds section and resynchronizes the store.
// On persist failure the in-memory tree is rolled back to the snapshot and
// ok is false so callers can undo their own side effects.
func (m Model) applyConfigChange(snapshot []config.FeedItem, status string) (Model, tea.Cmd, bool) {
	if err := m.cfg.SaveFeeds(m.cfgPath); err != nil {
		m.cfg.Feeds = snapshot
		return m, m.setStatus(fmt.Sprintf("Failed to save config: %v", err)), false
	}
	m.emptyGroups = m.cfg.CollectEmptyGroups()
	return m, tea.Batch(
		m.setStatus(status),
		actions.SyncFeedsCmd(m.store, flattenConfigFeeds(m.cfg)),
	), true
}

func flattenConfigFeeds(cfg *config.Config) []storage.ConfigFeed {
	flat := cfg.CollectFeeds()
	out := make([]storage.ConfigFeed, 0, len(flat))
	for _, f := range flat {
		out = append(out, storage.ConfigFeed{
			GroupPath: f.GroupPath,
			Title:     f.Source.Title,
			URL:       f.Source.FetchURL(),
			SiteURL:   f.Source.URL,
		})
	}
	return out
}

func (m Model) cutSelectedItem() (tea.Model, tea.Cmd) {
	if m.feedCursor < 0 || m.feedCursor >= len(m.rows) {
		return m, nil
	}
	row := m.rows[m.feedCursor]
	snapshot := config.CloneItems(m.cfg.Feeds)

	switch row.Kind {
	case grouptree.RowAll:
		return m, m.setStatus("Cannot cut 'All'")
	case grouptree.RowGroup:
		group, ok := config.ExtractGroup(&m.cfg.Feeds, row.Path)
		if !ok {
			return m, m.setStatus(fmt.Sprintf("Group '%s' not found in config", row.Path))
		}
		next, cmd, saved := m.applyConfigChange(snapshot, "Cut group: "+row.Path)
		if saved {
			next.clipboard = &clipboardItem{group: &group, originPath: row.Path}
		}
		return next, cmd
	default:
		feed, ok := config.ExtractFeed(&m.cfg.Feeds, row.Feed.URL)
		if !ok {
			return m, m.setStatus(fmt.Sprintf("Feed '%s' not found in config", row.Feed.URL))
		}
		next, cmd, saved := m.applyConfigChange(snapshot, "Cut feed: "+row.Feed.Title)
		if saved {
			next.clipboard = &clipboardItem{feed: &feed, originPath: row.Feed.GroupPath}
		}
		return next, cmd
	}
}

func (m Model) pasteClipboard() (tea.Model, tea.Cmd) {
	if m.clipboard == nil {
		return m, m.setStatus("Nothing to paste (clipboard is empty)")
	}
	item := m.clipboard
	targetPath := m.selectedGroupPath()
	snapshot := config.CloneItems(m.cfg.Feeds)

	status := ""
	if item.feed != nil {
		config.PasteFeed(&m.cfg.Feeds, targetPath, *item.feed)
		status = "Pasted feed: " + item.feed.Title
	} else {
		config.PasteGroup(&m.cfg.Feeds, targetPath, *item.group)
		status = "Pasted group: " + item.group.Title
	}

	// The cut item was already removed from the persisted config, so a
	// failed paste must keep the clipboard or the item is gone for good.
	next, cmd, saved := m.applyConfigChange(snapshot, status)
	if saved {
		next.clipboard = nil
	}
	return next, cmd
}
