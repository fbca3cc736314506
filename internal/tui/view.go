package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sujaltv/lazyfeed/internal/storage"
	"github.com/sujaltv/lazyfeed/internal/tui/grouptree"
	"github.com/sujaltv/lazyfeed/internal/tui/state"
)

const statusBarHeight = 1

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	paneHeight := m.height - statusBarHeight
	feedsW, articlesW, contentW := m.paneWidths()

	feeds := m.renderPane(m.viewFeeds(feedsW, paneHeight-2), "Feeds", feedsW, paneHeight, m.activePane == paneFeeds)
	articles := m.renderPane(m.viewArticles(articlesW, paneHeight-2), "Articles", articlesW, paneHeight, m.activePane == paneArticles)
	content := m.renderPane(m.viewContent(paneHeight-2), m.contentTitle(), contentW, paneHeight, m.activePane == paneContent)

	layout := lipgloss.JoinHorizontal(lipgloss.Top, feeds, articles, content)
	screen := lipgloss.JoinVertical(lipgloss.Left, layout, m.viewStatusBar())

	if m.popup != nil {
		return m.overlayPopup(screen)
	}
	return screen
}

// paneWidths splits the terminal width by the configured column percentages,
// giving the remainder to the article view.
func (m Model) paneWidths() (int, int, int) {
	cols := m.cfg.Display.Columns
	total := cols.FeedsList + cols.ArticlesList + cols.ArticleView
	if total <= 0 {
		total = 100
	}
	feedsW := m.width * cols.FeedsList / total
	articlesW := m.width * cols.ArticlesList / total
	return feedsW, articlesW, m.width - feedsW - articlesW
}

func (m Model) contentWidth() int {
	_, _, contentW := m.paneWidths()
	inner := contentW - 4
	if inner < 20 {
		inner = 80
	}
	return inner
}

func (m Model) renderPane(body, title string, width, height int, active bool) string {
	borderStyle := m.theme.InactiveBorder
	if active {
		borderStyle = m.theme.ActiveBorder
	}
	return lipgloss.NewStyle().
		Border(m.theme.Border).
		BorderForeground(borderStyle.GetForeground()).
		Width(width - 2).
		Height(height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, m.theme.GroupHeader.Render(title), body))
}

func (m Model) viewFeeds(width, height int) string {
	if len(m.rows) == 0 {
		return m.theme.TitleRead.Render("no feeds configured")
	}
	start, end := state.CenteredWindow(len(m.rows), m.feedCursor, height-1)

	var b strings.Builder
	for i := start; i < end; i++ {
		row := m.rows[i]
		line := m.feedRowLine(row, width-2)
		if i == m.feedCursor {
			line = m.theme.Highlight.Render(line)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) feedRowLine(row grouptree.Row, width int) string {
	indent := strings.Repeat("  ", row.Depth)

	var label string
	switch row.Kind {
	case grouptree.RowAll:
		label = row.Title
	case grouptree.RowGroup:
		marker := "▾ "
		if row.Collapsed {
			marker = "▸ "
		}
		label = indent + marker + row.Title
	default:
		label = indent + row.Title
	}

	suffix := ""
	if row.Unread > 0 {
		suffix = fmt.Sprintf(" (%d)", row.Unread)
	}
	line := truncate(label, width-len(suffix)) + suffix
	if row.Unread > 0 {
		return m.theme.Unread.Render(line)
	}
	return line
}

func (m Model) viewArticles(width, height int) string {
	if len(m.articles) == 0 {
		return m.theme.TitleRead.Render("no articles")
	}
	start, end := state.CenteredWindow(len(m.articles), m.articleCursor, height-1)

	var b strings.Builder
	for i := start; i < end; i++ {
		line := m.articleLine(m.articles[i], width-2)
		if i == m.articleCursor {
			line = m.theme.Highlight.Render(line)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) articleLine(a storage.Article, width int) string {
	marker := "○ "
	if !a.IsRead {
		marker = "● "
	}
	if a.IsStarred {
		marker = "★ "
	}

	date := ""
	if a.Published != nil {
		date = " " + a.Published.Format(m.cfg.Display.Format.Date)
	}
	line := marker + truncate(a.Title, width-len(marker)-len(date)) + date
	if !a.IsRead {
		return m.theme.Unread.Render(line)
	}
	return m.theme.TitleRead.Render(line)
}

func (m Model) contentTitle() string {
	if selected, ok := m.selectedArticle(); ok && selected.ID == m.selectedArticleID {
		return truncate(selected.Title, m.contentWidth())
	}
	return "Article"
}

func (m Model) viewContent(height int) string {
	if m.content == "" {
		return m.theme.TitleRead.Render("select an article")
	}
	lines := strings.Split(m.content, "\n")
	top := m.contentTop
	if top > len(lines)-1 {
		top = len(lines) - 1
	}
	if top < 0 {
		top = 0
	}
	end := top + height - 1
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[top:end], "\n")
}

func (m Model) viewStatusBar() string {
	text := m.status
	if text == "" {
		if m.pendingRefreshes > 0 {
			text = fmt.Sprintf("refreshing %d feeds...", m.pendingRefreshes)
		} else if m.countPrefix > 0 {
			text = fmt.Sprintf("%d", m.countPrefix)
		} else {
			text = "q quit · Tab focus · r refresh · o open · ? see config for keys"
		}
	}
	return m.theme.Status.Render(truncate(text, m.width))
}

func (m Model) overlayPopup(screen string) string {
	p := m.popup

	var b strings.Builder
	b.WriteString(m.theme.GroupHeader.Render(p.title))
	b.WriteString("\n\n")

	if p.mode == popupConfirmDelete {
		b.WriteString(fmt.Sprintf("Delete %s?\n\n", p.deleteLabel))
		b.WriteString(m.theme.Status.Render("y confirm · n / esc cancel"))
	} else {
		for i, field := range p.fields {
			cursor := "  "
			if i == p.focus {
				cursor = "> "
			}
			b.WriteString(fmt.Sprintf("%s%s: %s\n", cursor, field.label, field.value))
		}
		b.WriteString("\n")
		b.WriteString(m.theme.Status.Render("enter apply · tab next field · esc cancel"))
	}

	box := lipgloss.NewStyle().
		Border(m.theme.Border).
		BorderForeground(m.theme.ActiveBorder.GetForeground()).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
