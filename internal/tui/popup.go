package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sujaltv/lazyfeed/internal/config"
	"github.com/sujaltv/lazyfeed/internal/tui/grouptree"
)

type popupMode int

const (
	popupCreateGroup popupMode = iota
	popupCreateFeed
	popupEditFeed
	popupEditGroup
	popupConfirmDelete
)

// popupField is one editable text line in a dialog.
type popupField struct {
	label string
	value string
}

// popup is a modal dialog for creating, editing and deleting feeds and
// groups. While open it captures all key input.
type popup struct {
	mode   popupMode
	title  string
	fields []popupField
	focus  int

	// context for edits and deletes
	targetPath  string
	originalURL string
	deleteLabel string
	deleteFeed  bool
}

func newCreateGroupPopup(parentPath string) *popup {
	return &popup{
		mode:       popupCreateGroup,
		title:      "New group",
		targetPath: parentPath,
		fields: []popupField{
			{label: "Name"},
		},
	}
}

func newCreateFeedPopup(parentPath string) *popup {
	return &popup{
		mode:       popupCreateFeed,
		title:      "New feed",
		targetPath: parentPath,
		fields: []popupField{
			{label: "Title"},
			{label: "Feed URL"},
			{label: "Site URL"},
		},
	}
}

func newEditFeedPopup(groupPath string, source config.FeedSource) *popup {
	return &popup{
		mode:        popupEditFeed,
		title:       "Edit feed",
		targetPath:  groupPath,
		originalURL: source.FetchURL(),
		fields: []popupField{
			{label: "Title", value: source.Title},
			{label: "Feed URL", value: source.Feed},
			{label: "Site URL", value: source.URL},
		},
	}
}

func newEditGroupPopup(path string) *popup {
	return &popup{
		mode:       popupEditGroup,
		title:      "Rename group",
		targetPath: path,
		fields: []popupField{
			{label: "Name", value: grouptree.LastSegment(path)},
		},
	}
}

func newDeletePopup(label, path, feedURL string, isFeed bool) *popup {
	return &popup{
		mode:        popupConfirmDelete,
		title:       "Delete",
		targetPath:  path,
		originalURL: feedURL,
		deleteLabel: label,
		deleteFeed:  isFeed,
	}
}

func (m Model) openEditPopup() (tea.Model, tea.Cmd) {
	if m.feedCursor < 0 || m.feedCursor >= len(m.rows) {
		return m, nil
	}
	row := m.rows[m.feedCursor]
	switch row.Kind {
	case grouptree.RowGroup:
		m.popup = newEditGroupPopup(row.Path)
		return m, nil
	case grouptree.RowFeed:
		source, ok := config.FindFeed(m.cfg.Feeds, row.Feed.URL)
		if !ok {
			return m, m.setStatus(fmt.Sprintf("Feed '%s' not found in config", row.Feed.URL))
		}
		m.popup = newEditFeedPopup(row.Feed.GroupPath, source)
		return m, nil
	}
	return m, nil
}

func (m Model) openDeletePopup() (tea.Model, tea.Cmd) {
	if m.feedCursor < 0 || m.feedCursor >= len(m.rows) {
		return m, nil
	}
	row := m.rows[m.feedCursor]
	switch row.Kind {
	case grouptree.RowGroup:
		m.popup = newDeletePopup("group '"+row.Title+"'", row.Path, "", false)
	case grouptree.RowFeed:
		m.popup = newDeletePopup("feed '"+row.Feed.Title+"'", row.Feed.GroupPath, row.Feed.URL, true)
	}
	return m, nil
}

func (m Model) updatePopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.popup
	switch msg.String() {
	case "esc", "ctrl+c":
		m.popup = nil
		return m, nil
	case "tab", "down":
		if len(p.fields) > 0 {
			p.focus = (p.focus + 1) % len(p.fields)
		}
		return m, nil
	case "shift+tab", "up":
		if len(p.fields) > 0 {
			p.focus = (p.focus + len(p.fields) - 1) % len(p.fields)
		}
		return m, nil
	case "enter":
		return m.applyPopup()
	case "backspace":
		if len(p.fields) > 0 {
			field := &p.fields[p.focus]
			if field.value != "" {
				runes := []rune(field.value)
				field.value = string(runes[:len(runes)-1])
			}
		}
		return m, nil
	}

	if p.mode == popupConfirmDelete {
		switch msg.String() {
		case "y", "Y":
			return m.applyPopup()
		case "n", "N":
			m.popup = nil
			return m, nil
		}
		return m, nil
	}

	if len(p.fields) > 0 {
		switch msg.Type {
		case tea.KeyRunes:
			p.fields[p.focus].value += string(msg.Runes)
		case tea.KeySpace:
			p.fields[p.focus].value += " "
		}
	}
	return m, nil
}

func (m Model) applyPopup() (tea.Model, tea.Cmd) {
	p := m.popup
	m.popup = nil
	snapshot := config.CloneItems(m.cfg.Feeds)

	switch p.mode {
	case popupCreateGroup:
		name := strings.TrimSpace(p.fields[0].value)
		if name == "" {
			return m, m.setStatus("Group name cannot be empty")
		}
		path := name
		if p.targetPath != "" {
			path = grouptree.JoinPath(append(grouptree.SplitPath(p.targetPath), name))
		}
		config.InsertGroup(&m.cfg.Feeds, path)
		next, cmd, _ := m.applyConfigChange(snapshot, "Created group: "+path)
		return next, cmd

	case popupCreateFeed:
		title := strings.TrimSpace(p.fields[0].value)
		feedURL := strings.TrimSpace(p.fields[1].value)
		siteURL := strings.TrimSpace(p.fields[2].value)
		if feedURL == "" {
			return m, m.setStatus("Feed URL cannot be empty")
		}
		if title == "" {
			title = feedURL
		}
		source := config.FeedSource{Title: title, URL: siteURL, Feed: feedURL}
		config.InsertFeed(&m.cfg.Feeds, p.targetPath, source)
		next, cmd, _ := m.applyConfigChange(snapshot, "Added feed: "+title)
		return next, cmd

	case popupEditFeed:
		title := strings.TrimSpace(p.fields[0].value)
		feedURL := strings.TrimSpace(p.fields[1].value)
		siteURL := strings.TrimSpace(p.fields[2].value)
		if feedURL == "" && siteURL == "" {
			return m, m.setStatus("Feed needs a URL")
		}
		updated := config.FeedSource{Title: title, URL: siteURL, Feed: feedURL}
		if !config.UpdateFeed(&m.cfg.Feeds, p.originalURL, updated) {
			return m, m.setStatus("Feed not found in config")
		}
		next, cmd, _ := m.applyConfigChange(snapshot, "Updated feed: "+title)
		return next, cmd

	case popupEditGroup:
		name := strings.TrimSpace(p.fields[0].value)
		if name == "" {
			return m, m.setStatus("Group name cannot be empty")
		}
		if !config.RenameGroup(&m.cfg.Feeds, p.targetPath, name) {
			return m, m.setStatus("Group not found in config")
		}
		next, cmd, _ := m.applyConfigChange(snapshot, "Renamed group to: "+name)
		return next, cmd

	case popupConfirmDelete:
		if p.deleteFeed {
			if !config.RemoveFeed(&m.cfg.Feeds, p.originalURL) {
				return m, m.setStatus("Feed not found in config")
			}
		} else {
			if !config.RemoveGroup(&m.cfg.Feeds, p.targetPath) {
				return m, m.setStatus("Group not found in config")
			}
		}
		next, cmd, _ := m.applyConfigChange(snapshot, "Deleted "+p.deleteLabel)
		return next, cmd
	}
	return m, nil
}
