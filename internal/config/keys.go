package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeyList is one or more key chords bound to an action. YAML accepts either
// a single string or a list of strings.
type KeyList []string

func (k *KeyList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return fmt.Errorf("decode key binding: %w", err)
		}
		*k = KeyList{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("decode key binding list: %w", err)
		}
		*k = KeyList(list)
		return nil
	default:
		return fmt.Errorf("key binding must be a string or list of strings")
	}
}

// Matches reports whether a bubbletea key string (tea.KeyMsg.String())
// matches any chord in the list.
func (k KeyList) Matches(key string) bool {
	for _, chord := range k {
		if NormalizeKey(chord) == key {
			return true
		}
	}
	return false
}

// NormalizeKey converts a config chord like "Ctrl-a", "Shift-Tab" or
// "Space" into the string form bubbletea reports for the key.
func NormalizeKey(chord string) string {
	parts := strings.Split(chord, "-")
	key := parts[len(parts)-1]
	mods := parts[:len(parts)-1]

	switch strings.ToLower(key) {
	case "space":
		key = " "
	case "backtab":
		return "shift+tab"
	case "esc", "escape":
		key = "esc"
	case "enter", "return":
		key = "enter"
	case "tab":
		key = "tab"
	case "up", "down", "left", "right", "home", "end", "backspace", "delete", "insert":
		key = strings.ToLower(key)
	case "pgup", "pageup":
		key = "pgup"
	case "pgdn", "pgdown", "pagedown":
		key = "pgdown"
	}

	out := key
	for i := len(mods) - 1; i >= 0; i-- {
		switch strings.ToLower(mods[i]) {
		case "ctrl", "control":
			out = "ctrl+" + strings.ToLower(out)
		case "shift":
			if len(out) == 1 {
				// Shifted letters arrive as the uppercase rune.
				out = strings.ToUpper(out)
			} else {
				out = "shift+" + out
			}
		case "alt", "meta":
			out = "alt+" + out
		}
	}
	return out
}

type Keybindings struct {
	Global      GlobalKeys      `yaml:"global"`
	Feeds       FeedsKeys       `yaml:"feeds"`
	Articles    ArticlesKeys    `yaml:"articles"`
	ArticleView ArticleViewKeys `yaml:"article_view"`
}

type GlobalKeys struct {
	Quit           KeyList `yaml:"quit"`
	FocusNext      KeyList `yaml:"focus_next"`
	FocusPrev      KeyList `yaml:"focus_prev"`
	RefreshCurrent KeyList `yaml:"refresh_current"`
	RefreshAll     KeyList `yaml:"refresh_all"`
	OpenBrowser    KeyList `yaml:"open_browser"`
	JumpTop        KeyList `yaml:"jump_top"`
	JumpBottom     KeyList `yaml:"jump_bottom"`
	CreateGroup    KeyList `yaml:"create_group"`
	CreateFeed     KeyList `yaml:"create_feed"`
}

type FeedsKeys struct {
	MoveDown          KeyList `yaml:"move_down"`
	MoveUp            KeyList `yaml:"move_up"`
	Select            KeyList `yaml:"select"`
	ToggleCollapse    KeyList `yaml:"toggle_collapse"`
	Collapse          KeyList `yaml:"collapse"`
	Expand            KeyList `yaml:"expand"`
	ExpandAll         KeyList `yaml:"expand_all"`
	CollapseAll       KeyList `yaml:"collapse_all"`
	ToggleCollapseAll KeyList `yaml:"toggle_collapse_all"`
	Cut               KeyList `yaml:"cut"`
	Paste             KeyList `yaml:"paste"`
	Edit              KeyList `yaml:"edit"`
	Delete            KeyList `yaml:"delete"`
}

type ArticlesKeys struct {
	MoveDown    KeyList `yaml:"move_down"`
	MoveUp      KeyList `yaml:"move_up"`
	Select      KeyList `yaml:"select"`
	ToggleRead  KeyList `yaml:"toggle_read"`
	ToggleStar  KeyList `yaml:"toggle_star"`
	MarkAllRead KeyList `yaml:"mark_all_read"`
}

type ArticleViewKeys struct {
	ScrollDown KeyList `yaml:"scroll_down"`
	ScrollUp   KeyList `yaml:"scroll_up"`
}

func DefaultKeybindings() Keybindings {
	return Keybindings{
		Global: GlobalKeys{
			Quit:           KeyList{"q", "Ctrl-c"},
			FocusNext:      KeyList{"Tab"},
			FocusPrev:      KeyList{"Shift-Tab"},
			RefreshCurrent: KeyList{"r"},
			RefreshAll:     KeyList{"Shift-r"},
			OpenBrowser:    KeyList{"o"},
			JumpTop:        KeyList{"g"},
			JumpBottom:     KeyList{"Shift-g"},
			CreateGroup:    KeyList{"Ctrl-g"},
			CreateFeed:     KeyList{"Ctrl-n"},
		},
		Feeds: FeedsKeys{
			MoveDown:          KeyList{"j", "Down"},
			MoveUp:            KeyList{"k", "Up"},
			Select:            KeyList{"Enter"},
			ToggleCollapse:    KeyList{"Space"},
			Collapse:          KeyList{"h", "Left"},
			Expand:            KeyList{"l", "Right"},
			ExpandAll:         KeyList{"e"},
			CollapseAll:       KeyList{"Shift-e"},
			ToggleCollapseAll: KeyList{"t"},
			Cut:               KeyList{"x"},
			Paste:             KeyList{"p"},
			Edit:              KeyList{"Ctrl-e"},
			Delete:            KeyList{"Shift-d"},
		},
		Articles: ArticlesKeys{
			MoveDown:    KeyList{"j", "Down"},
			MoveUp:      KeyList{"k", "Up"},
			Select:      KeyList{"Enter"},
			ToggleRead:  KeyList{"m"},
			ToggleStar:  KeyList{"s"},
			MarkAllRead: KeyList{"Shift-m"},
		},
		ArticleView: ArticleViewKeys{
			ScrollDown: KeyList{"j", "Down"},
			ScrollUp:   KeyList{"k", "Up"},
		},
	}
}

func (k *Keybindings) fillDefaults(def Keybindings) {
	fill := func(dst *KeyList, src KeyList) {
		if len(*dst) == 0 {
			*dst = src
		}
	}
	fill(&k.Global.Quit, def.Global.Quit)
	fill(&k.Global.FocusNext, def.Global.FocusNext)
	fill(&k.Global.FocusPrev, def.Global.FocusPrev)
	fill(&k.Global.RefreshCurrent, def.Global.RefreshCurrent)
	fill(&k.Global.RefreshAll, def.Global.RefreshAll)
	fill(&k.Global.OpenBrowser, def.Global.OpenBrowser)
	fill(&k.Global.JumpTop, def.Global.JumpTop)
	fill(&k.Global.JumpBottom, def.Global.JumpBottom)
	fill(&k.Global.CreateGroup, def.Global.CreateGroup)
	fill(&k.Global.CreateFeed, def.Global.CreateFeed)
	fill(&k.Feeds.MoveDown, def.Feeds.MoveDown)
	fill(&k.Feeds.MoveUp, def.Feeds.MoveUp)
	fill(&k.Feeds.Select, def.Feeds.Select)
	fill(&k.Feeds.ToggleCollapse, def.Feeds.ToggleCollapse)
	fill(&k.Feeds.Collapse, def.Feeds.Collapse)
	fill(&k.Feeds.Expand, def.Feeds.Expand)
	fill(&k.Feeds.ExpandAll, def.Feeds.ExpandAll)
	fill(&k.Feeds.CollapseAll, def.Feeds.CollapseAll)
	fill(&k.Feeds.ToggleCollapseAll, def.Feeds.ToggleCollapseAll)
	fill(&k.Feeds.Cut, def.Feeds.Cut)
	fill(&k.Feeds.Paste, def.Feeds.Paste)
	fill(&k.Feeds.Edit, def.Feeds.Edit)
	fill(&k.Feeds.Delete, def.Feeds.Delete)
	fill(&k.Articles.MoveDown, def.Articles.MoveDown)
	fill(&k.Articles.MoveUp, def.Articles.MoveUp)
	fill(&k.Articles.Select, def.Articles.Select)
	fill(&k.Articles.ToggleRead, def.Articles.ToggleRead)
	fill(&k.Articles.ToggleStar, def.Articles.ToggleStar)
	fill(&k.Articles.MarkAllRead, def.Articles.MarkAllRead)
	fill(&k.ArticleView.ScrollDown, def.ArticleView.ScrollDown)
	fill(&k.ArticleView.ScrollUp, def.ArticleView.ScrollUp)
}
