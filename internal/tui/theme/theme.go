package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sujaltv/lazyfeed/internal/config"
)

// Theme maps the display colours from the config onto lipgloss styles.
type Theme struct {
	ActiveBorder   lipgloss.Style
	InactiveBorder lipgloss.Style
	Highlight      lipgloss.Style
	Unread         lipgloss.Style
	GroupHeader    lipgloss.Style
	TitleRead      lipgloss.Style
	Status         lipgloss.Style
	Border         lipgloss.Border
}

func FromConfig(colours config.DisplayColours) Theme {
	return Theme{
		ActiveBorder:   lipgloss.NewStyle().Foreground(namedColor(colours.ActiveBorder)),
		InactiveBorder: lipgloss.NewStyle().Foreground(namedColor(colours.InactiveBorder)),
		Highlight:      lipgloss.NewStyle().Background(namedColor(colours.HighlightBg)),
		Unread:         lipgloss.NewStyle().Foreground(namedColor(colours.UnreadIndicator)).Bold(true),
		GroupHeader:    lipgloss.NewStyle().Bold(true),
		TitleRead:      lipgloss.NewStyle().Foreground(namedColor("darkgray")),
		Status:         lipgloss.NewStyle().Faint(true),
		Border:         namedBorder(colours.BorderType),
	}
}

// namedColor resolves the colour names accepted in the config file to ANSI
// palette indexes, falling back to a hex passthrough for anything else.
func namedColor(name string) lipgloss.Color {
	switch name {
	case "black":
		return lipgloss.Color("0")
	case "red":
		return lipgloss.Color("1")
	case "green":
		return lipgloss.Color("2")
	case "yellow":
		return lipgloss.Color("3")
	case "blue":
		return lipgloss.Color("4")
	case "magenta":
		return lipgloss.Color("5")
	case "cyan":
		return lipgloss.Color("6")
	case "gray", "grey":
		return lipgloss.Color("7")
	case "darkgray", "darkgrey":
		return lipgloss.Color("8")
	case "white":
		return lipgloss.Color("15")
	default:
		return lipgloss.Color(name)
	}
}

func namedBorder(name string) lipgloss.Border {
	switch name {
	case "double":
		return lipgloss.DoubleBorder()
	case "thick":
		return lipgloss.ThickBorder()
	case "rounded":
		return lipgloss.RoundedBorder()
	default:
		return lipgloss.NormalBorder()
	}
}
