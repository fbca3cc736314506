// Package platform wraps the OS integrations the feed reader needs:
// handing an article URL to the default browser and, as a fallback,
// putting it on the system clipboard.
package platform

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// ValidateArticleURL checks that an article link is something a browser can
// open. Feeds routinely carry empty links, bare fragments, or mailto URLs;
// those are rejected with an error the status line can show as-is.
func ValidateArticleURL(raw string) (string, error) {
	link := strings.TrimSpace(raw)
	if link == "" {
		return "", fmt.Errorf("article has no URL")
	}
	parsed, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("invalid URL format")
	}
	switch {
	case parsed.Scheme != "http" && parsed.Scheme != "https":
		return "", fmt.Errorf("unsupported URL scheme: %s", parsed.Scheme)
	case parsed.Host == "":
		return "", fmt.Errorf("invalid URL host")
	}
	return link, nil
}

func browserCommand(link string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", link)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", link)
	default:
		return exec.Command("xdg-open", link)
	}
}

// OpenURLInBrowser launches the platform's URL handler for link.
func OpenURLInBrowser(link string) error {
	return browserCommand(link).Run()
}

// Clipboard tools in preference order. pbcopy covers macOS, xclip X11,
// wl-copy Wayland; whichever is installed and succeeds first wins.
var clipboardTools = [][]string{
	{"pbcopy"},
	{"xclip", "-selection", "clipboard"},
	{"wl-copy"},
}

// CopyURLToClipboard writes link to the system clipboard, trying each known
// clipboard tool in turn.
func CopyURLToClipboard(link string) error {
	for _, tool := range clipboardTools {
		if _, err := exec.LookPath(tool[0]); err != nil {
			continue
		}
		cmd := exec.Command(tool[0], tool[1:]...)
		cmd.Stdin = strings.NewReader(link)
		if err := cmd.Run(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no clipboard command available")
}
