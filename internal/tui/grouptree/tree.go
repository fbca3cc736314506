package grouptree

import (
	"sort"

	"github.com/sujaltv/lazyfeed/internal/storage"
)

// Node is one group in the rebuilt tree. Unread is the sum over the whole
// subtree and is recomputed after every build, never mutated incrementally.
type Node struct {
	Title    string
	Path     string
	Unread   int
	Feeds    []storage.Feed
	Children []*Node
}

// Build turns grouped feed records plus explicit empty-group paths into the
// group forest. Feeds with an empty group path are excluded; the display
// layer handles standalones directly. Paths sharing a prefix converge on
// one node per prefix, and root paths are sorted lexicographically so the
// result is independent of input order.
func Build(feeds []storage.Feed, emptyGroups []string) []*Node {
	feedsByPath := make(map[string][]storage.Feed)
	paths := make([]string, 0, len(feeds)+len(emptyGroups))
	for _, feed := range feeds {
		if feed.GroupPath == "" {
			continue
		}
		if _, seen := feedsByPath[feed.GroupPath]; !seen {
			paths = append(paths, feed.GroupPath)
		}
		feedsByPath[feed.GroupPath] = append(feedsByPath[feed.GroupPath], feed)
	}
	for _, path := range emptyGroups {
		if path == "" {
			continue
		}
		if _, seen := feedsByPath[path]; !seen {
			feedsByPath[path] = nil
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	roots := make([]*Node, 0, len(paths))
	for _, path := range paths {
		roots = insertPath(roots, SplitPath(path), "", feedsByPath[path])
	}

	for _, root := range roots {
		recomputeUnread(root)
	}
	return roots
}

func insertPath(siblings []*Node, segments []string, prefix string, feeds []storage.Feed) []*Node {
	if len(segments) == 0 {
		return siblings
	}
	title := segments[0]
	path := title
	if prefix != "" {
		path = prefix + Separator + title
	}

	var node *Node
	for _, sibling := range siblings {
		if sibling.Title == title {
			node = sibling
			break
		}
	}
	if node == nil {
		node = &Node{Title: title, Path: path}
		siblings = append(siblings, node)
	}

	if len(segments) == 1 {
		node.Feeds = append(node.Feeds, feeds...)
		return siblings
	}
	node.Children = insertPath(node.Children, segments[1:], path, feeds)
	return siblings
}

func recomputeUnread(node *Node) int {
	total := 0
	for _, feed := range node.Feeds {
		total += feed.UnreadCount
	}
	for _, child := range node.Children {
		total += recomputeUnread(child)
	}
	node.Unread = total
	return total
}

// AllPaths collects the path of every node in the forest, depth first.
func AllPaths(roots []*Node) []string {
	out := make([]string, 0, len(roots)*2)
	var walk func(*Node)
	walk = func(n *Node) {
		out = append(out, n.Path)
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return out
}
