package grouptree

import "github.com/sujaltv/lazyfeed/internal/storage"

type RowKind string

const (
	RowAll   RowKind = "all"
	RowGroup RowKind = "group"
	RowFeed  RowKind = "feed"
)

// Row is one line of the feeds pane: the synthetic All row, a group header,
// or a feed. Group headers carry their full path and collapse state; feed
// rows carry the record itself.
type Row struct {
	Kind      RowKind
	Title     string
	Path      string
	Depth     int
	Collapsed bool
	Unread    int
	Feed      storage.Feed
}

// FlattenRows produces the display list: All first, then standalone feeds
// in record order, then the group forest depth first. A collapsed header is
// still rendered; only its descendants are suppressed.
func FlattenRows(feeds []storage.Feed, roots []*Node, collapsed map[string]bool) []Row {
	totalUnread := 0
	for _, feed := range feeds {
		totalUnread += feed.UnreadCount
	}

	rows := make([]Row, 0, len(feeds)+len(roots)*2+1)
	rows = append(rows, Row{Kind: RowAll, Title: "All", Unread: totalUnread})

	for _, feed := range feeds {
		if feed.GroupPath != "" {
			continue
		}
		rows = append(rows, Row{
			Kind:   RowFeed,
			Title:  feed.Title,
			Unread: feed.UnreadCount,
			Feed:   feed,
		})
	}

	for _, root := range roots {
		rows = appendNode(rows, root, 0, collapsed)
	}
	return rows
}

func appendNode(rows []Row, node *Node, depth int, collapsed map[string]bool) []Row {
	isCollapsed := collapsed[node.Path]
	rows = append(rows, Row{
		Kind:      RowGroup,
		Title:     node.Title,
		Path:      node.Path,
		Depth:     depth,
		Collapsed: isCollapsed,
		Unread:    node.Unread,
	})
	if isCollapsed {
		return rows
	}
	for _, feed := range node.Feeds {
		rows = append(rows, Row{
			Kind:   RowFeed,
			Title:  feed.Title,
			Path:   feed.GroupPath,
			Depth:  depth + 1,
			Unread: feed.UnreadCount,
			Feed:   feed,
		})
	}
	for _, child := range node.Children {
		rows = appendNode(rows, child, depth+1, collapsed)
	}
	return rows
}
