package config

import "strings"

// Tree editing operations over the persisted feed tree. Paths use the same
// " > " joined form as everywhere else; each operation recurses one segment
// at a time and matches groups by title at the current depth.

// SplitPath splits a canonical group path into its segments.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, " > ")
}

// JoinPath is the inverse of SplitPath.
func JoinPath(segments []string) string {
	return strings.Join(segments, " > ")
}

// InsertGroup creates the group at path, walking and creating every segment.
// Inserting an existing group is a no-op.
func InsertGroup(items *[]FeedItem, path string) {
	insertGroup(items, SplitPath(path))
}

func insertGroup(items *[]FeedItem, segments []string) {
	if len(segments) == 0 {
		return
	}
	title := segments[0]
	for i := range *items {
		if g := (*items)[i].Group; g != nil && g.Title == title {
			insertGroup(&g.Feeds, segments[1:])
			return
		}
	}
	group := &FeedGroup{Title: title}
	*items = append(*items, FeedItem{Group: group})
	insertGroup(&group.Feeds, segments[1:])
}

// InsertFeed appends the feed at the terminal group of path, creating
// intermediate groups as needed. An empty path appends at the root.
func InsertFeed(items *[]FeedItem, path string, feed FeedSource) {
	insertFeed(items, SplitPath(path), feed)
}

func insertFeed(items *[]FeedItem, segments []string, feed FeedSource) {
	if len(segments) == 0 {
		*items = append(*items, FeedItem{Feed: &feed})
		return
	}
	title := segments[0]
	for i := range *items {
		if g := (*items)[i].Group; g != nil && g.Title == title {
			insertFeed(&g.Feeds, segments[1:], feed)
			return
		}
	}
	group := &FeedGroup{Title: title}
	*items = append(*items, FeedItem{Group: group})
	insertFeed(&group.Feeds, segments[1:], feed)
}

// RemoveFeed removes the first feed whose feed-URL field equals fetchURL.
// Sources without an explicit feed URL never match; the display URL is not
// consulted. Emptied groups are left in place.
func RemoveFeed(items *[]FeedItem, fetchURL string) bool {
	_, ok := ExtractFeed(items, fetchURL)
	return ok
}

// ExtractFeed removes and returns the first feed whose feed-URL field
// equals fetchURL. This is the cut half of cut/paste.
func ExtractFeed(items *[]FeedItem, fetchURL string) (FeedSource, bool) {
	for i := range *items {
		item := (*items)[i]
		if item.Feed != nil && item.Feed.Feed == fetchURL && fetchURL != "" {
			removed := *item.Feed
			*items = append((*items)[:i], (*items)[i+1:]...)
			return removed, true
		}
		if item.Group != nil {
			if removed, ok := ExtractFeed(&item.Group.Feeds, fetchURL); ok {
				return removed, true
			}
		}
	}
	return FeedSource{}, false
}

// RemoveGroup deletes the group at path wholesale, nested content included.
// Ancestors stay in place.
func RemoveGroup(items *[]FeedItem, path string) bool {
	_, ok := ExtractGroup(items, path)
	return ok
}

// ExtractGroup removes and returns the group at path.
func ExtractGroup(items *[]FeedItem, path string) (FeedGroup, bool) {
	return extractGroup(items, SplitPath(path))
}

func extractGroup(items *[]FeedItem, segments []string) (FeedGroup, bool) {
	if len(segments) == 0 {
		return FeedGroup{}, false
	}
	title := segments[0]
	for i := range *items {
		g := (*items)[i].Group
		if g == nil || g.Title != title {
			continue
		}
		if len(segments) == 1 {
			removed := *g
			*items = append((*items)[:i], (*items)[i+1:]...)
			return removed, true
		}
		return extractGroup(&g.Feeds, segments[1:])
	}
	return FeedGroup{}, false
}

// RenameGroup changes the title of the group at path.
func RenameGroup(items *[]FeedItem, path, newTitle string) bool {
	return renameGroup(items, SplitPath(path), newTitle)
}

func renameGroup(items *[]FeedItem, segments []string, newTitle string) bool {
	if len(segments) == 0 {
		return false
	}
	title := segments[0]
	for i := range *items {
		g := (*items)[i].Group
		if g == nil || g.Title != title {
			continue
		}
		if len(segments) == 1 {
			g.Title = newTitle
			return true
		}
		if renameGroup(&g.Feeds, segments[1:], newTitle) {
			return true
		}
	}
	return false
}

// UpdateFeed rewrites the fields of the first feed matching originalURL by
// display URL or by feed URL. The display URL may itself be the edit target,
// hence the double match.
func UpdateFeed(items *[]FeedItem, originalURL string, updated FeedSource) bool {
	for i := range *items {
		item := (*items)[i]
		if item.Feed != nil {
			if item.Feed.URL == originalURL || (item.Feed.Feed != "" && item.Feed.Feed == originalURL) {
				*item.Feed = updated
				return true
			}
		}
		if item.Group != nil {
			if UpdateFeed(&item.Group.Feeds, originalURL, updated) {
				return true
			}
		}
	}
	return false
}

// PasteFeed inserts a previously extracted feed under path ("" for root),
// recreating the target hierarchy if it no longer exists.
func PasteFeed(items *[]FeedItem, path string, feed FeedSource) {
	insertFeed(items, SplitPath(path), feed)
}

// PasteGroup inserts a previously extracted group under parentPath (""
// for root), recreating the parent hierarchy if it no longer exists.
func PasteGroup(items *[]FeedItem, parentPath string, group FeedGroup) {
	pasteGroup(items, SplitPath(parentPath), group)
}

func pasteGroup(items *[]FeedItem, segments []string, group FeedGroup) {
	if len(segments) == 0 {
		g := group
		*items = append(*items, FeedItem{Group: &g})
		return
	}
	title := segments[0]
	for i := range *items {
		if g := (*items)[i].Group; g != nil && g.Title == title {
			pasteGroup(&g.Feeds, segments[1:], group)
			return
		}
	}
	parent := &FeedGroup{Title: title}
	*items = append(*items, FeedItem{Group: parent})
	pasteGroup(&parent.Feeds, segments[1:], group)
}

// FindFeed returns the first feed whose fetch URL equals url without
// modifying the tree.
func FindFeed(items []FeedItem, url string) (FeedSource, bool) {
	for _, item := range items {
		if item.Feed != nil && item.Feed.FetchURL() == url {
			return *item.Feed, true
		}
		if item.Group != nil {
			if found, ok := FindFeed(item.Group.Feeds, url); ok {
				return found, true
			}
		}
	}
	return FeedSource{}, false
}

// FindGroup returns the group at path without modifying the tree.
func FindGroup(items []FeedItem, path string) (*FeedGroup, bool) {
	return findGroup(items, SplitPath(path))
}

func findGroup(items []FeedItem, segments []string) (*FeedGroup, bool) {
	if len(segments) == 0 {
		return nil, false
	}
	title := segments[0]
	for i := range items {
		g := items[i].Group
		if g == nil || g.Title != title {
			continue
		}
		if len(segments) == 1 {
			return g, true
		}
		return findGroup(g.Feeds, segments[1:])
	}
	return nil, false
}

// CloneItems deep-copies a feed tree. Used to snapshot the in-memory config
// before an edit so a failed persist can roll back.
func CloneItems(items []FeedItem) []FeedItem {
	if items == nil {
		return nil
	}
	out := make([]FeedItem, len(items))
	for i, item := range items {
		if item.Feed != nil {
			feed := *item.Feed
			out[i].Feed = &feed
		}
		if item.Group != nil {
			out[i].Group = &FeedGroup{
				Title: item.Group.Title,
				Feeds: CloneItems(item.Group.Feeds),
			}
		}
	}
	return out
}
