package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FeedSource is a single subscription. URL is the human-facing site, Feed
// the fetchable feed URL; when Feed is empty the site URL doubles as both.
type FeedSource struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
	Feed  string `yaml:"feed,omitempty"`
}

// FetchURL is the unique key under which this source is stored and fetched.
func (f FeedSource) FetchURL() string {
	if f.Feed != "" {
		return f.Feed
	}
	return f.URL
}

// FeedGroup is a named collection of feeds and nested groups. An empty
// Feeds list is legitimate and represents an intentionally empty group.
type FeedGroup struct {
	Title string     `yaml:"title"`
	Feeds []FeedItem `yaml:"feeds"`
}

// FeedItem is one node of the config's feed tree: either a standalone feed
// source or a group. Exactly one of the two fields is set.
type FeedItem struct {
	Feed  *FeedSource
	Group *FeedGroup
}

// The two variants are distinguished in YAML by the presence of a "feeds"
// key: groups have one (possibly empty), feed sources never do.
func (it *FeedItem) UnmarshalYAML(node *yaml.Node) error {
	var probe struct {
		Title string      `yaml:"title"`
		URL   string      `yaml:"url"`
		Feed  string      `yaml:"feed"`
		Feeds *[]FeedItem `yaml:"feeds"`
	}
	if err := node.Decode(&probe); err != nil {
		return fmt.Errorf("decode feed item: %w", err)
	}
	if probe.Feeds != nil {
		it.Group = &FeedGroup{Title: probe.Title, Feeds: *probe.Feeds}
		it.Feed = nil
		return nil
	}
	it.Feed = &FeedSource{Title: probe.Title, URL: probe.URL, Feed: probe.Feed}
	it.Group = nil
	return nil
}

func (it FeedItem) MarshalYAML() (any, error) {
	if it.Group != nil {
		feeds := it.Group.Feeds
		if feeds == nil {
			feeds = []FeedItem{}
		}
		return struct {
			Title string     `yaml:"title"`
			Feeds []FeedItem `yaml:"feeds"`
		}{Title: it.Group.Title, Feeds: feeds}, nil
	}
	if it.Feed != nil {
		return *it.Feed, nil
	}
	return nil, fmt.Errorf("feed item has neither feed nor group")
}

// Title of either variant.
func (it FeedItem) Title() string {
	if it.Group != nil {
		return it.Group.Title
	}
	if it.Feed != nil {
		return it.Feed.Title
	}
	return ""
}

// FlatFeed is one subscription with its full group path ("" for standalone).
type FlatFeed struct {
	GroupPath string
	Source    FeedSource
}

// CollectFeeds flattens the feed tree into (group path, source) pairs in
// document order. Group paths join nested titles with " > ".
func (c *Config) CollectFeeds() []FlatFeed {
	out := make([]FlatFeed, 0, 16)
	for _, item := range c.Feeds {
		out = collectFeeds(item, "", out)
	}
	return out
}

func collectFeeds(item FeedItem, prefix string, out []FlatFeed) []FlatFeed {
	if item.Feed != nil {
		return append(out, FlatFeed{GroupPath: prefix, Source: *item.Feed})
	}
	if item.Group == nil {
		return out
	}
	path := item.Group.Title
	if prefix != "" {
		path = prefix + " > " + item.Group.Title
	}
	for _, child := range item.Group.Feeds {
		out = collectFeeds(child, path, out)
	}
	return out
}

// CollectEmptyGroups returns the full path of every group whose feeds list
// is empty, at any depth. These are first-class entries that must stay
// visible even though no feed record points at them.
func (c *Config) CollectEmptyGroups() []string {
	out := make([]string, 0, 4)
	for _, item := range c.Feeds {
		out = collectEmptyGroups(item, "", out)
	}
	return out
}

func collectEmptyGroups(item FeedItem, prefix string, out []string) []string {
	if item.Group == nil {
		return out
	}
	path := item.Group.Title
	if prefix != "" {
		path = prefix + " > " + item.Group.Title
	}
	if len(item.Group.Feeds) == 0 {
		return append(out, path)
	}
	for _, child := range item.Group.Feeds {
		out = collectEmptyGroups(child, path, out)
	}
	return out
}
