// Package catalog holds the in-memory channel catalog built from a playlist.
//
// An Index is assembled once through a Builder and is read-only afterwards.
// Every Index method is safe for concurrent use without locking because
// nothing mutates an Index after Build returns.
package catalog

import (
	"sort"
	"strings"
)

// PlaceholderIcon is the fallback thumbnail used whenever a channel has no
// logo or its logo cannot be fetched.
const PlaceholderIcon = "/static/placeholder.png"

// Channel is a single playable entry.
type Channel struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	IconURL string `json:"iconUrl"`
}

// NewChannel returns a channel, substituting the placeholder for an empty icon.
func NewChannel(name, url, iconURL string) Channel {
	if iconURL == "" {
		iconURL = PlaceholderIcon
	}
	return Channel{Name: name, URL: url, IconURL: iconURL}
}

// Category is a named group of channels in first-seen order.
type Category struct {
	Name     string    `json:"name"`
	Channels []Channel `json:"channels"`
}

// CategorySummary is one row of the category listing.
type CategorySummary struct {
	Name         string `json:"name"`
	ChannelCount int    `json:"channelCount"`
}

// SearchResult pairs a matched channel with its category.
type SearchResult struct {
	Category string  `json:"category"`
	Channel  Channel `json:"channel"`
}

type entry struct {
	category  string
	channel   Channel
	lowerName string
}

// Builder accumulates channels while a playlist is parsed. It is not safe
// for concurrent use.
type Builder struct {
	categories map[string]*Category
	order      []string
	entries    []entry
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{categories: make(map[string]*Category)}
}

// Add appends ch to the named category, creating the category on first use.
// Duplicate channels are kept.
func (b *Builder) Add(category string, ch Channel) {
	c, ok := b.categories[category]
	if !ok {
		c = &Category{Name: category}
		b.categories[category] = c
		b.order = append(b.order, category)
	}
	c.Channels = append(c.Channels, ch)
	b.entries = append(b.entries, entry{
		category:  category,
		channel:   ch,
		lowerName: strings.ToLower(ch.Name),
	})
}

// Build freezes the accumulated state into an Index. The Builder must not be
// used afterwards.
func (b *Builder) Build() *Index {
	idx := &Index{
		categories: make(map[string]Category, len(b.categories)),
		entries:    b.entries,
	}
	for _, name := range b.order {
		c := b.categories[name]
		idx.categories[name] = Category{Name: c.Name, Channels: c.Channels}
		idx.listing = append(idx.listing, CategorySummary{Name: name, ChannelCount: len(c.Channels)})
	}
	sort.SliceStable(idx.listing, func(i, j int) bool {
		li, lj := strings.ToLower(idx.listing[i].Name), strings.ToLower(idx.listing[j].Name)
		if li != lj {
			return li < lj
		}
		return idx.listing[i].Name < idx.listing[j].Name
	})
	b.categories = nil
	b.entries = nil
	return idx
}

// Index is the immutable catalog.
type Index struct {
	categories map[string]Category
	listing    []CategorySummary
	entries    []entry
}

// Lookup returns the category with exactly this name. Matching is
// case-sensitive. The returned Channels slice is shared and must not be
// modified.
func (x *Index) Lookup(name string) (Category, bool) {
	c, ok := x.categories[name]
	return c, ok
}

// ListCategories returns every category sorted case-insensitively. A
// category exists only once a channel lands in it, so none is empty.
func (x *Index) ListCategories() []CategorySummary {
	out := make([]CategorySummary, len(x.listing))
	copy(out, x.listing)
	return out
}

// Search returns channels whose name contains term, ignoring case. Results
// are ordered by channel name, then category name, then playlist order.
// An empty term matches every channel.
func (x *Index) Search(term string) []SearchResult {
	needle := strings.ToLower(term)
	out := make([]SearchResult, 0)
	for _, e := range x.entries {
		if strings.Contains(e.lowerName, needle) {
			out = append(out, SearchResult{Category: e.category, Channel: e.channel})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Channel.Name != out[j].Channel.Name {
			return out[i].Channel.Name < out[j].Channel.Name
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// CategoryCount returns the number of categories.
func (x *Index) CategoryCount() int {
	return len(x.categories)
}

// ChannelCount returns the number of channels across all categories.
func (x *Index) ChannelCount() int {
	return len(x.entries)
}
