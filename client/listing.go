package client

import (
	"sort"

	"github.com/tidwall/gjson"
)

// Alias keys, in priority order. Callers depend on this precedence.
var (
	listingKeys = []string{"items", "data", "list"}
	slugKeys    = []string{"slug", "key", "id", "name"}
	urlKeys     = []string{"url", "value", "target"}
)

// LinkEntry is one short link.
type LinkEntry struct {
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

// Links maps slug to target URL.
type Links map[string]string

// Entries returns the links sorted by slug.
func (l Links) Entries() []LinkEntry {
	entries := make([]LinkEntry, 0, len(l))
	for slug, url := range l {
		entries = append(entries, LinkEntry{Slug: slug, URL: url})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Slug < entries[j].Slug
	})
	return entries
}

type listingShape int

const (
	shapeOther listingShape = iota
	shapeWrapped
	shapeArray
	shapeMapping
)

// classifyListing decides which of the known listing shapes data has and
// returns the part of the document the shape is about.
func classifyListing(data []byte) (listingShape, gjson.Result) {
	if !gjson.ValidBytes(data) {
		return shapeOther, gjson.Result{}
	}
	root := gjson.ParseBytes(data)
	switch {
	case root.IsArray():
		return shapeArray, root
	case root.IsObject():
		for _, key := range listingKeys {
			if v := root.Get(gjson.Escape(key)); v.IsArray() {
				return shapeWrapped, v
			}
		}
		return shapeMapping, root
	default:
		return shapeOther, root
	}
}

// FlattenListing turns a short-link listing into a slug to URL map.
// Unknown or malformed documents yield an empty map, never an error.
func FlattenListing(data []byte) Links {
	links := Links{}

	shape, doc := classifyListing(data)
	switch shape {
	case shapeWrapped, shapeArray:
		collectItems(doc, links)
	case shapeMapping:
		doc.ForEach(func(key, value gjson.Result) bool {
			links[key.String()] = textOf(value)
			return true
		})
	}
	return links
}

// collectItems adds every object element that resolves to a string slug
// and a string URL. Later duplicates overwrite earlier ones.
func collectItems(items gjson.Result, links Links) {
	items.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		slug := firstTruthy(item, slugKeys)
		url := firstTruthy(item, urlKeys)
		if slug.Type != gjson.String || url.Type != gjson.String {
			return true
		}
		links[slug.Str] = url.Str
		return true
	})
}

func firstTruthy(obj gjson.Result, keys []string) gjson.Result {
	for _, key := range keys {
		if v := obj.Get(gjson.Escape(key)); truthy(v) {
			return v
		}
	}
	return gjson.Result{}
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	case gjson.True:
		return true
	case gjson.JSON:
		if v.IsArray() {
			return len(v.Array()) > 0
		}
		return len(v.Map()) > 0
	default:
		return false
	}
}

func textOf(v gjson.Result) string {
	if v.Type == gjson.JSON {
		return v.Raw
	}
	return v.String()
}
