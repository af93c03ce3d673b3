// CLAUDE:SUMMARY RSS 2.0 and Atom 1.0 items/entries normalized into ContentItems in a single token pass.
// Package feed parses RSS 2.0 and Atom 1.0 documents into content items.
//
// The decoder walks the token stream once and decodes every <item> and
// <entry> it meets, wherever it sits, so mixed or loosely-nested documents
// still yield items. Decoding is non-strict (HTML entities, mismatched end tags)
// and non-UTF-8 documents are transcoded via their declared charset.
// AutoClose stays off: HTML treats <link> as void, RSS does not.
package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/net/html/charset"

	"github.com/hazyhaar/radar/radar/internal/model"
	"github.com/hazyhaar/radar/radar/internal/sanitize"
)

// SummaryLen bounds the stored summary, in runes.
const SummaryLen = 220

// Parse extracts items from an RSS or Atom document. Items without a title
// or URL are dropped. A missing or unparseable date becomes now.
// Malformed XML yields no items and a non-nil error.
func Parse(data []byte, source string, now time.Time) ([]model.ContentItem, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = false
	d.Entity = xml.HTMLEntity
	d.CharsetReader = charset.NewReaderLabel

	var items []model.ContentItem
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("feed: parse %s: %w", source, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		var item model.ContentItem
		switch strings.ToLower(se.Name.Local) {
		case "item":
			var raw rssItem
			if err := d.DecodeElement(&raw, &se); err != nil {
				return nil, fmt.Errorf("feed: decode rss item from %s: %w", source, err)
			}
			item = raw.normalize(source, now)
		case "entry":
			var raw atomEntry
			if err := d.DecodeElement(&raw, &se); err != nil {
				return nil, fmt.Errorf("feed: decode atom entry from %s: %w", source, err)
			}
			item = raw.normalize(source, now)
		default:
			continue
		}

		if item.Title == "" || item.URL == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// --- RSS 2.0 ---

type rssItem struct {
	Title       string    `xml:"title"`
	Links       []rssLink `xml:"link"`
	Description rawText   `xml:"description"`
	Encoded     rawText   `xml:"encoded"` // content:encoded
	PubDate     string    `xml:"pubDate"`
	Date        string    `xml:"date"` // dc:date
}

// rssLink also matches atom:link children some RSS feeds embed in items.
type rssLink struct {
	Text string `xml:",chardata"`
	Href string `xml:"href,attr"`
}

func (r rssItem) normalize(source string, now time.Time) model.ContentItem {
	var link string
	for _, l := range r.Links {
		if link = sanitize.Link(l.Text); link != "" {
			break
		}
	}
	if link == "" {
		for _, l := range r.Links {
			if link = sanitize.Link(l.Href); link != "" {
				break
			}
		}
	}

	summary := r.Description.Inner
	if strings.TrimSpace(summary) == "" {
		summary = r.Encoded.Inner
	}
	date := r.PubDate
	if strings.TrimSpace(date) == "" {
		date = r.Date
	}

	return model.ContentItem{
		Title:       sanitize.Text(r.Title),
		URL:         link,
		Summary:     sanitize.Truncate(sanitize.Text(summary), SummaryLen),
		PublishedAt: parseDate(date, now),
		Source:      source,
	}
}

// rawText keeps inner markup so unescaped HTML in RSS descriptions and
// type="xhtml" Atom bodies survive decoding; the sanitizer strips it afterwards.
type rawText struct {
	Inner string `xml:",innerxml"`
}

// --- Atom 1.0 ---

type atomEntry struct {
	Title     rawText   `xml:"title"`
	Links     []atomLink `xml:"link"`
	Summary   rawText   `xml:"summary"`
	Content   rawText   `xml:"content"`
	Updated   string     `xml:"updated"`
	Published string     `xml:"published"`
}


type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Text string `xml:",chardata"`
}

func (e atomEntry) normalize(source string, now time.Time) model.ContentItem {
	summary := e.Summary.Inner
	if strings.TrimSpace(summary) == "" {
		summary = e.Content.Inner
	}
	date := e.Updated
	if strings.TrimSpace(date) == "" {
		date = e.Published
	}

	return model.ContentItem{
		Title:       sanitize.Text(e.Title.Inner),
		URL:         atomEntryLink(e.Links),
		Summary:     sanitize.Truncate(sanitize.Text(summary), SummaryLen),
		PublishedAt: parseDate(date, now),
		Source:      source,
	}
}

// atomEntryLink prefers an alternate (or rel-less) href, then any href,
// then element text.
func atomEntryLink(links []atomLink) string {
	for _, l := range links {
		if (l.Rel == "alternate" || l.Rel == "") && strings.TrimSpace(l.Href) != "" {
			return sanitize.Link(l.Href)
		}
	}
	for _, l := range links {
		if href := sanitize.Link(l.Href); href != "" {
			return href
		}
	}
	for _, l := range links {
		if text := sanitize.Link(l.Text); text != "" {
			return text
		}
	}
	return ""
}

func parseDate(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(sanitize.Text(raw))
	if raw == "" {
		return now.UTC()
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return now.UTC()
	}
	return t.UTC()
}
