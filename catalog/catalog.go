// Package catalog holds the fixed set of known search terms and the
// entry every unmatched query falls back to.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

// Key is a normalized catalog search term.
type Key string

const (
	Lofi         Key = "lofi"
	Drake        Key = "drake"
	TaylorSwift  Key = "taylor swift"
	TheWeeknd    Key = "the weeknd"
	BillieEilish Key = "billie eilish"
)

// DefaultKey is the entry an unmatched query resolves to.
const DefaultKey = Lofi

var ErrMissingDefault = errors.New("catalog has no default entry")

type Entry struct {
	VideoID  string `toml:"video_id"`
	Title    string `toml:"title"`
	Duration int    `toml:"duration"` // seconds
}

func (e Entry) validate() error {
	if e.VideoID == "" {
		return errors.New("video_id is required")
	}
	if e.Title == "" {
		return errors.New("title is required")
	}
	if e.Duration <= 0 {
		return errors.New("duration must be positive")
	}
	return nil
}

var builtin = map[Key]Entry{
	Lofi:         {VideoID: "jfKfPfyJRdk", Title: "lofi hip hop radio - beats to relax/study to", Duration: 12345},
	Drake:        {VideoID: "uxpDa-c-4Mc", Title: "Drake - Hotline Bling", Duration: 295},
	TaylorSwift:  {VideoID: "e-ORhEE9VVg", Title: "Taylor Swift - Blank Space", Duration: 273},
	TheWeeknd:    {VideoID: "4NRXx6U8ABQ", Title: "The Weeknd - Blinding Lights", Duration: 263},
	BillieEilish: {VideoID: "DyDfgMOUjCI", Title: "Billie Eilish - bad guy", Duration: 200},
}

// Catalog is read-only once built. Share it by pointer.
type Catalog struct {
	entries map[Key]Entry
}

// Default returns the built-in catalog.
func Default() *Catalog {
	entries := make(map[Key]Entry, len(builtin))
	for k, v := range builtin {
		entries[k] = v
	}
	return &Catalog{entries: entries}
}

type fileEntry struct {
	Key string `toml:"key"`
	Entry
}

type file struct {
	Entries []fileEntry `toml:"entry"`
}

// Load returns the built-in catalog with the entries from the TOML file at
// path merged over it. An empty path returns Default().
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	var f file
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if err := c.merge(f.Entries); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}

	log.WithFields(log.Fields{"module": "catalog", "path": path}).
		Infof("loaded %d catalog overrides, %d entries total", len(f.Entries), len(c.entries))
	return c, nil
}

// Parse is Load for an in-memory TOML document.
func Parse(data string) (*Catalog, error) {
	var f file
	if err := toml.Unmarshal([]byte(data), &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	c := Default()
	if err := c.merge(f.Entries); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) merge(entries []fileEntry) error {
	for i, fe := range entries {
		key := Normalize(fe.Key)
		if key == "" {
			return fmt.Errorf("entry %d: key is required", i)
		}
		if err := fe.Entry.validate(); err != nil {
			return fmt.Errorf("entry %q: %w", key, err)
		}
		c.entries[key] = fe.Entry
	}
	if _, ok := c.entries[DefaultKey]; !ok {
		return ErrMissingDefault
	}
	return nil
}

// Normalize lowercases and trims a search term so lookups are case-insensitive.
func Normalize(text string) Key {
	return Key(strings.ToLower(strings.TrimSpace(text)))
}

// Lookup returns the entry for text, or the default entry with matched=false.
// It never fails.
func (c *Catalog) Lookup(text string) (entry Entry, matched bool) {
	if e, ok := c.entries[Normalize(text)]; ok {
		return e, true
	}
	return c.entries[DefaultKey], false
}

func (c *Catalog) DefaultEntry() Entry {
	return c.entries[DefaultKey]
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// Keys returns the catalog keys in sorted order.
func (c *Catalog) Keys() []Key {
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
