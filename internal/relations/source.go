package relations

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/jontk/ctb/internal/errors"
)

// DefaultPageSize is used when a query asks for no page size.
const DefaultPageSize = 10

// Query selects the entries offered for connection.
type Query struct {
	Search   string
	Page     int
	PageSize int
	// Exclude lists ids that are not offered, usually the connected ones.
	Exclude []string
}

// Page is one page of search results.
type Page struct {
	Items     []Item
	Page      int
	PageSize  int
	PageCount int
	Total     int
}

// HasMore reports whether a later page exists.
func (p Page) HasMore() bool {
	return p.Page < p.PageCount
}

// Source loads the entries of a target content type.
type Source interface {
	Search(ctx context.Context, target string, q Query) (Page, error)
}

// MemorySource keeps entries in memory, per target uid.
type MemorySource struct {
	mu      sync.RWMutex
	entries map[string][]Item
}

// NewMemorySource creates an empty source
func NewMemorySource() *MemorySource {
	return &MemorySource{entries: make(map[string][]Item)}
}

// Add appends entries for target.
func (s *MemorySource) Add(target string, items ...Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[target] = append(s.entries[target], items...)
}

// ReadEntries builds a source from a YAML map of target uid to entries.
func ReadEntries(r io.Reader) (*MemorySource, error) {
	var doc map[string][]Item
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to parse entries")
	}
	s := NewMemorySource()
	for target, items := range doc {
		for i, it := range items {
			if it.ID == "" {
				return nil, errors.Invalidf("entry %d of %s has no id", i+1, target)
			}
		}
		s.Add(target, items...)
	}
	return s, nil
}

// Lookup returns the entry of target with the given id.
func (s *MemorySource) Lookup(target, id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.entries[target] {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Search returns the entries of target whose label contains q.Search,
// ignoring case, in insertion order.
func (s *MemorySource) Search(ctx context.Context, target string, q Query) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if q.Page < 0 || q.PageSize < 0 {
		return Page{}, errors.Invalidf("invalid page %d of size %d", q.Page, q.PageSize)
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}

	s.mu.RLock()
	entries, ok := s.entries[target]
	s.mu.RUnlock()
	if !ok {
		return Page{}, errors.NotFoundf("no entries for %s", target)
	}

	// cases.Caser keeps state and is not safe for concurrent use
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(q.Search))
	var matches []Item
	for _, it := range entries {
		if slices.Contains(q.Exclude, it.ID) {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(it.Label), needle) {
			continue
		}
		matches = append(matches, it)
	}

	page := Page{
		Page:      q.Page,
		PageSize:  q.PageSize,
		Total:     len(matches),
		PageCount: (len(matches) + q.PageSize - 1) / q.PageSize,
	}
	start := (q.Page - 1) * q.PageSize
	if start < len(matches) {
		end := min(start+q.PageSize, len(matches))
		page.Items = slices.Clone(matches[start:end])
	}
	return page, nil
}

// Available searches the entries that can still be connected to f.
func (f *Field) Available(ctx context.Context, src Source, search string, page int) (Page, error) {
	return src.Search(ctx, f.Attribute.Target(), Query{
		Search:  search,
		Page:    page,
		Exclude: f.IDs(),
	})
}
