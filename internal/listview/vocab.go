package listview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fyrsmithlabs/vocabadmin/internal/api"
	"github.com/fyrsmithlabs/vocabadmin/internal/vocab"
)

// Status filters words by publication state.
type Status string

const (
	StatusAll         Status = "all"
	StatusPublished   Status = "published"
	StatusUnpublished Status = "unpublished"
)

// Statuses lists the filter choices in display order.
var Statuses = []Status{StatusAll, StatusPublished, StatusUnpublished}

// ParseStatus parses a filter value. The empty string is StatusAll.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusPublished:
		return StatusPublished, nil
	case StatusUnpublished:
		return StatusUnpublished, nil
	}
	return StatusAll, fmt.Errorf("unknown status %q: want all, published or unpublished", s)
}

// Matches reports whether a word with the given flag passes the filter.
func (s Status) Matches(published bool) bool {
	switch s {
	case StatusPublished:
		return published
	case StatusUnpublished:
		return !published
	default:
		return true
	}
}

// MatchName is a case-insensitive substring match. An empty term matches all.
func MatchName(name, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}

// CategoryMatch filters categories by name. Status does not apply.
func CategoryMatch(c vocab.Category, q Query) bool {
	return MatchName(c.Name, q.Search)
}

// WordMatch filters words by name and publication state.
func WordMatch(w vocab.Word, q Query) bool {
	return MatchName(w.Name, q.Search) && q.Status.Matches(w.Published)
}

// PublishedCounts counts published and unpublished words.
func PublishedCounts(words []vocab.Word) (published, unpublished int) {
	for _, w := range words {
		if w.Published {
			published++
		} else {
			unpublished++
		}
	}
	return published, unpublished
}

// User-facing load failure messages.
const (
	MsgCategoriesFailed = "Failed to load categories"
	MsgWordsFailed      = "Failed to load words for this category"
	MsgCategoryFailed   = "Failed to fetch category data"
)

// CategorySource lists categories.
type CategorySource interface {
	Categories(ctx context.Context) ([]vocab.Category, error)
}

// WordSource fetches a category with its words.
type WordSource interface {
	Category(ctx context.Context, id vocab.ID) (*vocab.CategoryDetail, error)
}

// NewCategoryView returns the category list view.
func NewCategoryView(src CategorySource, opts ...Option) *View[vocab.Category] {
	opts = append([]Option{
		WithName("categories"),
		WithErrorMessage(func(error) string { return MsgCategoriesFailed }),
	}, opts...)
	return New[vocab.Category](src.Categories, CategoryMatch, opts...)
}

// WordView is the word list of one category.
type WordView struct {
	*View[vocab.Word]

	id      vocab.ID
	navName string

	nameMu      sync.Mutex
	pending     map[uint64]string
	fetchedName string
}

// NewWordView returns the word list view for category id. navName is the
// display name carried over from the category list and may be empty.
func NewWordView(src WordSource, id vocab.ID, navName string, opts ...Option) *WordView {
	wv := &WordView{id: id, navName: strings.TrimSpace(navName), pending: map[uint64]string{}}

	// The fetched name only becomes visible when the view accepts the words
	// from the same activation.
	fetch := func(ctx context.Context) ([]vocab.Word, error) {
		detail, err := src.Category(ctx, id)
		if err != nil {
			return nil, err
		}
		wv.nameMu.Lock()
		wv.pending[generation(ctx)] = detail.Name
		wv.nameMu.Unlock()
		return detail.Words, nil
	}

	opts = append([]Option{
		WithName("words"),
		WithErrorMessage(func(err error) string {
			if errors.Is(err, api.ErrNotSucceeded) {
				return MsgCategoryFailed
			}
			return MsgWordsFailed
		}),
	}, opts...)

	wv.View = New[vocab.Word](fetch, WordMatch, opts...)
	wv.View.committed = wv.commitName
	return wv
}

func (w *WordView) commitName(gen uint64) {
	w.nameMu.Lock()
	defer w.nameMu.Unlock()
	w.fetchedName = w.pending[gen]
	clear(w.pending)
}

// CategoryID returns the category the view lists.
func (w *WordView) CategoryID() vocab.ID {
	return w.id
}

// Title is the category name carried from navigation, falling back to the
// fetched name and then to the id.
func (w *WordView) Title() string {
	if w.navName != "" {
		return w.navName
	}
	w.nameMu.Lock()
	defer w.nameMu.Unlock()
	if w.fetchedName != "" {
		return w.fetchedName
	}
	return "Category " + w.id.String()
}
