// Package tasks keeps the client-side view of the remote task list: the query
// that drives it, the page last fetched, and the mutations applied to it.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sandeepkv93/taskboard/internal/api"
	"github.com/sandeepkv93/taskboard/internal/model"
)

const DefaultPageSize = 5

// ErrSuperseded is returned by Refresh when a newer fetch, an Abandon or a
// Reset happened while the request was in flight. Its response is discarded.
var ErrSuperseded = errors.New("tasks: fetch superseded")

// Getter is the read side of the API client.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// Query is the full set of parameters driving the task list.
type Query struct {
	Page     int
	Search   string
	Status   model.Status
	Priority model.Priority
	Sort     model.SortKey
}

func DefaultQuery(sort model.SortKey) Query {
	if !sort.IsValid() {
		sort = model.DefaultSortKey
	}
	return Query{Page: 1, Sort: sort}
}

// Values encodes q for GET /tasks. Absent filters are sent as empty values.
func (q Query) Values(limit int) url.Values {
	page := q.Page
	if page < 1 {
		page = 1
	}
	return url.Values{
		"page":     {strconv.Itoa(page)},
		"limit":    {strconv.Itoa(limit)},
		"status":   {string(q.Status)},
		"search":   {q.Search},
		"sort":     {string(q.Sort)},
		"priority": {string(q.Priority)},
	}
}

// Page is one server response, kept verbatim.
type Page struct {
	Tasks      []model.Task     `json:"data"`
	Pagination model.Pagination `json:"pagination"`
}

type QueryOption func(*QueryEngine)

func WithPageSize(n int) QueryOption {
	return func(e *QueryEngine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

func WithDefaultSort(k model.SortKey) QueryOption {
	return func(e *QueryEngine) {
		if k.IsValid() {
			e.defaultSort = k
		}
	}
}

// WithTeardown sets the hook run when the server rejects the session.
func WithTeardown(fn func()) QueryOption {
	return func(e *QueryEngine) { e.teardown = fn }
}

func WithQueryLogger(l zerolog.Logger) QueryOption {
	return func(e *QueryEngine) { e.logger = l }
}

type QueryEngine struct {
	api         Getter
	pageSize    int
	defaultSort model.SortKey
	teardown    func()
	logger      zerolog.Logger

	mu         sync.Mutex
	query      Query
	page       Page
	fetched    bool
	lastErr    error
	seq        uint64
	cancelLast context.CancelFunc
}

func NewQueryEngine(getter Getter, opts ...QueryOption) *QueryEngine {
	e := &QueryEngine{
		api:         getter,
		pageSize:    DefaultPageSize,
		defaultSort: model.DefaultSortKey,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With().Str("component", "query").Logger()
	e.query = DefaultQuery(e.defaultSort)
	return e
}

func (e *QueryEngine) PageSize() int { return e.pageSize }

func (e *QueryEngine) Query() Query {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

// Tasks returns a copy of the page last applied.
func (e *QueryEngine) Tasks() []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.Task(nil), e.page.Tasks...)
}

func (e *QueryEngine) Pagination() model.Pagination {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.page.Pagination
}

// Fetched reports whether any page has been applied since the last reset.
func (e *QueryEngine) Fetched() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fetched
}

// InFlight reports whether a Refresh is waiting on the server.
func (e *QueryEngine) InFlight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancelLast != nil
}

// LastError is the error of the most recent applied fetch, or nil.
func (e *QueryEngine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *QueryEngine) SetSearch(s string) Query {
	return e.mutate(func(q *Query) { q.Search = s })
}

func (e *QueryEngine) SetStatus(s model.Status) Query {
	return e.mutate(func(q *Query) { q.Status = s })
}

func (e *QueryEngine) SetPriority(p model.Priority) Query {
	return e.mutate(func(q *Query) { q.Priority = p })
}

func (e *QueryEngine) SetSort(k model.SortKey) Query {
	if !k.IsValid() {
		k = e.defaultSort
	}
	return e.mutate(func(q *Query) { q.Sort = k })
}

// mutate applies a filter change. Every filter change lands on page 1.
func (e *QueryEngine) mutate(fn func(*Query)) Query {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.query)
	e.query.Page = 1
	return e.query
}

// SetPage moves to page n, clamped to the server-reported range.
func (e *QueryEngine) SetPage(n int) Query {
	e.mu.Lock()
	defer e.mu.Unlock()
	pages := e.page.Pagination.Pages
	if pages < 1 {
		pages = 1
	}
	if n > pages {
		n = pages
	}
	if n < 1 {
		n = 1
	}
	e.query.Page = n
	return e.query
}

func (e *QueryEngine) NextPage() Query { return e.SetPage(e.Query().Page + 1) }

func (e *QueryEngine) PrevPage() Query { return e.SetPage(e.Query().Page - 1) }

// FetchPage runs q once without touching engine state.
func (e *QueryEngine) FetchPage(ctx context.Context, q Query) (Page, error) {
	var page Page
	if err := e.api.Get(ctx, "/tasks", q.Values(e.pageSize), &page); err != nil {
		return Page{}, err
	}
	if page.Tasks == nil {
		page.Tasks = []model.Task{}
	}
	return page, nil
}

// Refresh fetches the current query and applies the response if no newer
// fetch was issued meanwhile. Starting a refresh cancels the one before it.
func (e *QueryEngine) Refresh(ctx context.Context) (Page, error) {
	e.mu.Lock()
	e.seq++
	seq := e.seq
	if e.cancelLast != nil {
		e.cancelLast()
	}
	ctx, cancel := context.WithCancel(ctx)
	e.cancelLast = cancel
	q := e.query
	e.mu.Unlock()
	defer cancel()

	page, err := e.FetchPage(ctx, q)

	e.mu.Lock()
	if seq != e.seq {
		e.mu.Unlock()
		e.logger.Debug().Uint64("seq", seq).Msg("discarding superseded fetch")
		return Page{}, ErrSuperseded
	}
	e.cancelLast = nil
	if err == nil {
		e.page = page
		e.fetched = true
		e.lastErr = nil
		e.mu.Unlock()
		return page, nil
	}
	e.page = Page{}
	e.fetched = true
	e.lastErr = err
	e.mu.Unlock()

	if api.IsUnauthorized(err) {
		e.Unauthorized()
		return Page{}, err
	}
	e.logger.Warn().Err(err).Int("page", q.Page).Msg("fetch tasks")
	return Page{}, fmt.Errorf("tasks: fetch page %d: %w", q.Page, err)
}

// Unauthorized resets the engine and runs the teardown hook.
func (e *QueryEngine) Unauthorized() {
	e.logger.Info().Msg("session rejected by server")
	e.Reset()
	if e.teardown != nil {
		e.teardown()
	}
}

// Abandon cancels and invalidates any fetch in flight.
func (e *QueryEngine) Abandon() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.abandonLocked()
}

func (e *QueryEngine) abandonLocked() {
	e.seq++
	if e.cancelLast != nil {
		e.cancelLast()
		e.cancelLast = nil
	}
}

// Reset abandons pending work and forgets the query and page.
func (e *QueryEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.abandonLocked()
	e.query = DefaultQuery(e.defaultSort)
	e.page = Page{}
	e.fetched = false
	e.lastErr = nil
}

// Patch replaces the local copy of t, matched by id.
func (e *QueryEngine) Patch(t model.Task) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.page.Tasks {
		if e.page.Tasks[i].ID == t.ID {
			e.page.Tasks[i] = t
			return true
		}
	}
	return false
}

// Drop removes the local copies of ids.
func (e *QueryEngine) Drop(ids ...string) {
	if len(ids) == 0 {
		return
	}
	gone := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.page.Tasks[:0:0]
	for _, t := range e.page.Tasks {
		if _, ok := gone[t.ID]; !ok {
			kept = append(kept, t)
		}
	}
	e.page.Tasks = kept
}

func (e *QueryEngine) lookup(id string) (model.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.page.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}
