package tasks

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/sandeepkv93/taskboard/internal/api"
	"github.com/sandeepkv93/taskboard/internal/api/apitest"
	"github.com/sandeepkv93/taskboard/internal/model"
)

func TestQueryValuesEncodesEmptyFilters(t *testing.T) {
	v := DefaultQuery("").Values(5)
	want := map[string]string{"page": "1", "limit": "5", "status": "", "search": "", "sort": "createdAt:desc", "priority": ""}
	for k, expected := range want {
		if !v.Has(k) || v.Get(k) != expected {
			t.Fatalf("param %s: expected %q, got %q (present=%v)", k, expected, v.Get(k), v.Has(k))
		}
	}
}

func TestRefreshFirstPageNewestFirst(t *testing.T) {
	f := newFixture(t, 7)
	e := NewQueryEngine(f.client)

	page, err := e.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(page.Tasks) != 5 {
		t.Fatalf("expected page size 5, got %d", len(page.Tasks))
	}
	if page.Tasks[0].ID != f.seeded[6].ID || page.Tasks[4].ID != f.seeded[2].ID {
		t.Fatalf("expected newest first, got %v", ids(page.Tasks))
	}
	if page.Pagination.Page != 1 || page.Pagination.Pages != 2 {
		t.Fatalf("unexpected pagination %+v", page.Pagination)
	}
	if !reflect.DeepEqual(ids(e.Tasks()), ids(page.Tasks)) || !e.Fetched() {
		t.Fatalf("engine did not apply the page")
	}
}

func TestFilterChangeResetsPage(t *testing.T) {
	f := newFixture(t, 12)
	e := NewQueryEngine(f.client)
	ctx := context.Background()
	if _, err := e.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if q := e.SetPage(3); q.Page != 3 {
		t.Fatalf("expected page 3, got %d", q.Page)
	}

	setters := []func() Query{
		func() Query { return e.SetStatus(model.StatusCompleted) },
		func() Query { return e.SetPriority(model.PriorityHigh) },
		func() Query { return e.SetSearch("task") },
		func() Query { return e.SetSort(model.SortOldest) },
	}
	for i, set := range setters {
		e.SetPage(2)
		if q := set(); q.Page != 1 {
			t.Fatalf("setter %d: expected page reset to 1, got %d", i, q.Page)
		}
	}

	e.SetPriority("")
	e.SetSearch("")
	e.SetStatus(model.StatusCompleted)
	page, err := e.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if page.Pagination.Page != 1 || len(page.Tasks) != 4 {
		t.Fatalf("expected 4 completed tasks on page 1, got %d (%+v)", len(page.Tasks), page.Pagination)
	}
	for _, task := range page.Tasks {
		if task.Status != model.StatusCompleted {
			t.Fatalf("unexpected status %s", task.Status)
		}
	}
}

func TestSetPageClamps(t *testing.T) {
	f := newFixture(t, 7)
	e := NewQueryEngine(f.client)
	if q := e.SetPage(4); q.Page != 1 {
		t.Fatalf("expected clamp to 1 before any fetch, got %d", q.Page)
	}
	_, _ = e.Refresh(context.Background())
	if q := e.NextPage(); q.Page != 2 {
		t.Fatalf("expected page 2, got %d", q.Page)
	}
	if q := e.NextPage(); q.Page != 2 {
		t.Fatalf("expected clamp at last page, got %d", q.Page)
	}
	e.PrevPage()
	if q := e.PrevPage(); q.Page != 1 {
		t.Fatalf("expected clamp at first page, got %d", q.Page)
	}
}

func TestFetchPageIdempotent(t *testing.T) {
	f := newFixture(t, 7)
	e := NewQueryEngine(f.client)
	q := DefaultQuery(model.SortDueSoon)
	a, err := e.FetchPage(context.Background(), q)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	b, err := e.FetchPage(context.Background(), q)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("repeated fetch differs:\n%+v\n%+v", a, b)
	}
	if e.Fetched() {
		t.Fatalf("FetchPage must not touch engine state")
	}
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	f := newFixture(t, 7)
	f.srv.SetDelay(func(r *http.Request) time.Duration {
		if r.URL.Query().Get("search") == "slow" {
			return 2 * time.Second
		}
		return 0
	})
	e := NewQueryEngine(f.client)
	ctx := context.Background()

	e.SetSearch("slow")
	staleErr := make(chan error, 1)
	go func() {
		_, err := e.Refresh(ctx)
		staleErr <- err
	}()
	waitFor(t, func() bool { return f.srv.Count(http.MethodGet, "/tasks") == 1 })
	if !e.InFlight() {
		t.Fatalf("expected a fetch in flight")
	}

	e.SetSearch("")
	page, err := e.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if e.InFlight() {
		t.Fatalf("expected nothing in flight after the latest fetch")
	}
	if err := <-staleErr; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected superseded, got %v", err)
	}
	if !reflect.DeepEqual(ids(e.Tasks()), ids(page.Tasks)) || len(page.Tasks) != 5 {
		t.Fatalf("latest response not applied: %v", ids(e.Tasks()))
	}
}

func TestAbandonInvalidatesInFlight(t *testing.T) {
	f := newFixture(t, 3)
	f.srv.SetDelay(func(*http.Request) time.Duration { return 2 * time.Second })
	e := NewQueryEngine(f.client)

	done := make(chan error, 1)
	go func() {
		_, err := e.Refresh(context.Background())
		done <- err
	}()
	waitFor(t, func() bool { return f.srv.Count(http.MethodGet, "/tasks") == 1 })
	e.Abandon()

	select {
	case err := <-done:
		if !errors.Is(err, ErrSuperseded) {
			t.Fatalf("expected superseded, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("abandon did not cancel the request")
	}
	if e.Fetched() || len(e.Tasks()) != 0 || e.InFlight() {
		t.Fatalf("abandoned fetch leaked into state")
	}
}

func TestUnauthorizedTearsDownAndResetsQuery(t *testing.T) {
	f := newFixture(t, 3)
	expired := clientWithToken(t, f.srv, apitest.Token(f.userID, time.Now().Add(-time.Minute)))
	calls := 0
	e := NewQueryEngine(expired, WithTeardown(func() { calls++ }))
	e.SetSearch("needle")
	e.SetStatus(model.StatusCompleted)

	_, err := e.Refresh(context.Background())
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected teardown once, got %d", calls)
	}
	if q := e.Query(); q != DefaultQuery(model.DefaultSortKey) {
		t.Fatalf("expected default query after teardown, got %+v", q)
	}
	if f.srv.Count(http.MethodGet, "/tasks") != 1 {
		t.Fatalf("unauthorized fetch must not retry")
	}
}

func TestFailedFetchClearsListAndKeepsError(t *testing.T) {
	f := newFixture(t, 3)
	calls := 0
	e := NewQueryEngine(f.client, WithTeardown(func() { calls++ }))
	if _, err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	f.srv.Force(http.MethodGet, "/tasks", http.StatusInternalServerError)
	_, err := e.Refresh(context.Background())
	if !errors.Is(err, api.ErrServer) {
		t.Fatalf("expected server error, got %v", err)
	}
	if len(e.Tasks()) != 0 || e.LastError() == nil || calls != 0 {
		t.Fatalf("expected empty list with error and no teardown")
	}
}

func TestPatchAndDrop(t *testing.T) {
	f := newFixture(t, 3)
	e := NewQueryEngine(f.client)
	_, _ = e.Refresh(context.Background())

	target := e.Tasks()[1]
	target.Title = "renamed"
	if !e.Patch(target) {
		t.Fatalf("patch missed an existing task")
	}
	if e.Tasks()[1].Title != "renamed" {
		t.Fatalf("patch not applied")
	}
	if e.Patch(model.Task{ID: "missing"}) {
		t.Fatalf("patch of unknown id should report false")
	}
	e.Drop(target.ID)
	for _, task := range e.Tasks() {
		if task.ID == target.ID {
			t.Fatalf("drop left the task in place")
		}
	}
}

func TestPageSizeAndSortOptions(t *testing.T) {
	f := newFixture(t, 7)
	e := NewQueryEngine(f.client, WithPageSize(3), WithDefaultSort(model.SortOldest))
	page, err := e.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(page.Tasks) != 3 || page.Pagination.Pages != 3 {
		t.Fatalf("unexpected page %+v", page.Pagination)
	}
	if page.Tasks[0].ID != f.seeded[0].ID {
		t.Fatalf("expected oldest first, got %v", ids(page.Tasks))
	}
}
