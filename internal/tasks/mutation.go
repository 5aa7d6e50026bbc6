package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sandeepkv93/taskboard/internal/api"
	"github.com/sandeepkv93/taskboard/internal/model"
)

const DefaultBulkConcurrency = 4

// API is the part of the HTTP client the engines use.
type API interface {
	Getter
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
}

// Confirm asks the user before a destructive call. Nil means "no".
type Confirm func() bool

// BulkItem is the outcome for one id of a bulk action.
type BulkItem struct {
	ID   string
	Task *model.Task
	Err  error
}

// BulkResult lists per-id outcomes in selection order.
type BulkResult struct {
	Op    string
	Items []BulkItem
}

func (r BulkResult) Empty() bool { return len(r.Items) == 0 }

func (r BulkResult) Succeeded() []string {
	var ids []string
	for _, it := range r.Items {
		if it.Err == nil {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

func (r BulkResult) Failed() []BulkItem {
	var out []BulkItem
	for _, it := range r.Items {
		if it.Err != nil {
			out = append(out, it)
		}
	}
	return out
}

// Err is a *BulkError when any item failed, nil otherwise.
func (r BulkResult) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	return &BulkError{Op: r.Op, Total: len(r.Items), Failed: failed}
}

type BulkError struct {
	Op     string
	Total  int
	Failed []BulkItem
}

func (e *BulkError) Error() string {
	ids := make([]string, 0, len(e.Failed))
	for _, it := range e.Failed {
		ids = append(ids, it.ID)
	}
	return fmt.Sprintf("tasks: %s failed for %d of %d tasks (%s)", e.Op, len(e.Failed), e.Total, strings.Join(ids, ", "))
}

func (e *BulkError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, it := range e.Failed {
		errs = append(errs, it.Err)
	}
	return errs
}

type MutationOption func(*MutationEngine)

func WithConcurrency(n int) MutationOption {
	return func(m *MutationEngine) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

func WithMutationLogger(l zerolog.Logger) MutationOption {
	return func(m *MutationEngine) { m.logger = l }
}

// MutationEngine sends task changes and reconciles the query engine's page.
type MutationEngine struct {
	api         API
	query       *QueryEngine
	concurrency int
	logger      zerolog.Logger

	mu    sync.Mutex
	prior map[string]model.Status
}

func NewMutationEngine(client API, query *QueryEngine, opts ...MutationOption) *MutationEngine {
	m := &MutationEngine{
		api:         client,
		query:       query,
		concurrency: DefaultBulkConcurrency,
		logger:      zerolog.Nop(),
		prior:       make(map[string]model.Status),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With().Str("component", "mutation").Logger()
	return m
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

// Create validates form, creates the task and refreshes the list.
func (m *MutationEngine) Create(ctx context.Context, form model.TaskForm) (model.Task, error) {
	if err := form.Validate(); err != nil {
		return model.Task{}, err
	}
	var created model.Task
	if err := m.api.Post(ctx, "/tasks", form, &created); err != nil {
		return model.Task{}, m.fail("create", "", err)
	}
	m.logger.Info().Str("task", created.ID).Msg("task created")
	m.refresh(ctx)
	return created, nil
}

// Update replaces the editable fields of task id and refreshes the list.
func (m *MutationEngine) Update(ctx context.Context, id string, form model.TaskForm) (model.Task, error) {
	if id == "" {
		return model.Task{}, errors.New("tasks: update needs a task id")
	}
	if err := form.Validate(); err != nil {
		return model.Task{}, err
	}
	var updated model.Task
	if err := m.api.Put(ctx, taskPath(id), form, &updated); err != nil {
		return model.Task{}, m.fail("update", id, err)
	}
	m.forget(id)
	m.logger.Info().Str("task", id).Msg("task updated")
	m.refresh(ctx)
	return updated, nil
}

// Remove deletes task id once confirm agrees. It reports whether a request
// was sent; after any attempt the list is refreshed.
func (m *MutationEngine) Remove(ctx context.Context, id string, confirm Confirm) (bool, error) {
	if confirm == nil || !confirm() {
		return false, nil
	}
	err := m.api.Delete(ctx, taskPath(id))
	if err != nil {
		err = m.fail("delete", id, err)
		if api.IsUnauthorized(err) {
			return true, err
		}
	} else {
		m.forget(id)
		m.logger.Info().Str("task", id).Msg("task deleted")
	}
	m.refresh(ctx)
	return true, err
}

// ToggleComplete completes an open task, or reopens a completed one with the
// status it had before. The page is patched from the server's reply.
func (m *MutationEngine) ToggleComplete(ctx context.Context, task model.Task) (model.Task, error) {
	next := model.StatusCompleted
	if task.Completed() {
		next = m.reopenStatus(task.ID)
	}
	var updated model.Task
	body := map[string]model.Status{"status": next}
	if err := m.api.Put(ctx, taskPath(task.ID), body, &updated); err != nil {
		return model.Task{}, m.fail("toggle", task.ID, err)
	}
	if updated.ID == "" {
		updated = task
		updated.Status = next
	}
	m.mu.Lock()
	if task.Completed() {
		delete(m.prior, task.ID)
	} else {
		m.prior[task.ID] = task.Status
	}
	m.mu.Unlock()
	m.query.Patch(updated)
	return updated, nil
}

func (m *MutationEngine) reopenStatus(id string) model.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.prior[id]; ok && s.IsValid() && s != model.StatusCompleted {
		return s
	}
	return model.StatusPending
}

func (m *MutationEngine) forget(id string) {
	m.mu.Lock()
	delete(m.prior, id)
	m.mu.Unlock()
}

// BulkComplete marks every selected task completed. Ids that succeed are
// patched locally and leave the selection; failures stay selected.
func (m *MutationEngine) BulkComplete(ctx context.Context, sel *Selection) BulkResult {
	ids := sel.IDs()
	if len(ids) == 0 {
		return BulkResult{Op: "complete"}
	}
	before := make(map[string]model.Status, len(ids))
	for _, id := range ids {
		if t, ok := m.query.lookup(id); ok && !t.Completed() {
			before[id] = t.Status
		}
	}

	res := m.fanOut(ctx, "complete", ids, func(ctx context.Context, id string) (*model.Task, error) {
		var updated model.Task
		body := map[string]model.Status{"status": model.StatusCompleted}
		if err := m.api.Put(ctx, taskPath(id), body, &updated); err != nil {
			return nil, err
		}
		return &updated, nil
	})

	done := res.Succeeded()
	m.mu.Lock()
	for _, id := range done {
		if s, ok := before[id]; ok {
			m.prior[id] = s
		}
	}
	m.mu.Unlock()
	for _, it := range res.Items {
		if it.Err == nil && it.Task != nil && it.Task.ID != "" {
			m.query.Patch(*it.Task)
		}
	}
	sel.Remove(done...)
	m.settle(res)
	return res
}

// BulkDelete deletes every selected task once confirm agrees. Deleted ids are
// dropped locally and from the selection, then the list is refreshed.
func (m *MutationEngine) BulkDelete(ctx context.Context, sel *Selection, confirm Confirm) (BulkResult, bool) {
	ids := sel.IDs()
	if len(ids) == 0 {
		return BulkResult{Op: "delete"}, false
	}
	if confirm == nil || !confirm() {
		return BulkResult{Op: "delete"}, false
	}

	res := m.fanOut(ctx, "delete", ids, func(ctx context.Context, id string) (*model.Task, error) {
		return nil, m.api.Delete(ctx, taskPath(id))
	})

	done := res.Succeeded()
	for _, id := range done {
		m.forget(id)
	}
	m.query.Drop(done...)
	sel.Remove(done...)
	if m.settle(res) {
		return res, true
	}
	m.refresh(ctx)
	return res, true
}

// fanOut runs call for every id with bounded concurrency and waits for all.
func (m *MutationEngine) fanOut(ctx context.Context, op string, ids []string, call func(context.Context, string) (*model.Task, error)) BulkResult {
	items := make([]BulkItem, len(ids))
	var g errgroup.Group
	g.SetLimit(m.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			task, err := call(ctx, id)
			items[i] = BulkItem{ID: id, Task: task, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return BulkResult{Op: op, Items: items}
}

// settle logs failures and tears the session down if any item was rejected
// as unauthorized. It reports whether that happened.
func (m *MutationEngine) settle(res BulkResult) bool {
	failed := res.Failed()
	unauthorized := false
	for _, it := range failed {
		if api.IsUnauthorized(it.Err) {
			unauthorized = true
		}
	}
	if len(failed) > 0 {
		m.logger.Warn().
			Str("op", res.Op).
			Int("failed", len(failed)).
			Int("total", len(res.Items)).
			Err(res.Err()).
			Msg("bulk action partially failed")
	} else {
		m.logger.Info().Str("op", res.Op).Int("total", len(res.Items)).Msg("bulk action done")
	}
	if unauthorized {
		m.query.Unauthorized()
	}
	return unauthorized
}

func (m *MutationEngine) fail(op, id string, err error) error {
	if api.IsUnauthorized(err) {
		m.query.Unauthorized()
		return err
	}
	m.logger.Warn().Err(err).Str("op", op).Str("task", id).Msg("mutation failed")
	return err
}

func (m *MutationEngine) refresh(ctx context.Context) {
	if _, err := m.query.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		m.logger.Debug().Err(err).Msg("refresh after mutation")
	}
}
