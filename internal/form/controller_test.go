package form

import (
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/taskboard/internal/model"
)

func TestOpenCreateSeedsDefaults(t *testing.T) {
	var c Controller
	c.Open(nil)
	if !c.IsOpen() || c.Mode() != ModeCreate || c.TargetID() != "" {
		t.Fatalf("unexpected state open=%v mode=%v target=%q", c.IsOpen(), c.Mode(), c.TargetID())
	}
	buf := c.Buffer()
	if buf.Status != model.StatusPending || buf.Priority != model.PriorityMedium || buf.Title != "" {
		t.Fatalf("unexpected defaults %+v", buf)
	}
}

func TestOpenEditSeedsFromTask(t *testing.T) {
	due := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	task := model.Task{ID: "t1", Title: "Plan", Description: "d", Status: model.StatusInProgress, Priority: model.PriorityHigh, DueDate: &due}
	var c Controller
	c.Open(&task)
	want := model.TaskForm{Title: "Plan", Description: "d", Status: model.StatusInProgress, Priority: model.PriorityHigh, DueDate: "2026-04-02"}
	if c.Buffer() != want || c.Mode() != ModeEdit || c.TargetID() != "t1" {
		t.Fatalf("unexpected buffer %+v", c.Buffer())
	}
}

func TestReseedOnlyOnIdentityChange(t *testing.T) {
	a := model.Task{ID: "a", Title: "A", Status: model.StatusPending}
	b := model.Task{ID: "b", Title: "B", Status: model.StatusCompleted}
	var c Controller

	c.Open(&a)
	_ = c.Set(FieldTitle, "edited")
	c.Open(&a)
	if c.Buffer().Title != "edited" {
		t.Fatalf("same target must keep the buffer")
	}

	c.Open(&b)
	if c.Buffer().Title != "B" || c.TargetID() != "b" {
		t.Fatalf("new target must re-seed, got %+v", c.Buffer())
	}

	c.Open(nil)
	if c.Buffer().Title != "" || c.Mode() != ModeCreate {
		t.Fatalf("switching to create must re-seed")
	}

	c.Close()
	c.Open(&b)
	if c.Buffer().Title != "B" {
		t.Fatalf("reopen after close must re-seed")
	}
}

func TestSetCycleAndSubmit(t *testing.T) {
	var c Controller
	if err := c.Set(FieldTitle, "x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if _, err := c.Submit(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	task := model.Task{ID: "t9", Title: "old", Status: model.StatusCompleted, Priority: model.PriorityLow}
	c.Open(&task)
	_ = c.Set(FieldTitle, "  new title ")
	_ = c.Set(FieldDueDate, "not a date")
	if err := c.Cycle(FieldStatus, 1); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if err := c.Cycle(FieldPriority, -1); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if err := c.Cycle(FieldTitle, 1); err == nil {
		t.Fatalf("expected error cycling a text field")
	}

	sub, err := c.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	// Submitted verbatim: no trimming, no validation.
	if sub.ID != "t9" || sub.Form.Title != "  new title " || sub.Form.DueDate != "not a date" {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if sub.Form.Status != model.StatusPending || sub.Form.Priority != model.PriorityHigh {
		t.Fatalf("unexpected cycled values %+v", sub.Form)
	}
	if !c.IsOpen() {
		t.Fatalf("submit must leave the dialog open")
	}
	if c.Get(FieldTitle) != "  new title " || c.Get(FieldStatus) != "pending" {
		t.Fatalf("get mismatch")
	}
}
