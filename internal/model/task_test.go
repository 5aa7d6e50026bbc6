package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestTaskUnmarshalAcceptsMongoIDAndISODates(t *testing.T) {
	raw := `{"_id":"65f1","title":"Write docs","description":"","status":"in-progress","priority":"high","dueDate":"2026-03-01T00:00:00.000Z","createdAt":"2026-02-09T12:00:00.123Z"}`
	var task Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if task.ID != "65f1" {
		t.Fatalf("expected id from _id, got %q", task.ID)
	}
	if task.Status != StatusInProgress || task.Priority != PriorityHigh {
		t.Fatalf("unexpected enums: %+v", task)
	}
	if task.DueLabel() != "2026-03-01" {
		t.Fatalf("unexpected due label %q", task.DueLabel())
	}
	if task.CreatedAt.Year() != 2026 || task.CreatedAt.Nanosecond() == 0 {
		t.Fatalf("unexpected created at %v", task.CreatedAt)
	}
}

func TestTaskUnmarshalWithoutDueDate(t *testing.T) {
	var task Task
	if err := json.Unmarshal([]byte(`{"id":"t-1","title":"x","status":"pending"}`), &task); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if task.DueDate != nil || task.DueLabel() != "" {
		t.Fatalf("expected no due date, got %v", task.DueDate)
	}
}

func TestTaskUnmarshalRejectsGarbageDate(t *testing.T) {
	var task Task
	err := json.Unmarshal([]byte(`{"id":"t-1","title":"x","dueDate":"next tuesday"}`), &task)
	if err == nil || !errors.Is(err, ErrInvalidDueDate) {
		t.Fatalf("expected ErrInvalidDueDate, got %v", err)
	}
}

func TestTaskRoundTripKeepsDueDate(t *testing.T) {
	due := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	in := Task{ID: "t-1", Title: "x", Status: StatusPending, DueDate: &due, CreatedAt: due}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Task
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.DueLabel() != "2026-04-02" || !out.CreatedAt.Equal(due) {
		t.Fatalf("unexpected round trip: %+v", out)
	}
}

func TestFormValidate(t *testing.T) {
	cases := []struct {
		name    string
		form    TaskForm
		field   string
		wantErr error
	}{
		{"blank title", TaskForm{Title: "  ", Status: StatusPending}, "title", nil},
		{"bad status", TaskForm{Title: "a", Status: "done"}, "status", ErrInvalidStatus},
		{"bad priority", TaskForm{Title: "a", Status: StatusPending, Priority: "urgent"}, "priority", ErrInvalidPriority},
		{"bad due", TaskForm{Title: "a", Status: StatusPending, DueDate: "03/01/2026"}, "dueDate", ErrInvalidDueDate},
	}
	for _, tc := range cases {
		err := tc.form.Validate()
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != tc.field {
			t.Fatalf("%s: expected validation error on %s, got %v", tc.name, tc.field, err)
		}
		if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}

	ok := TaskForm{Title: "Ship", Status: StatusCompleted, Priority: PriorityLow, DueDate: "2026-05-01"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
}

func TestFormFromTaskDefaults(t *testing.T) {
	f := FormFromTask(Task{ID: "t-1", Title: "Legacy"})
	if f.Status != StatusPending || f.Priority != PriorityMedium || f.DueDate != "" {
		t.Fatalf("unexpected seeded form: %+v", f)
	}
}

func TestSortKeys(t *testing.T) {
	if DefaultSortKey != SortNewest || !SortNewest.Descending() || SortNewest.Field() != "createdAt" {
		t.Fatalf("unexpected default sort key %q", DefaultSortKey)
	}
	if SortKey("title:asc").IsValid() {
		t.Fatal("expected unknown sort key to be invalid")
	}
	if SortDueSoon.Label() != "Due Soon" || SortDueSoon.Descending() {
		t.Fatalf("unexpected due soon key semantics")
	}
}
