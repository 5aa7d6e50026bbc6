package tasks

import (
	"reflect"
	"testing"

	"github.com/sandeepkv93/taskboard/internal/model"
)

func TestSelectionOrderAndToggle(t *testing.T) {
	s := NewSelection()
	if !s.Toggle("b") || !s.Toggle("a") {
		t.Fatalf("toggle on should report selected")
	}
	s.Add("c", "a", "")
	if !reflect.DeepEqual(s.IDs(), []string{"b", "a", "c"}) {
		t.Fatalf("unexpected order %v", s.IDs())
	}
	if s.Toggle("a") || s.Has("a") {
		t.Fatalf("toggle off failed")
	}
	s.Remove("b", "missing")
	if s.Len() != 1 || !s.Has("c") {
		t.Fatalf("unexpected ids %v", s.IDs())
	}
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("clear failed")
	}
}

func TestSelectionRetainVisible(t *testing.T) {
	s := NewSelection()
	s.Add("1", "2", "3")
	s.Retain([]model.Task{{ID: "3"}, {ID: "4"}, {ID: "1"}})
	if !reflect.DeepEqual(s.IDs(), []string{"1", "3"}) {
		t.Fatalf("unexpected retained ids %v", s.IDs())
	}
	s.Retain(nil)
	if s.Len() != 0 {
		t.Fatalf("expected empty selection")
	}
}
