package commands

import (
	"errors"
	"testing"

	"github.com/sandeepkv93/taskboard/internal/model"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{":add pay rent", TypeAdd},
		{"new pay rent", TypeAdd},
		{"search groceries list", TypeSearch},
		{"/status completed", TypeStatus},
		{"filter all", TypeStatus},
		{"priority HIGH", TypePriority},
		{"sort oldest", TypeSort},
		{"sort dueDate:desc", TypeSort},
		{"page 3", TypePage},
		{"theme dark", TypeTheme},
		{"refresh", TypeRefresh},
		{"logout", TypeLogout},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseArguments(t *testing.T) {
	cmd, _ := Parse("status done")
	if cmd.Status.Status != model.StatusCompleted {
		t.Fatalf("unexpected status %q", cmd.Status.Status)
	}
	cmd, _ = Parse("status all")
	if cmd.Status.Status != "" {
		t.Fatalf("all should clear the filter, got %q", cmd.Status.Status)
	}
	cmd, _ = Parse("priority high")
	if cmd.Priority.Priority != model.PriorityHigh {
		t.Fatalf("unexpected priority %q", cmd.Priority.Priority)
	}
	cmd, _ = Parse("sort due-soon")
	if cmd.Sort.Key != model.SortDueSoon {
		t.Fatalf("unexpected sort %q", cmd.Sort.Key)
	}
	cmd, _ = Parse("search")
	if cmd.Search.Text != "" {
		t.Fatalf("bare search should clear, got %q", cmd.Search.Text)
	}
	cmd, _ = Parse("page 12")
	if cmd.Page.Page != 12 {
		t.Fatalf("unexpected page %d", cmd.Page.Page)
	}
}

func TestParseInvalidArguments(t *testing.T) {
	for _, in := range []string{"add", "status maybe", "status", "priority urgent", "sort title", "page 0", "page x", "theme blue", "theme"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("%q: expected invalid argument error, got %v", in, err)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	_, err = Parse("  :  ")
	if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
		t.Fatalf("expected empty input error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add write docs")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Title != "write docs" {
				t.Fatalf("unexpected title: %q", a.Title)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}

	cmd, _ = Parse("refresh")
	refreshed := false
	if _, err := Execute(cmd, Handlers{Refresh: func() (Result, error) { refreshed = true; return Result{}, nil }}); err != nil || !refreshed {
		t.Fatalf("refresh dispatch failed: %v", err)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	for _, in := range []string{"theme light", "logout", "page 2"} {
		cmd, err := Parse(in)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		_, err = Execute(cmd, Handlers{})
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
			t.Fatalf("%q: expected missing handler error, got %v", in, err)
		}
	}
}
