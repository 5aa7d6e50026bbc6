// Package commands parses and dispatches the dashboard's ":" palette.
package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/taskboard/internal/model"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeSearch   Type = "search"
	TypeStatus   Type = "status"
	TypePriority Type = "priority"
	TypeSort     Type = "sort"
	TypePage     Type = "page"
	TypeTheme    Type = "theme"
	TypeRefresh  Type = "refresh"
	TypeLogout   Type = "logout"
)

// Types lists the palette commands in help order.
var Types = []Type{TypeAdd, TypeSearch, TypeStatus, TypePriority, TypeSort, TypePage, TypeTheme, TypeRefresh, TypeLogout}

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

type AddArgs struct {
	Title string
}

// SearchArgs with an empty Text clears the search.
type SearchArgs struct {
	Text string
}

// StatusArgs with an empty Status clears the filter.
type StatusArgs struct {
	Status model.Status
}

type PriorityArgs struct {
	Priority model.Priority
}

type SortArgs struct {
	Key model.SortKey
}

type PageArgs struct {
	Page int
}

type ThemeArgs struct {
	Name string
}

type Command struct {
	Type     Type
	Raw      string
	Add      *AddArgs
	Search   *SearchArgs
	Status   *StatusArgs
	Priority *PriorityArgs
	Sort     *SortArgs
	Page     *PageArgs
	Theme    *ThemeArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimLeft(raw, ":/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd, "new":
		return parseAdd(input, args)
	case TypeSearch:
		return Command{Type: TypeSearch, Raw: input, Search: &SearchArgs{Text: strings.Join(args, " ")}}, nil
	case TypeStatus, "filter":
		return parseStatus(input, args)
	case TypePriority:
		return parsePriority(input, args)
	case TypeSort:
		return parseSort(input, args)
	case TypePage:
		return parsePage(input, args)
	case TypeTheme:
		return parseTheme(input, args)
	case TypeRefresh, "reload":
		return Command{Type: TypeRefresh, Raw: input}, nil
	case TypeLogout:
		return Command{Type: TypeLogout, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, invalid("add requires a title")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title}}, nil
}

func single(name string, args []string) (string, error) {
	if len(args) != 1 {
		return "", invalid("%s takes exactly one argument", name)
	}
	return strings.ToLower(args[0]), nil
}

func parseStatus(raw string, args []string) (Command, error) {
	v, err := single("status", args)
	if err != nil {
		return Command{}, err
	}
	s := model.Status(v)
	switch v {
	case "all", "any":
		s = ""
	case "todo", "open":
		s = model.StatusPending
	case "doing", "progress", "in_progress":
		s = model.StatusInProgress
	case "done":
		s = model.StatusCompleted
	}
	if s != "" && !s.IsValid() {
		return Command{}, invalid("unknown status %q (pending, in-progress, completed, all)", v)
	}
	return Command{Type: TypeStatus, Raw: raw, Status: &StatusArgs{Status: s}}, nil
}

func parsePriority(raw string, args []string) (Command, error) {
	v, err := single("priority", args)
	if err != nil {
		return Command{}, err
	}
	p := model.Priority(v)
	if v == "all" || v == "any" {
		p = ""
	}
	if p != "" && !p.IsValid() {
		return Command{}, invalid("unknown priority %q (low, medium, high, all)", v)
	}
	return Command{Type: TypePriority, Raw: raw, Priority: &PriorityArgs{Priority: p}}, nil
}

var sortAliases = map[string]model.SortKey{
	"newest":     model.SortNewest,
	"oldest":     model.SortOldest,
	"due":        model.SortDueSoon,
	"due-soon":   model.SortDueSoon,
	"due-latest": model.SortDueLatest,
}

func parseSort(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("sort takes exactly one argument")
	}
	key, ok := sortAliases[strings.ToLower(args[0])]
	if !ok {
		key = model.SortKey(args[0])
	}
	if !key.IsValid() {
		return Command{}, invalid("unknown sort %q (newest, oldest, due-soon, due-latest)", args[0])
	}
	return Command{Type: TypeSort, Raw: raw, Sort: &SortArgs{Key: key}}, nil
}

func parsePage(raw string, args []string) (Command, error) {
	v, err := single("page", args)
	if err != nil {
		return Command{}, err
	}
	n, convErr := strconv.Atoi(v)
	if convErr != nil || n < 1 {
		return Command{}, invalid("page must be a positive number, got %q", v)
	}
	return Command{Type: TypePage, Raw: raw, Page: &PageArgs{Page: n}}, nil
}

func parseTheme(raw string, args []string) (Command, error) {
	v, err := single("theme", args)
	if err != nil {
		return Command{}, err
	}
	if v != "light" && v != "dark" {
		return Command{}, invalid("theme must be light or dark, got %q", v)
	}
	return Command{Type: TypeTheme, Raw: raw, Theme: &ThemeArgs{Name: v}}, nil
}
