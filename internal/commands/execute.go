package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add      func(AddArgs) (Result, error)
	Search   func(SearchArgs) (Result, error)
	Status   func(StatusArgs) (Result, error)
	Priority func(PriorityArgs) (Result, error)
	Sort     func(SortArgs) (Result, error)
	Page     func(PageArgs) (Result, error)
	Theme    func(ThemeArgs) (Result, error)
	Refresh  func() (Result, error)
	Logout   func() (Result, error)
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeSearch:
		if handlers.Search == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Search(*cmd.Search)
	case TypeStatus:
		if handlers.Status == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Status(*cmd.Status)
	case TypePriority:
		if handlers.Priority == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Priority(*cmd.Priority)
	case TypeSort:
		if handlers.Sort == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Sort(*cmd.Sort)
	case TypePage:
		if handlers.Page == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Page(*cmd.Page)
	case TypeTheme:
		if handlers.Theme == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Theme(*cmd.Theme)
	case TypeRefresh:
		if handlers.Refresh == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Refresh()
	case TypeLogout:
		if handlers.Logout == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Logout()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
