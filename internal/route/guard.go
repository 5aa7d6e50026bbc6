// Package route decides what the protected dashboard may show.
package route

// Decision is the outcome of Guard.
type Decision int

const (
	// Wait renders a neutral placeholder: no content and no redirect.
	Wait Decision = iota
	RedirectLogin
	Render
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case RedirectLogin:
		return "redirect-login"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}

// Session is what the guard needs to know about the current session.
type Session interface {
	Loading() bool
	Authenticated() bool
}

// Guard never lets protected content through before the session restore
// has completed.
func Guard(s Session) Decision {
	if s == nil {
		return RedirectLogin
	}
	if s.Loading() {
		return Wait
	}
	if !s.Authenticated() {
		return RedirectLogin
	}
	return Render
}
