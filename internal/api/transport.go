package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// ErrNoToken may be returned by a TokenSource that has no session; the request
// is then sent without credentials.
var ErrNoToken = errors.New("api: no token")

const requestIDHeader = "X-Request-ID"

// authTransport stamps every request with a request id and, when the source
// has a session, a bearer credential.
type authTransport struct {
	source  oauth2.TokenSource
	limiter *rate.Limiter
	base    http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	out := req.Clone(req.Context())
	if out.Header.Get(requestIDHeader) == "" {
		out.Header.Set(requestIDHeader, uuid.NewString())
	}
	if t.source != nil {
		tok, err := t.source.Token()
		switch {
		case err == nil && tok != nil && tok.AccessToken != "":
			tok.SetAuthHeader(out)
		case err != nil && !errors.Is(err, ErrNoToken):
			return nil, err
		}
	}
	return t.base.RoundTrip(out)
}
