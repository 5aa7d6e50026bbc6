package tasks

import (
	"fmt"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/sandeepkv93/taskboard/internal/api"
	"github.com/sandeepkv93/taskboard/internal/api/apitest"
	"github.com/sandeepkv93/taskboard/internal/model"
)

type fixture struct {
	srv    *apitest.Server
	userID string
	client *api.Client
	seeded []model.Task
}

// newFixture seeds n tasks; statuses cycle pending, in-progress, completed.
func newFixture(t *testing.T, n int) *fixture {
	t.Helper()
	srv := apitest.New(t)
	u := srv.AddUser("Ada", "ada@example.com", "secret")
	f := &fixture{srv: srv, userID: u.ID, client: clientWithToken(t, srv, apitest.Token(u.ID, time.Now().Add(time.Hour)))}
	for i := 0; i < n; i++ {
		f.seeded = append(f.seeded, srv.Seed(u.ID, model.Task{
			Title:    fmt.Sprintf("task %d", i),
			Status:   model.Statuses[i%len(model.Statuses)],
			Priority: model.Priorities[i%len(model.Priorities)],
		}))
	}
	return f
}

func clientWithToken(t *testing.T, srv *apitest.Server, token string) *api.Client {
	t.Helper()
	c, err := api.New(srv.URL, api.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})))
	if err != nil {
		t.Fatalf("api client: %v", err)
	}
	return c
}

func ids(ts []model.Task) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func yes() bool { return true }
func no() bool  { return false }
