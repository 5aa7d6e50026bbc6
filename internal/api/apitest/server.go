// Package apitest runs an in-memory task/auth API for tests.
package apitest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/sandeepkv93/taskboard/internal/model"
)

const secret = "apitest-secret"

type account struct {
	user     model.User
	password string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]account // by email
	tasks    map[string][]model.Task
	clock    time.Time
	tokenTTL time.Duration
	requests []string
	failures map[string]int
	forced   map[string]int
	delay    func(r *http.Request) time.Duration
}

func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts: make(map[string]account),
		tasks:    make(map[string][]model.Task),
		clock:    time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC),
		tokenTTL: time.Hour,
		failures: make(map[string]int),
		forced:   make(map[string]int),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	authed := r.PathPrefix("/tasks").Subrouter()
	authed.Use(s.authenticate)
	authed.HandleFunc("", s.handleList).Methods(http.MethodGet)
	authed.HandleFunc("", s.handleCreate).Methods(http.MethodPost)
	authed.HandleFunc("/{id}", s.handleUpdate).Methods(http.MethodPut)
	authed.HandleFunc("/{id}", s.handleDelete).Methods(http.MethodDelete)
	return r
}

// SetTokenTTL changes the lifetime of tokens issued from now on; 0 omits exp.
func (s *Server) SetTokenTTL(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenTTL = d
}

// SetDelay stalls matching requests, e.g. to hold an older list fetch.
func (s *Server) SetDelay(fn func(r *http.Request) time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = fn
}

// FailTask makes method requests on the task id answer with status.
func (s *Server) FailTask(method, id string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+id] = status
}

// Force makes every request with the given method and path answer status.
func (s *Server) Force(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forced[method+" "+path] = status
}

func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]int)
	s.forced = make(map[string]int)
}

// Requests returns "METHOD /path" for every request seen so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Count returns how many requests matched method and path prefix.
func (s *Server) Count(method, prefix string) int {
	n := 0
	for _, r := range s.Requests() {
		m, p, _ := strings.Cut(r, " ")
		if m == method && strings.HasPrefix(p, prefix) {
			n++
		}
	}
	return n
}

// AddUser registers an account directly.
func (s *Server) AddUser(name, email, password string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{ID: uuid.NewString(), Name: name, Email: email}
	s.accounts[strings.ToLower(email)] = account{user: u, password: password}
	return u
}

// Seed stores a task for the user; ID and CreatedAt are filled when empty.
func (s *Server) Seed(userID string, t model.Task) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.tick()
	}
	if t.Status == "" {
		t.Status = model.StatusPending
	}
	s.tasks[userID] = append(s.tasks[userID], t)
	return t
}

func (s *Server) Tasks(userID string) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), s.tasks[userID]...)
}

// Token mints a token for userID expiring at exp; zero exp omits the claim.
func Token(userID string, exp time.Time) string {
	claims := jwt.MapClaims{"sub": userID, "iat": time.Now().Unix()}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		panic(err)
	}
	return signed
}

func (s *Server) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		status := s.forced[r.Method+" "+r.URL.Path]
		delay := s.delay
		s.mu.Unlock()

		if delay != nil {
			if d := delay(r); d > 0 {
				select {
				case <-time.After(d):
				case <-r.Context().Done():
					return
				}
			}
		}
		if status != 0 {
			writeError(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type ctxKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "No token provided")
			return
		}
		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
			if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		sub, _ := claims.GetSubject()
		r = r.WithContext(contextWithUser(r.Context(), sub))
		next.ServeHTTP(w, r)
	})
}

type authResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid body")
		return
	}
	if in.Name == "" || in.Email == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	s.mu.Lock()
	if _, exists := s.accounts[strings.ToLower(in.Email)]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "User already exists")
		return
	}
	u := model.User{ID: uuid.NewString(), Name: in.Name, Email: in.Email}
	s.accounts[strings.ToLower(in.Email)] = account{user: u, password: in.Password}
	token := s.issueLocked(u.ID)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid body")
		return
	}
	s.mu.Lock()
	acct, ok := s.accounts[strings.ToLower(in.Email)]
	if !ok || acct.password != in.Password {
		s.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token := s.issueLocked(acct.user.ID)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: acct.user})
}

func (s *Server) issueLocked(userID string) string {
	if s.tokenTTL == 0 {
		return Token(userID, time.Time{})
	}
	return Token(userID, time.Now().Add(s.tokenTTL))
}

type listResponse struct {
	Data       []model.Task     `json:"data"`
	Pagination model.Pagination `json:"pagination"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 10
	}
	status := model.Status(q.Get("status"))
	priority := model.Priority(q.Get("priority"))
	search := strings.ToLower(strings.TrimSpace(q.Get("search")))
	sortKey := model.SortKey(q.Get("sort"))
	if !sortKey.IsValid() {
		sortKey = model.DefaultSortKey
	}

	s.mu.Lock()
	all := append([]model.Task(nil), s.tasks[userFrom(r.Context())]...)
	s.mu.Unlock()

	matched := make([]model.Task, 0, len(all))
	for _, t := range all {
		if status != "" && t.Status != status {
			continue
		}
		if priority != "" && t.Priority != priority {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title+" "+t.Description), search) {
			continue
		}
		matched = append(matched, t)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := sortValue(matched[i], sortKey.Field()), sortValue(matched[j], sortKey.Field())
		if sortKey.Descending() {
			return a.After(b)
		}
		return a.Before(b)
	})

	pages := (len(matched) + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	writeJSON(w, http.StatusOK, listResponse{
		Data:       matched[start:end],
		Pagination: model.Pagination{Page: page, Pages: pages, Total: len(matched)},
	})
}

func sortValue(t model.Task, field string) time.Time {
	if field == "dueDate" {
		if t.DueDate == nil {
			return time.Time{}
		}
		return *t.DueDate
	}
	return t.CreatedAt
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var form model.TaskForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid body")
		return
	}
	if strings.TrimSpace(form.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	due, err := model.ParseTime(form.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid due date")
		return
	}
	if form.Status == "" {
		form.Status = model.StatusPending
	}
	s.mu.Lock()
	t := model.Task{
		ID:          uuid.NewString(),
		Title:       form.Title,
		Description: form.Description,
		Status:      form.Status,
		Priority:    form.Priority,
		DueDate:     due,
		CreatedAt:   s.tick(),
	}
	user := userFrom(r.Context())
	s.tasks[user] = append(s.tasks[user], t)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if status, failed := s.failure(http.MethodPut, id); failed {
		writeError(w, status, http.StatusText(status))
		return
	}
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user := userFrom(r.Context())
	for i, t := range s.tasks[user] {
		if t.ID != id {
			continue
		}
		if err := applyPatch(&t, patch); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.tasks[user][i] = t
		writeJSON(w, http.StatusOK, t)
		return
	}
	writeError(w, http.StatusNotFound, "Task not found")
}

func applyPatch(t *model.Task, patch map[string]json.RawMessage) error {
	str := func(key string) (string, bool, error) {
		raw, ok := patch[key]
		if !ok {
			return "", false, nil
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return "", false, fmt.Errorf("%s must be a string", key)
		}
		return v, true, nil
	}
	if v, ok, err := str("title"); err != nil {
		return err
	} else if ok {
		if strings.TrimSpace(v) == "" {
			return errors.New("Title is required")
		}
		t.Title = v
	}
	if v, ok, err := str("description"); err != nil {
		return err
	} else if ok {
		t.Description = v
	}
	if v, ok, err := str("status"); err != nil {
		return err
	} else if ok {
		if !model.Status(v).IsValid() {
			return errors.New("Invalid status")
		}
		t.Status = model.Status(v)
	}
	if v, ok, err := str("priority"); err != nil {
		return err
	} else if ok {
		t.Priority = model.Priority(v)
	}
	if v, ok, err := str("dueDate"); err != nil {
		return err
	} else if ok {
		due, err := model.ParseTime(v)
		if err != nil {
			return errors.New("Invalid due date")
		}
		t.DueDate = due
	}
	return nil
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if status, failed := s.failure(http.MethodDelete, id); failed {
		writeError(w, status, http.StatusText(status))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user := userFrom(r.Context())
	for i, t := range s.tasks[user] {
		if t.ID == id {
			s.tasks[user] = append(s.tasks[user][:i], s.tasks[user][i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Task not found")
}

func (s *Server) failure(method, id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.failures[method+" "+id]
	return status, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
