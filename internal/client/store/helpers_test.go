package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/codecredits/internal/client/client"
	"github.com/dmitrijs2005/codecredits/internal/client/models"
	"github.com/dmitrijs2005/codecredits/internal/client/repositories/session"
	"github.com/dmitrijs2005/codecredits/internal/common"
	"github.com/stretchr/testify/require"
)

type call struct {
	route string
	auth  string
}

// backend is a scripted fake of the codecredits API.
type backend struct {
	t      *testing.T
	mu     sync.Mutex
	calls  []call
	routes map[string]http.HandlerFunc
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()
	b := &backend{t: t, routes: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		b.mu.Lock()
		b.calls = append(b.calls, call{route: route, auth: r.Header.Get(common.AuthorizationHeaderName)})
		h, ok := b.routes[route]
		b.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *backend) json(route string, status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[route] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func (b *backend) count(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c.route == route {
			n++
		}
	}
	return n
}

func (b *backend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func (b *backend) authOf(route string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, c := range b.calls {
		if c.route == route {
			out = append(out, c.auth)
		}
	}
	return out
}

type fixture struct {
	store *Store
	be    *backend
	repo  *session.MemoryRepository
	sess  *session.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	be, srv := newBackend(t)
	api, err := client.NewHTTPClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	repo := session.NewMemoryRepository()
	sess := session.NewStore(repo)
	return &fixture{store: New(api, sess, nil), be: be, repo: repo, sess: sess}
}

func (f *fixture) scriptLogin(token string, user models.User, credits float64) {
	f.be.json("POST /token", http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
	f.be.json("GET /users/me", http.StatusOK, user)
	f.be.json("GET /users/me/credits", http.StatusOK, models.CreditBalance{Credits: credits})
}

func (f *fixture) login(t *testing.T, user models.User, credits float64) {
	t.Helper()
	f.scriptLogin("T1", user, credits)
	require.NoError(t, f.store.Login(context.Background(), models.Credentials{Username: user.Username, Password: "b"}))
}
