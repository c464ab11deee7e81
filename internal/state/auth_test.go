package state

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

func TestLoadRunsWhoAmIExactlyOnce(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/me" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u1","email":"dev@example.com","is_admin":true}`))
	}))
	t.Cleanup(srv.Close)

	a := NewAuth(api.New(srv.URL))
	if !a.Loading() {
		t.Fatalf("store should report loading before Load")
	}
	ctx := context.Background()
	a.Load(ctx)
	a.Load(ctx)
	if calls != 1 {
		t.Fatalf("who-am-I called %d times, want 1", calls)
	}
	if a.Loading() {
		t.Fatalf("loading should clear after Load")
	}
	user := a.User()
	if user == nil || user.ID != "u1" || !user.IsAdmin {
		t.Fatalf("user = %+v", user)
	}
}

func TestLoadFailureLeavesNilUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	a := NewAuth(api.New(srv.URL))
	a.Load(context.Background())
	if a.User() != nil {
		t.Fatalf("user should be nil when who-am-I fails")
	}
	if a.Loading() {
		t.Fatalf("loading must clear even on failure")
	}
}

func TestLogoutClearsUserEvenWhenServerFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/me":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"u1","email":"dev@example.com"}`))
		case "/auth/logout":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"session store down"}`))
		}
	}))
	t.Cleanup(srv.Close)

	a := NewAuth(api.New(srv.URL))
	ctx := context.Background()
	a.Load(ctx)
	if a.User() == nil {
		t.Fatalf("precondition: user loaded")
	}

	if err := a.Logout(ctx); err == nil {
		t.Fatalf("server failure should be reported")
	}
	if a.User() != nil {
		t.Fatalf("local user must clear regardless of server result")
	}
}
