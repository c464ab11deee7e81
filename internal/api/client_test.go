package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, opts...), srv
}

func TestQueryParamsOmitNilAndEncodeOnce(t *testing.T) {
	var got *url.URL
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		u := *r.URL
		got = &u
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	err := c.do(context.Background(), http.MethodGet, "/v1/things", Params{
		"page":    2,
		"q":       "hello world & more",
		"skipped": nil,
	}, nil, &struct{}{})
	if err != nil {
		t.Fatalf("do: %v", err)
	}

	q := got.Query()
	if _, ok := q["skipped"]; ok {
		t.Fatalf("nil-valued param should be omitted, got query %q", got.RawQuery)
	}
	if q.Get("page") != "2" {
		t.Fatalf("page = %q, want 2", q.Get("page"))
	}
	if q.Get("q") != "hello world & more" {
		t.Fatalf("q decoded to %q", q.Get("q"))
	}
	// Encoded exactly once: the raw query must contain the escaped form.
	if !strings.Contains(got.RawQuery, "hello+world+%26+more") {
		t.Fatalf("raw query %q not singly percent-encoded", got.RawQuery)
	}
}

func TestQuerySeparatorRespectsExistingQueryString(t *testing.T) {
	var raw string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	err := c.do(context.Background(), http.MethodGet, "/v1/things?fixed=1", Params{"page": 1}, nil, &struct{}{})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if raw != "fixed=1&page=1" {
		t.Fatalf("raw query = %q, want fixed=1&page=1", raw)
	}
}

func TestJSONBodyGetsJSONContentType(t *testing.T) {
	var contentType, body string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	payload := map[string]string{"goal": "fix the bug"}
	if err := c.do(context.Background(), http.MethodPost, "/v1/things", nil, payload, nil); err != nil {
		t.Fatalf("do: %v", err)
	}
	if contentType != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", contentType)
	}
	var decoded map[string]string
	if err := json.Unmarshal([]byte(body), &decoded); err != nil || decoded["goal"] != "fix the bug" {
		t.Fatalf("body %q is not the JSON-serialised payload", body)
	}
}

func TestMultipartBodyPassesThroughUnchanged(t *testing.T) {
	var contentType, body string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusNoContent)
	})

	var buf strings.Builder
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormField("name")
	if err != nil {
		t.Fatalf("form field: %v", err)
	}
	_, _ = fw.Write([]byte("value"))
	_ = mw.Close()
	raw := buf.String()

	err = c.do(context.Background(), http.MethodPost, "/v1/upload", nil,
		RawBody(strings.NewReader(raw), mw.FormDataContentType()), nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if contentType != mw.FormDataContentType() {
		t.Fatalf("Content-Type = %q, want the multipart boundary type", contentType)
	}
	if body != raw {
		t.Fatalf("multipart body was modified in transit")
	}
}

func TestUnauthorizedFiresHookAndFails(t *testing.T) {
	fired := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, WithAuthFailedHook(func() { fired++ }))

	err := c.do(context.Background(), http.MethodGet, "/v1/agent/sessions/abc", nil, nil, nil)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
	if fired != 1 {
		t.Fatalf("auth hook fired %d times, want 1", fired)
	}
}

func TestUnauthorizedOnLoginPathDoesNotLoop(t *testing.T) {
	fired := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, WithAuthFailedHook(func() { fired++ }))

	err := c.Login(context.Background(), "user", "wrong")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
	if fired != 0 {
		t.Fatalf("auth hook must not fire for the login path itself, fired %d times", fired)
	}
}

func TestErrorMessageFromJSONBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "not found"}`))
	})

	err := c.do(context.Background(), http.MethodGet, "/v1/missing", nil, nil, nil)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if apiErr.Message != "not found" {
		t.Fatalf("message = %q, want %q", apiErr.Message, "not found")
	}
	if apiErr.Status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", apiErr.Status)
	}
}

func TestErrorMessageFallbackContainsStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>boom</html>"))
	})

	err := c.do(context.Background(), http.MethodGet, "/v1/broken", nil, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("err = %v, want a message containing the status 500", err)
	}
}

func TestNonJSONSuccessReturnsRawText(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("pong"))
	})

	var out string
	if err := c.do(context.Background(), http.MethodGet, "/ping", nil, nil, &out); err != nil {
		t.Fatalf("do: %v", err)
	}
	if out != "pong" {
		t.Fatalf("out = %q, want pong", out)
	}
}

func TestSingleAttemptNoRetry(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	_ = c.do(context.Background(), http.MethodGet, "/v1/flaky", nil, nil, nil)
	if calls != 1 {
		t.Fatalf("server saw %d calls, want exactly 1", calls)
	}
}

func TestResourcePathsAndEnvelopes(t *testing.T) {
	var gotPath, gotMethod string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/v1/user/sessions":
			_, _ = w.Write([]byte(`{"data":[{"session_id":"s1","status":"CODING"}],"meta":{"total":1,"page":1,"per_page":20}}`))
		case strings.HasSuffix(r.URL.Path, "/toggle"):
			_, _ = w.Write([]byte(`{"id":3,"enabled":false,"message":"disabled"}`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	})
	ctx := context.Background()

	list, err := c.ListSessions(ctx, 1, 20, "")
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if gotPath != "/v1/user/sessions" || gotMethod != http.MethodGet {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	if len(list.Data) != 1 || list.Data[0].SessionID != "s1" || list.Meta.Total != 1 {
		t.Fatalf("unexpected envelope: %+v", list)
	}

	if err := c.ApproveSession(ctx, "s1"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if gotPath != "/v1/agent/sessions/s1/approve" || gotMethod != http.MethodPost {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}

	res, err := c.ToggleAIProfile(ctx, 3)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if gotPath != "/v1/admin/ai-profiles/3/toggle" || gotMethod != http.MethodPatch {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	if res.Enabled || res.ID != 3 {
		t.Fatalf("unexpected toggle result: %+v", res)
	}
}
