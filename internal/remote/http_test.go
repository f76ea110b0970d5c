package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lootledger/internal/core"
	"lootledger/internal/log"
)

func newTestStore(t *testing.T, baseURL string, maxRetries int) *HTTPStore {
	t.Helper()
	store, err := NewHTTPStore(HTTPStoreConfig{
		BaseURL:    baseURL,
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
		RetryDelay: 10 * time.Millisecond,
	}, log.New(log.DefaultConfig()))
	if err != nil {
		t.Fatalf("NewHTTPStore: %v", err)
	}
	return store
}

func TestFetchUserRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users/alice/record" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"username":"alice","records":{"2024-05-01":{"gold":100}}}`))
	}))
	defer srv.Close()

	store := newTestStore(t, srv.URL, 0)
	rec, err := store.FetchUserRecord(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FetchUserRecord: %v", err)
	}
	if rec.Username != "alice" {
		t.Errorf("username = %q", rec.Username)
	}
	if rec.Records["2024-05-01"].Resources.Gold != 100 {
		t.Errorf("gold = %d, want 100", rec.Records["2024-05-01"].Resources.Gold)
	}
}

func TestFetchUserRecord_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	store := newTestStore(t, srv.URL, 2)
	_, err := store.FetchUserRecord(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestRetry_ServerErrorThenSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"available":true}`))
	}))
	defer srv.Close()

	store := newTestStore(t, srv.URL, 2)
	available, err := store.CheckUsernameAvailable(context.Background(), "bob")
	if err != nil {
		t.Fatalf("CheckUsernameAvailable: %v", err)
	}
	if !available {
		t.Error("expected available")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := newTestStore(t, srv.URL, 2)
	_, err := store.CheckUsernameAvailable(context.Background(), "bob")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", got)
	}
}

func TestClientError_NoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	store := newTestStore(t, srv.URL, 2)
	_, err := store.CheckUsernameAvailable(context.Background(), "bob")
	if err == nil {
		t.Fatal("expected error on 400")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 (4xx is terminal)", got)
	}
}

func TestPushUserRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type = %q", got)
		}
		w.Write([]byte(`{"success":true,"totalUserCount":42}`))
	}))
	defer srv.Close()

	store := newTestStore(t, srv.URL, 0)
	rec := core.NewUserRecord("carol", time.Now())
	result, err := store.PushUserRecord(context.Background(), rec)
	if err != nil {
		t.Fatalf("PushUserRecord: %v", err)
	}
	if result.TotalUserCount != 42 {
		t.Errorf("totalUserCount = %d, want 42", result.TotalUserCount)
	}
}

func TestPushUserRecord_RemoteRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	store := newTestStore(t, srv.URL, 0)
	_, err := store.PushUserRecord(context.Background(), core.NewUserRecord("carol", time.Now()))
	if err == nil {
		t.Fatal("expected error when remote reports failure")
	}
}

func TestContextCancelStopsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store, err := NewHTTPStore(HTTPStoreConfig{
		BaseURL:    srv.URL,
		MaxRetries: 10,
		RetryDelay: time.Second,
	}, log.New(log.DefaultConfig()))
	if err != nil {
		t.Fatalf("NewHTTPStore: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = store.CheckUsernameAvailable(ctx, "bob")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want context.DeadlineExceeded", err)
	}
}
