package syncclient_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/repcoach/internal/errors"
	"github.com/myrjola/repcoach/internal/history"
	"github.com/myrjola/repcoach/internal/progress"
	"github.com/myrjola/repcoach/internal/syncclient"
	"github.com/myrjola/repcoach/internal/testhelpers"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const token = "secret-token"

// fakeServer implements the sync endpoints for a single user.
type fakeServer struct {
	mu      sync.Mutex
	days    history.CompletedDays
	failing map[string]bool
	pushes  int
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	f := &fakeServer{days: history.CompletedDays{}, failing: map[string]bool{}}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "password123" {
			http.Error(w, "invalid username or password", http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(syncclient.Session{Token: token, UserID: "u1", Username: in.Username})
	})
	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}
	mux.HandleFunc("GET /api/progress", authed(func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(f.days)
	}))
	mux.HandleFunc("POST /api/progress", authed(func(w http.ResponseWriter, r *http.Request) {
		var d progress.DayRef
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.pushes++
		if f.failing[d.DayID] {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		f.days.Add(d.ExerciseKey, d.DayID)
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeServer) setFailing(dayID string, failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[dayID] = failing
}

func (f *fakeServer) completed() history.CompletedDays {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.days.Clone()
}

func TestClient(t *testing.T) {
	_, srv := newFakeServer(t)
	c := syncclient.New(srv.URL, srv.Client())
	ctx := t.Context()

	if _, err := c.FetchProgress(ctx); !errors.Is(err, syncclient.ErrUnauthorized) {
		t.Errorf("FetchProgress() without token error = %v, want ErrUnauthorized", err)
	}
	if _, err := c.Login(ctx, "alice", "wrong"); !errors.Is(err, syncclient.ErrUnauthorized) {
		t.Errorf("Login() error = %v, want ErrUnauthorized", err)
	}
	session, err := c.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Token != token || c.Token() != token {
		t.Errorf("token not stored: %+v", session)
	}

	days := []progress.DayRef{
		{ExerciseKey: "pushups", DayID: "p11"},
		{ExerciseKey: "pushups", DayID: "p12"},
		{ExerciseKey: "squats", DayID: "s11"},
		{ExerciseKey: "squats", DayID: "s11"},
	}
	failed, err := c.PushAll(ctx, days)
	if err != nil || len(failed) != 0 {
		t.Fatalf("PushAll() = %v, %v", failed, err)
	}
	got, err := c.FetchProgress(ctx)
	if err != nil {
		t.Fatalf("FetchProgress: %v", err)
	}
	want := history.CompletedDays{"pushups": {"p11", "p12"}, "squats": {"s11"}}
	if diff := cmp.Diff(want, got, sortDays()); diff != "" {
		t.Errorf("FetchProgress() mismatch (-want +got):\n%s", diff)
	}
}

func TestSyncStore(t *testing.T) {
	f, srv := newFakeServer(t)
	c := syncclient.New(srv.URL, srv.Client())
	ctx := t.Context()
	if _, err := c.Login(ctx, "alice", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	store := syncclient.NewSyncStore(progress.NewMemoryStore(), c, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	// Days completed on another device show up locally.
	if err := c.PushDay(ctx, progress.DayRef{ExerciseKey: "plank", DayID: "k11"}); err != nil {
		t.Fatalf("PushDay: %v", err)
	}

	f.setFailing("p12", true)
	if err := store.Save(ctx, progress.Patch{AddDays: []progress.DayRef{
		{ExerciseKey: "pushups", DayID: "p11"},
		{ExerciseKey: "pushups", DayID: "p12"},
	}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if unpushed := store.Unpushed(); len(unpushed) == 0 {
		t.Fatal("expected unpushed days after a failed push")
	}

	f.setFailing("p12", false)
	if err := store.Save(ctx, progress.Patch{AddDays: []progress.DayRef{{ExerciseKey: "pushups", DayID: "p13"}}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if unpushed := store.Unpushed(); len(unpushed) != 0 {
		t.Errorf("Unpushed() = %v, want none", unpushed)
	}

	wantRemote := history.CompletedDays{"plank": {"k11"}, "pushups": {"p11", "p12", "p13"}}
	if diff := cmp.Diff(wantRemote, f.completed(), sortDays()); diff != "" {
		t.Errorf("remote days mismatch (-want +got):\n%s", diff)
	}

	state, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(wantRemote, state.CompletedDays, sortDays()); diff != "" {
		t.Errorf("merged days mismatch (-want +got):\n%s", diff)
	}
}

func TestSyncStore_remoteDown(t *testing.T) {
	_, srv := newFakeServer(t)
	c := syncclient.New(srv.URL, srv.Client())
	store := syncclient.NewSyncStore(progress.NewMemoryStore(), c, testhelpers.NewLogger(testhelpers.NewWriter(t)))
	ctx := t.Context()

	// Without a token every remote call is rejected but local saves and loads keep working.
	if err := store.Save(ctx, progress.Patch{AddDays: []progress.DayRef{{ExerciseKey: "dips", DayID: "d11"}}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	state, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(history.CompletedDays{"dips": {"d11"}}, state.CompletedDays); diff != "" {
		t.Errorf("local days mismatch (-want +got):\n%s", diff)
	}
	if got := store.Unpushed(); len(got) != 1 {
		t.Errorf("Unpushed() = %v, want d11", got)
	}
}
