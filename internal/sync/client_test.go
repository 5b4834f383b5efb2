package sync

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/retailops/allocator/internal/catalog"
	"github.com/retailops/allocator/internal/engine"
)

func newUpstream(t *testing.T, itemsJSON, storesJSON string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/items":
			w.Write([]byte(itemsJSON))
		case "/stores":
			w.Write([]byte(storesJSON))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestClientFetchSnapshot(t *testing.T) {
	srv := newUpstream(t,
		`[{"number":"A100","description":"Blue Widget","skus":["SKU1","SKU9"]},{"number":"","description":"junk"}]`,
		`[{"code":"001","name":"Downtown","rank":"a"},{"code":"","name":"junk"}]`,
	)
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	snap, err := c.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}

	if len(snap.Items) != 1 {
		t.Fatalf("got %d items, want 1 (blank numbers dropped)", len(snap.Items))
	}
	if snap.Items[0].Number != "A100" || len(snap.Items[0].SKUs) != 2 {
		t.Errorf("item = %+v", snap.Items[0])
	}
	if len(snap.Stores) != 1 {
		t.Fatalf("got %d stores, want 1 (blank codes dropped)", len(snap.Stores))
	}
	if snap.Stores[0].Rank != engine.RankA {
		t.Errorf("Rank = %q, want %q", snap.Stores[0].Rank, engine.RankA)
	}
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sekrit", 5*time.Second)
	if _, err := c.FetchSnapshot(context.Background()); err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}
	if gotAuth != "Bearer sekrit" {
		t.Errorf("Authorization = %q, want Bearer sekrit", gotAuth)
	}
}

func TestClientUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "catalog unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	if _, err := c.FetchSnapshot(context.Background()); err == nil {
		t.Fatal("expected error on 503 upstream")
	}
}

type stubFetcher struct {
	snap *catalog.Snapshot
	err  error
}

func (s *stubFetcher) FetchSnapshot(context.Context) (*catalog.Snapshot, error) {
	return s.snap, s.err
}

type stubPersister struct {
	calls int
	err   error
}

func (s *stubPersister) Replace(context.Context, *catalog.Snapshot) error {
	s.calls++
	return s.err
}

func TestSchedulerRefreshOnce(t *testing.T) {
	snap := &catalog.Snapshot{Items: []engine.CatalogItem{{Number: "A100"}}}
	cache := &catalog.Cache{}
	persist := &stubPersister{}
	s := NewScheduler(&stubFetcher{snap: snap}, persist, cache, time.Hour)

	if err := s.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("RefreshOnce: %v", err)
	}
	if persist.calls != 1 {
		t.Errorf("persist called %d times, want 1", persist.calls)
	}
	if cache.Get() != snap {
		t.Error("cache not swapped to new snapshot")
	}
}

func TestSchedulerKeepsOldSnapshotOnFailure(t *testing.T) {
	old := &catalog.Snapshot{Items: []engine.CatalogItem{{Number: "OLD"}}}
	cache := &catalog.Cache{}
	cache.Set(old)

	s := NewScheduler(&stubFetcher{err: errors.New("upstream down")}, &stubPersister{}, cache, time.Hour)
	if err := s.RefreshOnce(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
	if cache.Get() != old {
		t.Error("failed refresh must not replace the serving snapshot")
	}
}

func TestSchedulerPersistFailureKeepsOldSnapshot(t *testing.T) {
	old := &catalog.Snapshot{}
	cache := &catalog.Cache{}
	cache.Set(old)

	s := NewScheduler(
		&stubFetcher{snap: &catalog.Snapshot{}},
		&stubPersister{err: errors.New("db down")},
		cache, time.Hour)
	if err := s.RefreshOnce(context.Background()); err == nil {
		t.Fatal("expected persist error")
	}
	if cache.Get() != old {
		t.Error("failed persist must not replace the serving snapshot")
	}
}
