package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
)

// fakeES records requests and answers like a single-node cluster.
type fakeES struct {
	mu           sync.Mutex
	requests     []string
	bodies       []string
	missingIndex bool
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(b))
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodHead && f.missingIndex:
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodDelete && strings.HasSuffix(r.URL.Path, "/missing"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"p1","_source":{"id":"p1","title":"Desk lamp","price":20,"discount_price":15,"in_stock":true}}]}}`))
	default:
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}
}

// body returns the payload of the first request matching line.
func (f *fakeES) body(line string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.requests {
		if r == line {
			return f.bodies[i], true
		}
	}
	return "", false
}

func newTestIndex(t *testing.T) (*fakeES, *PostIndex) {
	t.Helper()
	fake := &fakeES{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	if err != nil {
		t.Fatal(err)
	}
	return fake, NewPostIndex(es, "posts")
}

func TestIndexAndRemove(t *testing.T) {
	fake, idx := newTestIndex(t)
	ctx := context.Background()

	if err := idx.Index(ctx, &entity.Post{ID: "p1", Title: "Desk lamp", Price: 20}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Remove(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	if err := idx.Remove(ctx, "missing"); err != nil {
		t.Fatalf("removing an absent doc should be a no-op: %v", err)
	}

	indexed, ok := fake.body("PUT /posts/_doc/p1")
	if !ok {
		t.Fatalf("no index request in %v", fake.requests)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(indexed), &doc); err != nil {
		t.Fatal(err)
	}
	if doc["title"] != "Desk lamp" {
		t.Fatalf("doc = %v", doc)
	}
	if _, ok := fake.body("DELETE /posts/_doc/p1"); !ok {
		t.Fatalf("no delete request in %v", fake.requests)
	}
}

func TestSearch(t *testing.T) {
	fake, idx := newTestIndex(t)

	posts, err := idx.Search(context.Background(), "lamp", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 || posts[0].ID != "p1" || posts[0].EffectivePrice() != 15 {
		t.Fatalf("posts = %+v", posts)
	}

	body, ok := fake.body("POST /posts/_search")
	if !ok {
		t.Fatalf("no search request in %v", fake.requests)
	}
	if !strings.Contains(body, `"multi_match"`) || !strings.Contains(body, `"size":5`) {
		t.Fatalf("query = %s", body)
	}
}

func TestEnsureIndex(t *testing.T) {
	fake, idx := newTestIndex(t)
	if err := idx.EnsureIndex(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := fake.body("PUT /posts"); ok {
		t.Fatal("existing index must not be recreated")
	}

	fake.missingIndex = true
	if err := idx.EnsureIndex(context.Background()); err != nil {
		t.Fatal(err)
	}
	mapping, ok := fake.body("PUT /posts")
	if !ok {
		t.Fatalf("no create request in %v", fake.requests)
	}
	if !strings.Contains(mapping, `"user_id"`) || !strings.Contains(mapping, `"keyword"`) {
		t.Fatalf("mapping = %s", mapping)
	}
}
