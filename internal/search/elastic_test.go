package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newFakeES serves canned Elasticsearch responses. The product header is
// required or the v8 client rejects the server.
func newFakeES(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
}

func newTestElastic(t *testing.T, srvURL string) *Elastic {
	t.Helper()
	e, err := NewElastic(ElasticConfig{
		Addresses:      []string{srvURL},
		ReportsIndex:   "reports",
		DocsIndex:      "docs",
		KnownReportIDs: []string{"oil_event", "chess_rep", "measure_rep", "gaz_rep"},
	})
	if err != nil {
		t.Fatalf("new elastic: %v", err)
	}
	return e
}

func TestReportsQueryAndParsing(t *testing.T) {
	var gotBody map[string]any
	srv := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/reports/_search") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"hits":{"hits":[
			{"_id":"oil_event","_score":7.2,"_source":{"report_description":"field work plans","tags":["plan","repair"]}},
			{"_id":"gaz_rep","_score":2.1,"_source":{"report_description":"gas utilization"}}
		]}}`))
	})
	defer srv.Close()

	hits, err := newTestElastic(t, srv.URL).Reports(context.Background(), "work plan repairs")
	if err != nil {
		t.Fatalf("reports: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ID != "oil_event" || hits[0].Score != 7.2 || len(hits[0].Tags) != 2 {
		t.Fatalf("unexpected first hit: %+v", hits[0])
	}
	// The query must be restricted to the catalog's document ids.
	raw, _ := json.Marshal(gotBody)
	if !strings.Contains(string(raw), "oil_event") || !strings.Contains(string(raw), "terms") {
		t.Fatalf("known-id restriction missing from query: %s", raw)
	}
}

func TestDocumentsParsing(t *testing.T) {
	srv := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hits":{"hits":[
			{"_id":"d1","_score":3.3,"_source":{"content":"To export a table, open the report menu."}}
		]}}`))
	})
	defer srv.Close()

	docs, err := newTestElastic(t, srv.URL).Documents(context.Background(), "export", 5)
	if err != nil {
		t.Fatalf("documents: %v", err)
	}
	if len(docs) != 1 || !strings.Contains(docs[0].Content, "export a table") {
		t.Fatalf("unexpected docs: %+v", docs)
	}
}

func TestTableJSON(t *testing.T) {
	srv := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reports/_doc/oil_event" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"found":false}`))
			return
		}
		w.Write([]byte(`{"found":true,"_source":{"table_data_json":"[{\"well\":101}]"}}`))
	})
	defer srv.Close()

	e := newTestElastic(t, srv.URL)
	raw, err := e.TableJSON(context.Background(), "oil_event")
	if err != nil {
		t.Fatalf("table json: %v", err)
	}
	if string(raw) != `[{"well":101}]` {
		t.Fatalf("unexpected table payload: %s", raw)
	}
	if _, err := e.TableJSON(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for missing document")
	}
}

func TestSearchErrorStatus(t *testing.T) {
	srv := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"shard failure"}`))
	})
	defer srv.Close()

	if _, err := newTestElastic(t, srv.URL).Documents(context.Background(), "q", 3); err == nil {
		t.Fatal("expected error on 500 response")
	}
}
