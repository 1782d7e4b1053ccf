package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/finc/marcfacts/container"
)

const selectResponse = `{
  "responseHeader": {"status": 0, "QTime": 1},
  "response": {"numFound": 2, "docs": [
    {"id": "2000000002", "title": "Journal of Testing", "format": ["Journal", "eJournal"]},
    {"id": "3000000003", "title": ["Collected essays"], "format": "Book"}
  ]}
}`

func TestSolrClientSearch(t *testing.T) {
	var gotQuery, gotRows string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/solr/biblio/select" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query().Get("q")
		gotRows = r.URL.Query().Get("rows")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(selectResponse))
	}))
	defer srv.Close()

	c := NewSolrClient(Config{URL: srv.URL + "/solr/biblio/", Timeout: time.Second})
	q := container.Query{LookFor: container.LookupQuery([]string{"2000000002", "3000000003"}, ""), Limit: 2}

	records, err := c.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotQuery != `id:"2000000002" OR id:"3000000003"` {
		t.Errorf("q = %s", gotQuery)
	}
	if gotRows != "2" {
		t.Errorf("rows = %s", gotRows)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	journal := records[0].(Document)
	if journal.ID() != "2000000002" || journal.Title() != "Journal of Testing" {
		t.Errorf("first doc = %+v", journal)
	}
	if journal.IsBook() {
		t.Error("journal reported as book")
	}

	book := records[1].(Document)
	if book.Title() != "Collected essays" {
		t.Errorf("multi-valued title = %q", book.Title())
	}
	if !book.IsBook() {
		t.Error("book not reported as book")
	}
}

func TestSolrClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"bad request", http.StatusBadRequest, `{"error": {"msg": "undefined field foo"}}`, "undefined field foo"},
		{"solr status", http.StatusOK, `{"responseHeader": {"status": 1}}`, "solr status 1"},
		{"garbage", http.StatusOK, `<html>`, "decoding solr response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewSolrClient(Config{URL: srv.URL})
			_, err := c.Search(context.Background(), container.Query{LookFor: `id:"1"`})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestSolrClientCustomFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fl := r.URL.Query().Get("fl"); !strings.Contains(fl, "record_id") {
			t.Errorf("fl = %s", fl)
		}
		_, _ = w.Write([]byte(`{"response": {"docs": [{"record_id": "x1", "marc": "` +
			`<record><leader>00000nam a2200000 c 4500</leader></record>"}]}}`))
	}))
	defer srv.Close()

	c := NewSolrClient(Config{URL: srv.URL, IDField: "record_id", RecordField: "marc"})
	records, err := c.Search(context.Background(), container.Query{LookFor: `id:"x1"`})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	doc := records[0].(Document)
	if doc.ID() != "x1" {
		t.Errorf("ID() = %q", doc.ID())
	}
	if !doc.IsBook() {
		t.Error("leader/07 m should mark the container as a book")
	}
}

func TestSolrClientSharedQueryOutlivesCanceledCaller(t *testing.T) {
	arrived := make(chan struct{}, 4)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}
		<-release
		_, _ = w.Write([]byte(selectResponse))
	}))
	defer srv.Close()

	c := NewSolrClient(Config{URL: srv.URL, Timeout: 5 * time.Second})
	q := container.Query{LookFor: `id:"2000000002"`}

	impatient, cancel := context.WithCancel(context.Background())
	impatientErr := make(chan error, 1)
	go func() {
		_, err := c.Search(impatient, q)
		impatientErr <- err
	}()
	<-arrived

	type result struct {
		records []container.Record
		err     error
	}
	patient := make(chan result, 1)
	go func() {
		records, err := c.Search(context.Background(), q)
		patient <- result{records, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	if err := <-impatientErr; !errors.Is(err, context.Canceled) {
		t.Errorf("canceled caller got %v, want context.Canceled", err)
	}

	close(release)
	res := <-patient
	if res.err != nil {
		t.Fatalf("second caller failed: %v", res.err)
	}
	if len(res.records) != 2 {
		t.Errorf("got %d records, want 2", len(res.records))
	}
}
