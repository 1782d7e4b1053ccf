package container

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/finc/marcfacts/classify"
	"github.com/finc/marcfacts/marc"
	"github.com/finc/marcfacts/network"
)

type fakeRecord struct {
	id    string
	title string
	book  bool
}

func (f fakeRecord) ID() string    { return f.id }
func (f fakeRecord) Title() string { return f.title }
func (f fakeRecord) IsBook() bool  { return f.book }

// countingSearcher records every query it receives.
type countingSearcher struct {
	calls   atomic.Int32
	queries []string
	results []Record
	err     error
}

func (s *countingSearcher) Search(ctx context.Context, q Query) ([]Record, error) {
	s.calls.Add(1)
	s.queries = append(s.queries, q.LookFor)
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func profile(t *testing.T, code string) *network.Profile {
	t.Helper()
	r, err := network.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	p, ok := r.Get(code)
	if !ok {
		t.Fatalf("profile %s missing", code)
	}
	return p
}

func article() *marc.Record {
	return marc.NewRecord("00000naa a2200000 c 4500").AddControlField("001", "a1")
}

func resolve(t *testing.T, rec *marc.Record, code string, s Searcher) Info {
	t.Helper()
	r := New(rec, profile(t, code), classify.Classify(rec), s)
	return r.Resolve(context.Background())
}

func TestResolveComposite(t *testing.T) {
	rec := article().AddDataField("773", "0", "8",
		"a", "In: Journal of Testing",
		"g", "H. 3, S. 45-60 (2019)")

	got := resolve(t, rec, "FIS", nil)
	want := Info{
		Title:     "Journal of Testing",
		Issue:     "3",
		Pages:     "45-60",
		StartPage: "45",
		EndPage:   "60",
		Year:      "2019",
		Raw773g:   "H. 3, S. 45-60 (2019)",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestResolveLocalFallbacks(t *testing.T) {
	tests := []struct {
		name string
		rec  *marc.Record
		want Info
	}{
		{
			name: "936 wins over 773g",
			rec: article().
				AddDataField("773", "0", "8", "t", "Host journal", "g", "Jg. 9, H. 1, S. 1-2").
				AddDataField("936", "u", "w", "d", "12", "e", "4", "h", "100 - 110", "j", "2001"),
			want: Info{Title: "Host journal", Volume: "12", Issue: "4", Pages: "100-110", StartPage: "100", EndPage: "110", Year: "2001", Raw773g: "Jg. 9, H. 1, S. 1-2"},
		},
		{
			name: "773g patterns",
			rec: article().
				AddDataField("773", "0", "8", "t", "Host journal.", "g", "Bd. 7, Heft 2 (1999), S. 33"),
			want: Info{Title: "Host journal", Volume: "7", Issue: "2", Pages: "33", StartPage: "33", Year: "1999", Raw773g: "Bd. 7, Heft 2 (1999), S. 33"},
		},
		{
			name: "series fallback and isxn",
			rec: article().
				AddDataField("490", "1", " ", "a", "Lecture notes").
				AddDataField("773", "0", "8", "z", "978-3-16-148410-0"),
			want: Info{Title: "Lecture notes", ISXN: "978-3-16-148410-0"},
		},
		{
			name: "no container fields",
			rec:  article().AddDataField("245", "1", "0", "a", "Lonely"),
			want: Info{},
		},
		{
			name: "not a part",
			rec: marc.NewRecord("00000nam a2200000 c 4500").
				AddDataField("773", "0", "8", "t", "Ignored"),
			want: Info{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolve(t, tt.rec, "finc", nil)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v\nwant %+v", got, tt.want)
			}
		})
	}
}

func TestContainerIDs(t *testing.T) {
	rec := article().
		AddDataField("773", "0", "8",
			"w", "(DE-576)111111111",
			"w", "(DE-600)1234567-8",
			"w", "(DE-627)2000000002",
			"w", "(DE-627)2000000002",
			"w", "3000000003")

	got := ContainerIDs(rec, profile(t, "K10plus"))
	want := []string{"2000000002", "3000000003"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}

	if q := LookupQuery(want, ""); q != `id:"2000000002" OR id:"3000000003"` {
		t.Errorf("LookupQuery = %s", q)
	}
	if q := LookupQuery([]string{`a"b`}, "0-"); q != `id:"0-a\"b"` {
		t.Errorf("LookupQuery escaping = %s", q)
	}
}

func TestRemoteLookupIsIdempotent(t *testing.T) {
	rec := article().AddDataField("773", "0", "8", "w", "(DE-627)2000000002")
	s := &countingSearcher{results: []Record{fakeRecord{id: "2000000002", title: "In: Remote journal"}}}
	r := New(rec, profile(t, "K10plus"), classify.Classify(rec), s)

	ctx := context.Background()
	first := r.Resolve(ctx)
	second := r.Resolve(ctx)
	r.Invalidate()
	third := r.Resolve(ctx)
	r.IsContainerMonography(ctx)

	if got := s.calls.Load(); got != 1 {
		t.Fatalf("searcher called %d times, want 1", got)
	}
	if s.queries[0] != `id:"2000000002"` {
		t.Errorf("query = %s", s.queries[0])
	}
	for i, info := range []Info{first, second, third} {
		if info.Title != "Remote journal" {
			t.Errorf("resolve %d: title = %q", i, info.Title)
		}
		if len(info.Records) != 1 {
			t.Errorf("resolve %d: %d records", i, len(info.Records))
		}
	}
}

func TestRemoteLookupFailureDegrades(t *testing.T) {
	rec := article().AddDataField("773", "0", "8", "w", "(DE-627)2000000002")
	s := &countingSearcher{err: errors.New("connection refused")}
	r := New(rec, profile(t, "K10plus"), classify.Classify(rec), s)

	info := r.Resolve(context.Background())
	if info.Title != "" || info.Records != nil {
		t.Errorf("got %+v, want no container data", info)
	}

	var lookupErr *RemoteLookupError
	if !errors.As(r.LookupErr(), &lookupErr) {
		t.Fatalf("LookupErr() = %v, want RemoteLookupError", r.LookupErr())
	}
	if r.IsContainerMonography(context.Background()) {
		t.Error("IsContainerMonography true without container data")
	}
}

func TestRemoteLookupRetriedAfterFailure(t *testing.T) {
	rec := article().AddDataField("773", "0", "8", "w", "(DE-627)2000000002")
	s := &countingSearcher{err: errors.New("connection refused")}
	r := New(rec, profile(t, "K10plus"), classify.Classify(rec), s)

	ctx := context.Background()
	if info := r.Resolve(ctx); info.Title != "" {
		t.Fatalf("title = %q after failed lookup", info.Title)
	}

	s.err = nil
	s.results = []Record{fakeRecord{id: "2000000002", title: "Remote journal", book: true}}

	info := r.Resolve(ctx)
	if info.Title != "Remote journal" || len(info.Records) != 1 {
		t.Errorf("Resolve() after recovery = %+v", info)
	}
	if r.LookupErr() != nil {
		t.Errorf("LookupErr() = %v after successful retry", r.LookupErr())
	}
	if !r.IsContainerMonography(ctx) {
		t.Error("IsContainerMonography() = false, want true")
	}
	if got := r.Resolve(ctx).Title; got != "Remote journal" {
		t.Errorf("cached title = %q", got)
	}
	if got := s.calls.Load(); got != 2 {
		t.Errorf("searcher called %d times, want 2", got)
	}
}

func TestMonographyLookupRefreshesDescription(t *testing.T) {
	rec := article().AddDataField("773", "0", "8", "t", "Sammelband", "w", "(DE-627)1")
	s := &countingSearcher{results: []Record{fakeRecord{id: "1", book: true}}}
	r := New(rec, profile(t, "K10plus"), classify.Classify(rec), s)

	ctx := context.Background()
	if info := r.Resolve(ctx); len(info.Records) != 0 {
		t.Fatalf("local title should not trigger a lookup, got %d records", len(info.Records))
	}
	if !r.IsContainerMonography(ctx) {
		t.Fatal("IsContainerMonography() = false, want true")
	}
	info := r.Resolve(ctx)
	if info.Title != "Sammelband" || len(info.Records) != 1 {
		t.Errorf("Resolve() = %+v, want local title and the fetched record", info)
	}
}

type slowSearcher struct{}

func (slowSearcher) Search(ctx context.Context, q Query) ([]Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Second):
		return []Record{fakeRecord{id: "late", title: "Too late"}}, nil
	}
}

func TestRemoteLookupTimeout(t *testing.T) {
	rec := article().AddDataField("773", "0", "8", "w", "(DE-627)2000000002")
	r := New(rec, profile(t, "K10plus"), classify.Classify(rec), slowSearcher{}, WithTimeout(10*time.Millisecond))

	info := r.Resolve(context.Background())
	if info.Title != "" {
		t.Errorf("title = %q, want empty after timeout", info.Title)
	}
	if !errors.Is(r.LookupErr(), context.DeadlineExceeded) {
		t.Errorf("LookupErr() = %v, want deadline exceeded", r.LookupErr())
	}
}

func TestIsContainerMonography(t *testing.T) {
	tests := []struct {
		name    string
		rec     *marc.Record
		results []Record
		want    bool
	}{
		{
			name: "isbn on 773",
			rec:  article().AddDataField("773", "0", "8", "t", "Book", "z", "9783161484100"),
			want: true,
		},
		{
			name: "issn on 773",
			rec:  article().AddDataField("773", "0", "8", "t", "Journal", "x", "1234-5678"),
			want: false,
		},
		{
			name:    "container record is a book",
			rec:     article().AddDataField("773", "0", "8", "t", "Book", "w", "(DE-627)1"),
			results: []Record{fakeRecord{id: "1", book: true}},
			want:    true,
		},
		{
			name:    "container record is not a book",
			rec:     article().AddDataField("773", "0", "8", "t", "Journal", "w", "(DE-627)1"),
			results: []Record{fakeRecord{id: "1"}},
			want:    false,
		},
		{
			name: "not a part",
			rec:  marc.NewRecord("00000nam a2200000 c 4500").AddDataField("773", "0", "8", "z", "9783161484100"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &countingSearcher{results: tt.results}
			r := New(tt.rec, profile(t, "K10plus"), classify.Classify(tt.rec), s)
			if got := r.IsContainerMonography(context.Background()); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
