package s2

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matsen/motherload/internal/cache"
	"github.com/matsen/motherload/internal/provider"
)

func TestSplitAuthorName(t *testing.T) {
	tests := []struct {
		name      string
		wantFirst string
		wantLast  string
	}{
		{"Jane Smith", "Jane", "Smith"},
		{"Madonna", "", "Madonna"},
		{"Martin Luther King Jr", "Martin Luther", "King Jr"},
		{"  ", "", ""},
	}

	for _, tt := range tests {
		first, last := splitAuthorName(tt.name)
		if first != tt.wantFirst || last != tt.wantLast {
			t.Errorf("splitAuthorName(%q) = (%q, %q), want (%q, %q)", tt.name, first, last, tt.wantFirst, tt.wantLast)
		}
	}
}

func TestMapPaper(t *testing.T) {
	paper := S2Paper{
		Title:       "Deep Things",
		Year:        2021,
		Authors:     []S2Author{{Name: "Jane Smith"}, {Name: "Plato"}},
		Venue:       "NeurIPS",
		Journal:     &S2Journal{Name: "Proc NeurIPS", Volume: "34", Pages: "1-10"},
		ExternalIDs: ExternalIDs{DOI: "10.1/ABC"},
	}

	got := MapPaper(paper, false)
	if got.Get(provider.FieldDOI) != "" {
		t.Errorf("MapPaper(includeDOI=false) set doi %q", got.Get(provider.FieldDOI))
	}
	if got.Get(provider.FieldAuthors) != "Smith, Jane; Plato" {
		t.Errorf("authors = %q", got.Get(provider.FieldAuthors))
	}
	if got.Get(provider.FieldYear) != "2021" {
		t.Errorf("year = %q", got.Get(provider.FieldYear))
	}
	if got.Get(provider.FieldJournal) != "Proc NeurIPS" || got.Get(provider.FieldVenue) != "NeurIPS" {
		t.Errorf("journal/venue = %q/%q", got.Get(provider.FieldJournal), got.Get(provider.FieldVenue))
	}

	got = MapPaper(paper, true)
	if got.Get(provider.FieldDOI) != "10.1/abc" {
		t.Errorf("MapPaper(includeDOI=true) doi = %q, want 10.1/abc", got.Get(provider.FieldDOI))
	}

	if _, ok := MapPaper(S2Paper{}, true)[provider.FieldYear]; ok {
		t.Error("zero year should not be mapped")
	}
}

func TestLookupDOI(t *testing.T) {
	var gotPath, gotKey, gotFields string
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotFields = r.URL.Query().Get("fields")
		w.Write([]byte(`{"paperId":"abc","title":"T","year":2020,"authors":[{"name":"A B"}]}`))
	}))
	defer srv.Close()

	client := NewClient(provider.NewFetcher(nil), cache.New("", nil),
		WithBaseURL(srv.URL), WithAPIKey("secret"), WithFields("title,year,authors"))

	fields, err := client.LookupDOI(context.Background(), "10.1/x")
	if err != nil {
		t.Fatalf("LookupDOI() error = %v", err)
	}
	if gotPath != "/paper/DOI:10.1/x" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotFields != "title,year,authors" {
		t.Errorf("fields = %q", gotFields)
	}
	if fields.Get(provider.FieldTitle) != "T" || fields.Get(provider.FieldAuthors) != "B, A" {
		t.Errorf("fields = %v", fields)
	}

	if _, err := client.LookupDOI(context.Background(), "10.1/x"); err != nil {
		t.Fatalf("cached LookupDOI() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("server called %d times, want 1", calls)
	}
}

func TestLookupDOINotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := cache.New("", nil)
	client := NewClient(provider.NewFetcher(nil), c, WithBaseURL(srv.URL))
	_, err := client.LookupDOI(context.Background(), "10.1/missing")
	if !provider.IsNotFound(err) {
		t.Fatalf("LookupDOI() error = %v, want not found", err)
	}
	if c.Len("") != 0 {
		t.Error("failed lookup should not be cached")
	}
}

func TestSearchTitle(t *testing.T) {
	var gotQuery, gotFields string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotFields = r.URL.Query().Get("fields")
		w.Write([]byte(`{"total":1,"data":[{"title":"Hit","externalIds":{"DOI":"10.9/HIT"},"year":1999}]}`))
	}))
	defer srv.Close()

	client := NewClient(provider.NewFetcher(nil), nil, WithBaseURL(srv.URL), WithFields("title,year"))
	fields, err := client.SearchTitle(context.Background(), "Hit", "Smith", "1999")
	if err != nil {
		t.Fatalf("SearchTitle() error = %v", err)
	}
	if gotQuery != "Hit Smith" {
		t.Errorf("query = %q, want %q", gotQuery, "Hit Smith")
	}
	if gotFields != "title,year,externalIds" {
		t.Errorf("fields = %q", gotFields)
	}
	if fields.Get(provider.FieldDOI) != "10.9/hit" {
		t.Errorf("doi = %q", fields.Get(provider.FieldDOI))
	}
}

func TestSearchTitleEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total":0,"data":[]}`))
	}))
	defer srv.Close()

	c := cache.New("", nil)
	client := NewClient(provider.NewFetcher(nil), c, WithBaseURL(srv.URL))
	fields, err := client.SearchTitle(context.Background(), "Nothing", "", "")
	if err != nil {
		t.Fatalf("SearchTitle() error = %v", err)
	}
	if !fields.Empty() {
		t.Errorf("fields = %v, want empty", fields)
	}
	if v, ok := c.Get(string(provider.KindSemanticSearch), "Nothing||"); !ok || len(v) != 0 {
		t.Errorf("cache entry = %v, %v; want empty hit", v, ok)
	}
}
