package workers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"proplookup/models"
)

func TestMatchKnownEndpoint(t *testing.T) {
	endpoints := []string{
		"https://coastalproperties.ie/wp-json/wp/v2/property",
		"https://hillviewestates.ie/wp-json/wp/v2/property",
	}

	ag := &models.Agency{Site: "https://www.hillviewestates.ie/about"}
	if got := matchKnownEndpoint(ag, endpoints); got != endpoints[1] {
		t.Fatalf("expected hillview endpoint, got %q", got)
	}

	ag = &models.Agency{Site: "https://unrelated.ie"}
	if got := matchKnownEndpoint(ag, endpoints); got != "" {
		t.Fatalf("expected no match, got %q", got)
	}
}

func TestDiscover_FollowsAPILink(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><link rel="https://api.w.org/" href="%s/wp-json/" /></head><body></body></html>`, srv.URL)
	})
	mux.HandleFunc("/wp-json/wp/v2/property", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})

	worker := NewWordPressProbeWorker(nil, srv.Client(), "")

	got := worker.discover(context.Background(), srv.URL)
	if !strings.HasPrefix(got, srv.URL+"/wp-json/wp/v2/property") {
		t.Fatalf("unexpected endpoint %q", got)
	}
}

func TestDiscover_NonWordPressSite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>plain site</title></head></html>`))
	}))
	defer srv.Close()

	worker := NewWordPressProbeWorker(nil, srv.Client(), "")

	if got := worker.discover(context.Background(), srv.URL); got != "" {
		t.Fatalf("expected no endpoint, got %q", got)
	}
}
