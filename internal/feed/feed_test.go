package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tochemey/goakt/v3/log"
)

const twoInstances = `[
	{"id": "a", "name": "vm-a", "flavor": {"vcpus": 1, "ram": 512}, "tenant": {"id": "t1", "name": "demo"}},
	{"id": "b", "name": "vm-b", "flavor": {"vcpus": 2, "ram": 2048}, "tenant": {"id": "t2", "name": "admin"}}
]`

func TestClient_Instances(t *testing.T) {
	var gotQuery, gotAjax, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("json")
		gotAjax = r.Header.Get("X-Requested-With")
		gotToken = r.Header.Get("X-Auth-Token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(twoInstances))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/admin/flocking/", WithToken("secret"), WithLogger(log.DiscardLogger))
	list, err := c.Instances(context.Background())
	if err != nil {
		t.Fatalf("Instances() unexpected error: %v", err)
	}
	if len(list) != 2 || list[1].Flavor.VCPUs != 2 {
		t.Errorf("Unexpected instances %+v", list)
	}
	if gotQuery != "true" {
		t.Errorf("json query = %q; want \"true\"", gotQuery)
	}
	if gotAjax != "XMLHttpRequest" {
		t.Errorf("X-Requested-With = %q; want XMLHttpRequest", gotAjax)
	}
	if gotToken != "secret" {
		t.Errorf("X-Auth-Token = %q; want secret", gotToken)
	}
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, "boom", nil},
		{"invalid record", http.StatusOK, `[{"id": "a", "flavor": {"vcpus": 0, "ram": 1}, "tenant": {"id": "t"}}]`, nil},
		{"empty list", http.StatusOK, `[]`, ErrNoInstances},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, WithLogger(log.DiscardLogger)).Instances(context.Background())
			if err == nil {
				t.Fatal("Instances() expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Instances() error = %v; want %v", err, tt.want)
			}
		})
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(twoInstances))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewClient(srv.URL, WithLogger(log.DiscardLogger)).Instances(ctx); err == nil {
		t.Error("Instances() expected an error on a canceled context")
	}
}

func TestFile_Instances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instances.json")
	if err := os.WriteFile(path, []byte(twoInstances), 0o600); err != nil {
		t.Fatal(err)
	}

	list, err := File(path).Instances(context.Background())
	if err != nil {
		t.Fatalf("File.Instances() unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("File.Instances() returned %d instances; want 2", len(list))
	}

	if _, err := File(filepath.Join(t.TempDir(), "missing.json")).Instances(context.Background()); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestSample_Instances(t *testing.T) {
	list, err := Sample{}.Instances(context.Background())
	if err != nil || len(list) == 0 {
		t.Errorf("Sample.Instances() = %d, %v", len(list), err)
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name      string
		demo      bool
		file, url string
		want      string
		wantErr   error
	}{
		{"demo wins", true, "x.json", "http://h", "feed.Sample", nil},
		{"file over url", false, "x.json", "http://h", "feed.File", nil},
		{"url", false, "", "http://h", "*feed.Client", nil},
		{"nothing", false, "", "", "", ErrNoSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Select(tt.demo, tt.file, tt.url, "", log.DiscardLogger)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Select() error = %v; want %v", err, tt.wantErr)
			}
			if got := typeName(src); err == nil && got != tt.want {
				t.Errorf("Select() = %s; want %s", got, tt.want)
			}
		})
	}
}

func typeName(v interface{}) string {
	return fmt.Sprintf("%T", v)
}
