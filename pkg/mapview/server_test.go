package mapview

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	out := t.TempDir()
	if err := os.WriteFile(filepath.Join(out, "index.html"), []byte("<html>map</html>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ts := httptest.NewServer(New(&Config{OutDir: out}, dataset()).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestPointsHandler(t *testing.T) {
	ts := newTestServer(t)

	var ps []Point
	if code := get(t, ts.URL+"/api/points", &ps); code != http.StatusOK {
		t.Fatalf("status = %d, want %d", code, http.StatusOK)
	}
	if diff := cmp.Diff(Points(dataset()), ps); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
}

func TestRegionHandlers(t *testing.T) {
	ts := newTestServer(t)

	var rs []Region
	if code := get(t, ts.URL+"/api/regions", &rs); code != http.StatusOK {
		t.Fatalf("status = %d, want %d", code, http.StatusOK)
	}
	if len(rs) != len(DefaultRegions)+1 {
		t.Errorf("got %d regions, want %d", len(rs), len(DefaultRegions)+1)
	}

	var r Region
	if code := get(t, ts.URL+"/api/regions/florence", &r); code != http.StatusOK {
		t.Fatalf("status = %d, want %d", code, http.StatusOK)
	}
	if r.Lat != 43.769562 || r.Lon != 11.255814 || r.Zoom != 11 {
		t.Errorf("florence = %+v", r)
	}

	if code := get(t, ts.URL+"/api/regions/atlantis", nil); code != http.StatusNotFound {
		t.Errorf("unknown region status = %d, want %d", code, http.StatusNotFound)
	}
}

func TestPhotoHandler(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantURL  string
	}{
		{name: "match", query: "datetime=2023-06-17+18:30:00&lat=43.77&lon=11.25", wantCode: http.StatusOK, wantURL: "/_/photos/IMG_2.jpg"},
		{name: "wrong time", query: "datetime=2023-06-17+18:31:00&lat=43.77&lon=11.25", wantCode: http.StatusNotFound},
		{name: "wrong position", query: "datetime=2023-06-17+18:30:00&lat=40.75&lon=14.48", wantCode: http.StatusNotFound},
		{name: "bad datetime", query: "datetime=yesterday&lat=43.77&lon=11.25", wantCode: http.StatusBadRequest},
		{name: "bad lat", query: "datetime=2023-06-17+18:30:00&lat=north&lon=11.25", wantCode: http.StatusBadRequest},
		{name: "missing lon", query: "datetime=2023-06-17+18:30:00&lat=43.77", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			code := get(t, ts.URL+"/api/photo?"+tt.query, &body)
			if code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%v)", code, tt.wantCode, body)
			}
			if tt.wantURL != "" && body["url"] != tt.wantURL {
				t.Errorf("url = %q, want %q", body["url"], tt.wantURL)
			}
		})
	}
}

func TestStaticAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	for path, want := range map[string]string{
		"/":        "<html>map</html>",
		"/metrics": "go_goroutines",
	} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		bs, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if resp.StatusCode != http.StatusOK || !strings.Contains(string(bs), want) {
			t.Errorf("GET %s = %d, want body containing %q", path, resp.StatusCode, want)
		}
	}
}
