package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := New()
	m.CacheHit()
	m.CacheHit()
	m.CacheMiss()
	m.CacheRefresh()
	m.RecordRequest(200)
	m.RecordRequest(404)
	m.RecordRequest(500)
	m.RecordPageView("index")
	m.RecordPageView("index")
	m.RecordAPIRequest(true)
	m.RecordAPIRequest(false)
	m.RecordDownload(100, 10*time.Millisecond)
	m.RecordDownload(50, 30*time.Millisecond)
	m.RecordDownloadError()

	s := m.Snapshot()
	if s.CacheHits != 2 || s.CacheMisses != 1 || s.CacheRefreshes != 1 {
		t.Errorf("cache counters = %d/%d/%d", s.CacheHits, s.CacheMisses, s.CacheRefreshes)
	}
	if s.RequestsTotal != 3 || s.RequestErrors4xx != 1 || s.RequestErrors5xx != 1 {
		t.Errorf("request counters = %d/%d/%d", s.RequestsTotal, s.RequestErrors4xx, s.RequestErrors5xx)
	}
	if s.PageViews["index"] != 2 {
		t.Errorf("page views = %v", s.PageViews)
	}
	if s.APIRequests != 2 || s.APIUnauthorized != 1 {
		t.Errorf("api counters = %d/%d", s.APIRequests, s.APIUnauthorized)
	}
	if s.DownloadsTotal != 2 || s.DownloadBytesTotal != 150 || s.DownloadErrorsTotal != 1 {
		t.Errorf("download counters = %+v", s)
	}
	if s.DownloadAvgDurationMs != 20 {
		t.Errorf("avg duration = %v, want 20", s.DownloadAvgDurationMs)
	}
}

func TestSnapshot_IsCopy(t *testing.T) {
	m := New()
	m.RecordPageView("files")
	s := m.Snapshot()
	s.PageViews["files"] = 99

	if got := m.Snapshot().PageViews["files"]; got != 1 {
		t.Fatalf("snapshot mutation leaked into metrics: %d", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.CacheHit()
	m.RecordPageView(`we"ird`)

	rr := httptest.NewRecorder()
	Handler(m, "v1.2.3")(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type = %q", ct)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`cdn_info{version="v1.2.3"} 1`,
		`cdn_session_cache_total{result="hit"} 1`,
		`cdn_page_views_total{page="we\"ird"} 1`,
		"# TYPE cdn_requests_total counter",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in:\n%s", want, body)
		}
	}
}
