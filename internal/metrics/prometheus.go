package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Handler serves m in the Prometheus text exposition format.
func Handler(m *Metrics, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(Render(m.Snapshot(), version)))
	}
}

// Render formats a snapshot as Prometheus text.
func Render(s Snapshot, version string) string {
	var out strings.Builder

	gauge(&out, "cdn_info", "Application version info")
	fmt.Fprintf(&out, "cdn_info{version=\"%s\"} 1\n\n", label(version))

	counter(&out, "cdn_requests_total", "Total number of HTTP requests", s.RequestsTotal)
	header(&out, "cdn_request_errors_total", "HTTP responses with an error status", "counter")
	fmt.Fprintf(&out, "cdn_request_errors_total{class=\"4xx\"} %d\n", s.RequestErrors4xx)
	fmt.Fprintf(&out, "cdn_request_errors_total{class=\"5xx\"} %d\n\n", s.RequestErrors5xx)

	header(&out, "cdn_session_cache_total", "Account lookups by session cache outcome", "counter")
	fmt.Fprintf(&out, "cdn_session_cache_total{result=\"hit\"} %d\n", s.CacheHits)
	fmt.Fprintf(&out, "cdn_session_cache_total{result=\"miss\"} %d\n", s.CacheMisses)
	fmt.Fprintf(&out, "cdn_session_cache_total{result=\"refresh\"} %d\n\n", s.CacheRefreshes)

	header(&out, "cdn_page_views_total", "Rendered pages", "counter")
	pages := make([]string, 0, len(s.PageViews))
	for p := range s.PageViews {
		pages = append(pages, p)
	}
	sort.Strings(pages)
	for _, p := range pages {
		fmt.Fprintf(&out, "cdn_page_views_total{page=\"%s\"} %d\n", label(p), s.PageViews[p])
	}
	out.WriteString("\n")

	counter(&out, "cdn_api_requests_total", "Total number of API requests", s.APIRequests)
	counter(&out, "cdn_api_unauthorized_total", "API requests rejected for a bad token", s.APIUnauthorized)
	counter(&out, "cdn_downloads_total", "Total number of file downloads", s.DownloadsTotal)
	counter(&out, "cdn_download_bytes_total", "Bytes served by downloads", s.DownloadBytesTotal)
	counter(&out, "cdn_download_errors_total", "Failed downloads", s.DownloadErrorsTotal)

	header(&out, "cdn_uptime_seconds", "Application uptime in seconds", "counter")
	fmt.Fprintf(&out, "cdn_uptime_seconds %.0f\n", s.UptimeSeconds)

	return out.String()
}

func header(out *strings.Builder, name, help, typ string) {
	fmt.Fprintf(out, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, typ)
}

func gauge(out *strings.Builder, name, help string) {
	header(out, name, help, "gauge")
}

func counter(out *strings.Builder, name, help string, v int64) {
	header(out, name, help, "counter")
	fmt.Fprintf(out, "%s %d\n\n", name, v)
}

// label escapes quotes and backslashes in a label value.
func label(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	return value
}
