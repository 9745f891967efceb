// Package metrics keeps process-wide counters and exports them in the
// Prometheus text format.
package metrics

import (
	"sync"
	"time"
)

// Metrics holds application metrics
type Metrics struct {
	mu sync.RWMutex

	// Session account cache
	cacheHits      int64
	cacheMisses    int64
	cacheRefreshes int64

	// Downloads
	downloadsTotal        int64
	downloadBytesTotal    int64
	downloadErrorsTotal   int64
	downloadDurationTotal time.Duration

	// Pages and API
	pageViews   map[string]int64
	apiRequests int64
	apiUnauthed int64

	// HTTP
	requestsTotal    int64
	requestErrors5xx int64
	requestErrors4xx int64

	startedAt time.Time
}

// New returns an empty Metrics.
func New() *Metrics {
	return &Metrics{pageViews: make(map[string]int64), startedAt: time.Now()}
}

var global = New()

// Default returns the process-wide instance.
func Default() *Metrics {
	return global
}

// CacheHit records an account served from the session snapshot.
func (m *Metrics) CacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits++
}

// CacheMiss records a session without a cached snapshot.
func (m *Metrics) CacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMisses++
}

// CacheRefresh records an expired snapshot re-read from the database.
func (m *Metrics) CacheRefresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheRefreshes++
}

// RecordDownload records a successful download
func (m *Metrics) RecordDownload(bytes int64, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadsTotal++
	m.downloadBytesTotal += bytes
	m.downloadDurationTotal += duration
}

// RecordDownloadError records a download error
func (m *Metrics) RecordDownloadError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadErrorsTotal++
}

// RecordPageView counts a rendered page.
func (m *Metrics) RecordPageView(page string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageViews[page]++
}

// RecordAPIRequest counts an API call and whether its token was accepted.
func (m *Metrics) RecordAPIRequest(authorized bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiRequests++
	if !authorized {
		m.apiUnauthed++
	}
}

// RecordRequest records an HTTP request
func (m *Metrics) RecordRequest(statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestsTotal++

	if statusCode >= 500 {
		m.requestErrors5xx++
	} else if statusCode >= 400 {
		m.requestErrors4xx++
	}
}

// Snapshot returns a snapshot of current metrics
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	views := make(map[string]int64, len(m.pageViews))
	for k, v := range m.pageViews {
		views[k] = v
	}

	return Snapshot{
		CacheHits:             m.cacheHits,
		CacheMisses:           m.cacheMisses,
		CacheRefreshes:        m.cacheRefreshes,
		DownloadsTotal:        m.downloadsTotal,
		DownloadBytesTotal:    m.downloadBytesTotal,
		DownloadErrorsTotal:   m.downloadErrorsTotal,
		DownloadAvgDurationMs: avgDuration(m.downloadDurationTotal, m.downloadsTotal),
		PageViews:             views,
		APIRequests:           m.apiRequests,
		APIUnauthorized:       m.apiUnauthed,
		RequestsTotal:         m.requestsTotal,
		RequestErrors5xx:      m.requestErrors5xx,
		RequestErrors4xx:      m.requestErrors4xx,
		UptimeSeconds:         time.Since(m.startedAt).Seconds(),
	}
}

// Snapshot represents a point-in-time snapshot of metrics
type Snapshot struct {
	CacheHits      int64 `json:"session_cache_hits"`
	CacheMisses    int64 `json:"session_cache_misses"`
	CacheRefreshes int64 `json:"session_cache_refreshes"`

	DownloadsTotal        int64   `json:"downloads_total"`
	DownloadBytesTotal    int64   `json:"download_bytes_total"`
	DownloadErrorsTotal   int64   `json:"download_errors_total"`
	DownloadAvgDurationMs float64 `json:"download_avg_duration_ms"`

	PageViews       map[string]int64 `json:"page_views"`
	APIRequests     int64            `json:"api_requests_total"`
	APIUnauthorized int64            `json:"api_unauthorized_total"`

	RequestsTotal    int64 `json:"requests_total"`
	RequestErrors5xx int64 `json:"request_errors_5xx"`
	RequestErrors4xx int64 `json:"request_errors_4xx"`

	UptimeSeconds float64 `json:"uptime_seconds"`
}

func avgDuration(total time.Duration, count int64) float64 {
	if count == 0 {
		return 0
	}
	return float64(total.Milliseconds()) / float64(count)
}
