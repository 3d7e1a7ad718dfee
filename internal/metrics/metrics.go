package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Simple Prometheus-style metrics for HTTP requests and extractions.
// This is intentionally minimal and in-memory only.

var (
	mu             sync.RWMutex
	requestsTotal  = make(map[reqKey]int64)
	latencyMsSum   = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)
	extractsTotal  = make(map[extractKey]int64)

	retentionJobsDeleted    = make(map[string]int64)
	retentionRecipesDeleted int64
)

type reqKey struct {
	Method string
	Path   string
	Status int
}

type latKey struct {
	Method string
	Path   string
}

type extractKey struct {
	Strategy string
	Success  string
}

// RecordRequest increments request counter and records latency.
func RecordRequest(method, path string, status int, latencyMs int64) {
	mu.Lock()
	defer mu.Unlock()

	rk := reqKey{Method: method, Path: path, Status: status}
	requestsTotal[rk]++

	lk := latKey{Method: method, Path: path}
	latencyMsSum[lk] += latencyMs
	latencyMsCount[lk]++
}

// RecordExtract increments extraction counters per winning strategy.
// Failed extractions are recorded under strategy "none".
func RecordExtract(strategy string, success bool) {
	mu.Lock()
	defer mu.Unlock()

	s := "false"
	if success {
		s = "true"
	}
	extractsTotal[extractKey{Strategy: strategy, Success: s}]++
}

// RecordRetentionJobs increments the counter of jobs deleted by TTL for
// a given job type.
func RecordRetentionJobs(jobType string, deleted int64) {
	if deleted <= 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	retentionJobsDeleted[jobType] += deleted
}

// RecordRetentionRecipes increments the counter of unsaved recipes
// deleted by TTL cleanup.
func RecordRetentionRecipes(deleted int64) {
	if deleted <= 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	retentionRecipesDeleted += deleted
}

// Export returns Prometheus-style metrics text.
func Export() string {
	mu.RLock()
	defer mu.RUnlock()

	var b strings.Builder

	b.WriteString("# HELP kidchef_http_requests_total Total HTTP requests\n")
	b.WriteString("# TYPE kidchef_http_requests_total counter\n")

	// Sort keys for stable output
	var reqKeys []reqKey
	for k := range requestsTotal {
		reqKeys = append(reqKeys, k)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		if reqKeys[i].Method != reqKeys[j].Method {
			return reqKeys[i].Method < reqKeys[j].Method
		}
		if reqKeys[i].Path != reqKeys[j].Path {
			return reqKeys[i].Path < reqKeys[j].Path
		}
		return reqKeys[i].Status < reqKeys[j].Status
	})

	for _, k := range reqKeys {
		v := requestsTotal[k]
		fmt.Fprintf(&b, "kidchef_http_requests_total{method=\"%s\",path=\"%s\",status=\"%d\"} %d\n",
			k.Method, k.Path, k.Status, v)
	}

	b.WriteString("# HELP kidchef_http_request_duration_ms_sum Total request duration in milliseconds\n")
	b.WriteString("# TYPE kidchef_http_request_duration_ms_sum counter\n")
	b.WriteString("# HELP kidchef_http_request_duration_ms_count Request count for latency metric\n")
	b.WriteString("# TYPE kidchef_http_request_duration_ms_count counter\n")

	var latKeys []latKey
	for k := range latencyMsSum {
		latKeys = append(latKeys, k)
	}
	sort.Slice(latKeys, func(i, j int) bool {
		if latKeys[i].Method != latKeys[j].Method {
			return latKeys[i].Method < latKeys[j].Method
		}
		return latKeys[i].Path < latKeys[j].Path
	})

	for _, k := range latKeys {
		sum := latencyMsSum[k]
		cnt := latencyMsCount[k]
		fmt.Fprintf(&b, "kidchef_http_request_duration_ms_sum{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, sum)
		fmt.Fprintf(&b, "kidchef_http_request_duration_ms_count{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, cnt)
	}

	// Extraction metrics
	b.WriteString("# HELP kidchef_extracts_total Total recipe extractions by winning strategy\n")
	b.WriteString("# TYPE kidchef_extracts_total counter\n")

	var extractKeys []extractKey
	for k := range extractsTotal {
		extractKeys = append(extractKeys, k)
	}
	sort.Slice(extractKeys, func(i, j int) bool {
		if extractKeys[i].Strategy != extractKeys[j].Strategy {
			return extractKeys[i].Strategy < extractKeys[j].Strategy
		}
		return extractKeys[i].Success < extractKeys[j].Success
	})

	for _, k := range extractKeys {
		v := extractsTotal[k]
		fmt.Fprintf(&b, "kidchef_extracts_total{strategy=\"%s\",success=\"%s\"} %d\n",
			k.Strategy, k.Success, v)
	}

	// Retention metrics
	b.WriteString("# HELP kidchef_retention_jobs_deleted_total Total jobs deleted by TTL\n")
	b.WriteString("# TYPE kidchef_retention_jobs_deleted_total counter\n")

	var jobTypes []string
	for t := range retentionJobsDeleted {
		jobTypes = append(jobTypes, t)
	}
	sort.Strings(jobTypes)
	for _, t := range jobTypes {
		v := retentionJobsDeleted[t]
		fmt.Fprintf(&b, "kidchef_retention_jobs_deleted_total{job_type=\"%s\"} %d\n", t, v)
	}

	b.WriteString("# HELP kidchef_retention_recipes_deleted_total Total unsaved recipes deleted by TTL\n")
	b.WriteString("# TYPE kidchef_retention_recipes_deleted_total counter\n")
	fmt.Fprintf(&b, "kidchef_retention_recipes_deleted_total %d\n", retentionRecipesDeleted)

	return b.String()
}
