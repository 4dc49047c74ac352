package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Simple in-memory metrics and suspicious activity tracker.

var (
	metricsMu  sync.Mutex
	routeTimes = make(map[string][]time.Duration) // last N response times per route

	suspiciousMu sync.Mutex
	suspicious   = make(map[string]int) // recent slow-response count per ip
)

// MetricsMiddleware measures response time and tracks slow responses
func MetricsMiddleware(next http.Handler) http.Handler {
	slowThresholdMs := atoi(getenv("METRIC_SLOW_MS", "800"))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		elapsed := time.Since(start)

		metricsMu.Lock()
		key := r.Method + " " + r.URL.Path
		arr := routeTimes[key]
		if len(arr) >= 100 {
			arr = arr[1:]
		}
		routeTimes[key] = append(arr, elapsed)
		metricsMu.Unlock()

		if elapsed > time.Duration(slowThresholdMs)*time.Millisecond {
			suspiciousMu.Lock()
			suspicious[r.RemoteAddr]++
			suspiciousMu.Unlock()
		}
	})
}

// SuspiciousActivityMiddleware throttles IPs with repeated slow responses
func SuspiciousActivityMiddleware(next http.Handler) http.Handler {
	threshold := atoi(getenv("SUSPICIOUS_THRESHOLD", "10"))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suspiciousMu.Lock()
		count := suspicious[r.RemoteAddr]
		suspiciousMu.Unlock()
		if count >= threshold {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
