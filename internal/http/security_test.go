package http

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.7:51234",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded header from trusted proxy",
			remoteAddr: "10.0.0.5:443",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.5"},
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded header from untrusted peer is ignored",
			remoteAddr: "203.0.113.7:51234",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4"},
			want:       "203.0.113.7",
		},
		{
			name:       "real-ip fallback from trusted proxy",
			remoteAddr: "127.0.0.1:8080",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
		{
			name:       "garbage forwarded value falls back to peer",
			remoteAddr: "192.168.1.10:1000",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			want:       "192.168.1.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := extractClientIP(req); got != tt.want {
				t.Errorf("extractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name   string
		target string
		agent  string
		want   bool
	}{
		{"normal api call", "/api/rollup?month=2026-03", "Mozilla/5.0", false},
		{"path traversal", "/static/../../etc/passwd", "Mozilla/5.0", true},
		{"wordpress probe", "/wp-admin/setup.php", "Mozilla/5.0", true},
		{"sql in query", "/api/expenses?month=1%20union%20select", "Mozilla/5.0", true},
		{"scanner agent", "/api/rollup", "sqlmap/1.7", true},
		{"curl is fine", "/api/rollup", "curl/8.4.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := &securityMetrics{}
			req := httptest.NewRequest("GET", tt.target, nil)
			req.Header.Set("User-Agent", tt.agent)

			if got := detectSuspiciousRequest(req, metrics); got != tt.want {
				t.Errorf("detectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
			wantCount := int64(0)
			if tt.want {
				wantCount = 1
			}
			if got := metrics.suspiciousRequests.Load(); got != wantCount {
				t.Errorf("suspiciousRequests = %d, want %d", got, wantCount)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(3, time.Minute)
	defer rl.stop()

	metrics := &securityMetrics{}

	for i := 0; i < 3; i++ {
		if !rl.allow("1.2.3.4", metrics) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("1.2.3.4", metrics) {
		t.Error("request over the limit should be denied")
	}
	if got := metrics.rateLimitHits.Load(); got != 1 {
		t.Errorf("rateLimitHits = %d, want 1", got)
	}

	t.Run("other clients are unaffected", func(t *testing.T) {
		if !rl.allow("5.6.7.8", metrics) {
			t.Error("fresh client should be allowed")
		}
	})
}
