package utils

import (
	"net/http/httptest"
	"testing"
)

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", " 192.168.1.5 ", "2001:db8::/32", "not-an-ip", ""})

	tests := []struct {
		ip   string
		want bool
	}{
		{ip: "10.1.2.3", want: true},
		{ip: "11.0.0.1", want: false},
		{ip: "192.168.1.5", want: true},
		{ip: "192.168.1.6", want: false},
		{ip: "::ffff:192.168.1.5", want: true},
		{ip: "2001:db8::1", want: true},
		{ip: "2001:db9::1", want: false},
		{ip: "garbage", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := m.Allow(tt.ip); got != tt.want {
				t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}

	if m.IsEmpty() {
		t.Error("IsEmpty() = true for a populated matcher")
	}
	if !NewIPMatcher([]string{"nope"}).IsEmpty() {
		t.Error("IsEmpty() = false for a matcher without valid rules")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{
			name:   "remote addr only",
			remote: "203.0.113.7:51234",
			want:   "203.0.113.7",
		},
		{
			name:    "proxy headers ignored when untrusted",
			remote:  "127.0.0.1:9000",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.1"},
			want:    "127.0.0.1",
		},
		{
			name:       "cloudflare header wins",
			remote:     "127.0.0.1:9000",
			headers:    map[string]string{"CF-Connecting-IP": "198.51.100.2", "X-Forwarded-For": "198.51.100.1"},
			trustProxy: true,
			want:       "198.51.100.2",
		},
		{
			name:       "first forwarded for",
			remote:     "127.0.0.1:9000",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"},
			trustProxy: true,
			want:       "198.51.100.1",
		},
		{
			name:       "real ip fallback",
			remote:     "127.0.0.1:9000",
			headers:    map[string]string{"X-Real-IP": "198.51.100.3"},
			trustProxy: true,
			want:       "198.51.100.3",
		},
		{
			name:   "ipv6 remote",
			remote: "[2001:db8::1]:443",
			want:   "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
