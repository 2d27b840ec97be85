package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("4th request should be limited")
	}
	// Other keys are unaffected.
	if !l.Allow("5.6.7.8") {
		t.Error("different key should be allowed")
	}
}

func TestLimiter_WindowExpiry(t *testing.T) {
	l := New(1, 10*time.Millisecond)

	if !l.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("k") {
		t.Fatal("second request should be limited")
	}
	time.Sleep(20 * time.Millisecond)
	if !l.Allow("k") {
		t.Error("request after window expiry should be allowed")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{name: "x-forwarded-for single", xff: "9.9.9.9", remote: "1.1.1.1:1234", want: "9.9.9.9"},
		{name: "x-forwarded-for chain", xff: "9.9.9.9, 8.8.8.8", remote: "1.1.1.1:1234", want: "9.9.9.9"},
		{name: "x-real-ip", xri: "7.7.7.7", remote: "1.1.1.1:1234", want: "7.7.7.7"},
		{name: "remote addr", remote: "1.1.1.1:1234", want: "1.1.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
