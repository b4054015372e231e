package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_WindowAndReset(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(2, time.Minute)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if l.Allow("a") {
		t.Error("third request should be limited")
	}
	if l.Remaining("a") != 0 || l.Remaining("b") != 2 {
		t.Errorf("Remaining = %d/%d", l.Remaining("a"), l.Remaining("b"))
	}

	now = now.Add(time.Minute)
	if !l.Allow("a") {
		t.Error("window should have expired")
	}

	l.Reset("a")
	if l.Remaining("a") != 2 {
		t.Error("Reset should restore the full allowance")
	}
}

func TestLimiter_Prune(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New(1, time.Second)
	l.now = func() time.Time { return now }
	l.Allow("a")
	l.Allow("b")
	now = now.Add(2 * time.Second)
	l.Allow("c")
	if n := l.Prune(); n != 2 {
		t.Errorf("Prune removed %d, want 2", n)
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
		{"forwarded", "203.0.113.5, 10.0.0.1", "", "10.0.0.2:1234", "203.0.113.5"},
		{"real ip", "", "198.51.100.7", "10.0.0.2:1234", "198.51.100.7"},
		{"remote addr", "", "", "192.0.2.1:5555", "192.0.2.1"},
		{"remote without port", "", "", "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/login", nil)
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

func TestOTPLimiter_PerEmail(t *testing.T) {
	o := NewOTPLimiter()
	r := httptest.NewRequest("POST", "/login", nil)

	for i := 0; i < 5; i++ {
		if ok, _ := o.CheckVerify(r, "Ada@X.io"); !ok {
			t.Fatalf("attempt %d should pass", i+1)
		}
	}
	if ok, reason := o.CheckVerify(r, "ada@x.io "); ok || reason == "" {
		t.Error("sixth verify for the same email should be limited")
	}
	if ok, _ := o.CheckVerify(r, "grace@x.io"); !ok {
		t.Error("other emails are counted separately")
	}

	o.Succeeded("ada@x.io")
	if ok, _ := o.CheckVerify(r, "ada@x.io"); !ok {
		t.Error("Succeeded should reset the email counter")
	}
}
