package reliability

import (
	"testing"
	"time"
)

func TestIsRetryableHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		code int
		want bool
	}{
		{"ok", 200, false},
		{"bad prompt", 400, false},
		{"unauthorized", 401, false},
		{"not found", 404, false},
		{"rate limited", 429, true},
		{"backend error", 500, true},
		{"bad gateway", 502, true},
		{"model warming up", 503, true},
		{"upstream timeout", 504, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryableHTTPStatus(tc.code); got != tc.want {
				t.Fatalf("IsRetryableHTTPStatus(%d) = %v, want %v", tc.code, got, tc.want)
			}
		})
	}
}

func TestExponentialBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	capDur := 700 * time.Millisecond

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, base},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, capDur},
		{10, capDur},
	}
	for _, tc := range cases {
		if got := ExponentialBackoff(tc.attempt, base, capDur); got != tc.want {
			t.Fatalf("ExponentialBackoff(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}
