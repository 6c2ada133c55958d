package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"
)

// mockClock is a controllable clock for testing.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCheckLogin_Lockout(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		MaxAttempts:  3,
		Lockout:      5 * time.Minute,
		MaxIPPerHour: 30,
		Clock:        clock,
	})
	defer limiter.Close()

	identifier := "test@example.com"
	ip := "192.168.1.1"

	// First attempts should be allowed
	for i := 0; i < 2; i++ {
		result := limiter.CheckLogin(identifier, ip)
		if !result.Allowed {
			t.Errorf("Attempt %d should be allowed, got blocked: %s", i+1, result.Reason)
		}
		if lockedOut := limiter.RecordLoginFailure(identifier, ip); lockedOut {
			t.Errorf("Attempt %d should not trigger lockout", i+1)
		}
		clock.Advance(1 * time.Second)
	}

	// Third failure hits max attempts and triggers lockout
	if lockedOut := limiter.RecordLoginFailure(identifier, ip); !lockedOut {
		t.Error("3rd failure should trigger lockout")
	}

	result := limiter.CheckLogin(identifier, ip)
	if result.Allowed {
		t.Error("Attempt during lockout should be blocked")
	}
	if result.Reason != "lockout" {
		t.Errorf("Expected reason 'lockout', got '%s'", result.Reason)
	}

	// After lockout expires, should be allowed again
	clock.Advance(5*time.Minute + time.Second)
	result = limiter.CheckLogin(identifier, ip)
	if !result.Allowed {
		t.Errorf("Attempt after lockout should be allowed, got blocked: %s", result.Reason)
	}
}

func TestCheckLogin_IPLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		MaxAttempts:  100,
		Lockout:      5 * time.Minute,
		MaxIPPerHour: 2,
		Clock:        clock,
	})
	defer limiter.Close()

	ip := "192.168.1.2"

	// Different identifiers from the same IP
	limiter.RecordLoginFailure("a@example.com", ip)
	clock.Advance(1 * time.Second)
	limiter.RecordLoginFailure("b@example.com", ip)
	clock.Advance(1 * time.Second)

	result := limiter.CheckLogin("c@example.com", ip)
	if result.Allowed {
		t.Error("3rd identifier from same IP should be blocked")
	}
	if result.Reason != "ip_hourly_limit" {
		t.Errorf("Expected reason 'ip_hourly_limit', got '%s'", result.Reason)
	}

	// After hour passes, should be allowed again
	clock.Advance(1 * time.Hour)
	result = limiter.CheckLogin("c@example.com", ip)
	if !result.Allowed {
		t.Errorf("Attempt after hour should be allowed, got blocked: %s", result.Reason)
	}
}

func TestResetLoginAttempts(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		MaxAttempts:  3,
		Lockout:      5 * time.Minute,
		MaxIPPerHour: 30,
		Clock:        clock,
	})
	defer limiter.Close()

	identifier := "reset@example.com"
	ip := "192.168.1.3"

	limiter.RecordLoginFailure(identifier, ip)
	limiter.RecordLoginFailure(identifier, ip)
	limiter.ResetLoginAttempts(identifier)

	// Counter cleared, two more failures should not lock out
	if lockedOut := limiter.RecordLoginFailure(identifier, ip); lockedOut {
		t.Error("Failure after reset should not trigger lockout")
	}
	result := limiter.CheckLogin(identifier, ip)
	if !result.Allowed {
		t.Errorf("Attempt after reset should be allowed, got blocked: %s", result.Reason)
	}
}

func TestCheckLogin_CaseInsensitiveIdentifier(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		MaxAttempts:  2,
		Lockout:      5 * time.Minute,
		MaxIPPerHour: 30,
		Clock:        clock,
	})
	defer limiter.Close()

	ip := "192.168.1.4"

	limiter.RecordLoginFailure("Case@Example.com", ip)
	if lockedOut := limiter.RecordLoginFailure("case@example.com", ip); !lockedOut {
		t.Error("Case variants must count against the same identifier")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		trustProxy bool
		want       string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.5:54321",
			want:       "203.0.113.5",
		},
		{
			name:       "xff ignored when proxy untrusted",
			remoteAddr: "203.0.113.5:54321",
			xff:        "198.51.100.7",
			trustProxy: false,
			want:       "203.0.113.5",
		},
		{
			name:       "xff used when proxy trusted",
			remoteAddr: "10.0.0.1:443",
			xff:        "198.51.100.7",
			trustProxy: true,
			want:       "198.51.100.7",
		},
		{
			name:       "rightmost public ip wins",
			remoteAddr: "10.0.0.1:443",
			xff:        "203.0.113.9, 198.51.100.7, 10.0.0.2",
			trustProxy: true,
			want:       "198.51.100.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, "/", nil)
			if err != nil {
				t.Fatalf("new request: %v", err)
			}
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := GetClientIP(req, tt.trustProxy); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"someone@example.com", "so***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"+351912345678", "***5678"},
		{"912", "***"},
	}
	for _, tt := range tests {
		if got := SanitizeIdentifier(tt.in); got != tt.want {
			t.Errorf("SanitizeIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
