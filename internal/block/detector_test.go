package block

import "testing"

// TestDetector tests block classification.
func TestDetector(t *testing.T) {
	t.Parallel()

	d := New()

	tests := []struct {
		name    string
		status  int
		body    string
		blocked bool
	}{
		{name: "429 is always blocked", status: 429, body: "", blocked: true},
		{name: "captcha marker", status: 200, body: "<p>Please solve this CAPTCHA to continue</p>", blocked: true},
		{name: "access denied marker", status: 403, body: "Access Denied", blocked: true},
		{name: "robot challenge marker", status: 200, body: "Are You A Robot?", blocked: true},
		{name: "ordinary page", status: 200, body: "<html><body>20 books</body></html>", blocked: false},
		{name: "ordinary 404", status: 404, body: "not here", blocked: false},
		{name: "ordinary 503", status: 503, body: "maintenance", blocked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := d.Blocked(tt.status, []byte(tt.body)); got != tt.blocked {
				t.Errorf("Blocked(%d, %q) = %v, want %v", tt.status, tt.body, got, tt.blocked)
			}
		})
	}

	t.Run("custom markers replace defaults", func(t *testing.T) {
		t.Parallel()

		custom := New(WithMarkers([]string{"slow down"}))
		if !custom.Blocked(200, []byte("SLOW DOWN, cowboy")) {
			t.Error("custom marker not detected")
		}
		if custom.Blocked(200, []byte("captcha")) {
			t.Error("default marker should have been replaced")
		}
	})
}
