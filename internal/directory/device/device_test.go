package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		assertion func(t *testing.T, result string)
	}{
		{
			name:      "empty user agent returns unknown device",
			userAgent: "",
			assertion: func(t *testing.T, result string) {
				assert.Equal(t, "Unknown Device", result)
			},
		},
		{
			name:      "chrome on desktop",
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			assertion: func(t *testing.T, result string) {
				assert.Contains(t, result, "Chrome")
				assert.Contains(t, result, "on")
			},
		},
		{
			name:      "safari on iphone includes platform",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			assertion: func(t *testing.T, result string) {
				assert.Contains(t, result, "on")
				assert.Contains(t, result, "iPhone")
			},
		},
		{
			name:      "unknown user agent still formats with defaults",
			userAgent: "Unknown/1.0",
			assertion: func(t *testing.T, result string) {
				assert.Contains(t, result, "on")
				assert.NotEmpty(t, result)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.assertion(t, DisplayName(tt.userAgent))
		})
	}
}
