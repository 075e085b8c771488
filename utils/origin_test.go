package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrigins(t *testing.T) {
	assert.Equal(t,
		[]string{"https://dash.cafe.test", "http://127.0.0.1:5500"},
		ParseOrigins(" https://dash.cafe.test/ ,, http://127.0.0.1:5500"))
	assert.Empty(t, ParseOrigins(""))
}

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"https://dash.cafe.test"}

	assert.True(t, OriginAllowed(allowed, "https://dash.cafe.test"))
	assert.True(t, OriginAllowed(allowed, "HTTPS://DASH.CAFE.TEST/"))
	assert.True(t, OriginAllowed(allowed, ""), "non-browser clients send no Origin")
	assert.False(t, OriginAllowed(allowed, "https://evil.example.test"))
	assert.True(t, OriginAllowed(nil, "https://evil.example.test"))
	assert.True(t, OriginAllowed([]string{"*"}, "https://evil.example.test"))
}
