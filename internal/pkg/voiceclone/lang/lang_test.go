package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSupported(t *testing.T) {
	tests := []struct {
		code     string
		expected bool
	}{
		{"en", true},
		{"EN", true},
		{" es ", true},
		{"zh-cn", true},
		{"xx", false},
		{"", false},
		{"english", false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, IsSupported(tc.code), "code %q", tc.code)
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "English", Name("en"))
	assert.Equal(t, "French", Name("fr"))
	assert.NotEmpty(t, Name("zh-cn"))
}

func TestNamesCoversAllCodes(t *testing.T) {
	names := Names()
	assert.Len(t, names, len(Codes))
	assert.Contains(t, names[0], "en")
}
