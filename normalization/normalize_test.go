package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Бурение   Свай!  ", "бурение свай"},
		{"м², п.м., кг", "м п м кг"},
		{"", ""},
		{"  !!!  ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanText(tt.in), "input: %q", tt.in)
	}
}

func TestTaskKeyUnifiesWordForms(t *testing.T) {
	assert.Equal(t, TaskKey("Бурение свай"), TaskKey("бурение сваи"))
	assert.Equal(t, TaskKey("Бетонные работы"), TaskKey("бетонная работа"))
	assert.NotEqual(t, TaskKey("Бурение свай"), TaskKey("Покраска стен"))
}

func TestTaskKeyEmpty(t *testing.T) {
	assert.Equal(t, "", TaskKey(""))
	assert.Equal(t, "", TaskKey("  ...  "))
}

func TestCacheKeyIncludesCity(t *testing.T) {
	assert.NotEqual(t,
		CacheKey("Бурение свай", "Казань"),
		CacheKey("Бурение свай", "Москва"))
	assert.Equal(t,
		CacheKey("Бурение свай", "КАЗАНЬ"),
		CacheKey("бурение сваи", "казань"))
}
