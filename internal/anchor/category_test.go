package anchor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"career", "Career"},
		{"health", "Health"},
		{"wealth", "Wealth"},
		{"relationships", "Relationships"},
		{"personal_growth", "Personal Growth"},
		{"", "Custom"},
		{"Career", "Custom"},
		{"spirituality", "Custom"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryLabel(tt.in))
		})
	}
}

func TestCategories_AllValid(t *testing.T) {
	cs := Categories()
	assert.Len(t, cs, 5)
	for _, c := range cs {
		assert.True(t, c.Valid(), c)
		assert.NotEqual(t, CustomLabel, c.Label())
	}
	assert.False(t, Category("other").Valid())
}
