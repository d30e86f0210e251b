package migrationapp

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var slugShape = regexp.MustCompile(`^[a-z0-9-]{1,80}$`)

func TestDeriveSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		sourceID string
		want     string
	}{
		{"simple name", "Summer Shirt", "p-1", "summer-shirt"},
		{"punctuation and quotes", `Men's / Extra-Large "Classic" Shirt`, "p-2", "mens-extra-large-classic-shirt"},
		{"accented characters fold to ascii", "Café Crème Brûlée", "p-3", "cafe-creme-brulee"},
		{"repeated separators collapse", "A  --  B", "p-4", "a-b"},
		{"leading and trailing junk trims", "  !!Sale!!  ", "p-5", "sale"},
		{"already a slug", "plain-slug-123", "p-6", "plain-slug-123"},
		{"empty name falls back to source id", "", "abc123", "item-abc123"},
		{"unusable name falls back to source id", "!!!", "abc123", "item-abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveSlug(tt.input, tt.sourceID)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, slugShape, got)
		})
	}

	t.Run("deterministic", func(t *testing.T) {
		a := DeriveSlug("Winter Coat 2024", "p-9")
		b := DeriveSlug("Winter Coat 2024", "p-9")
		assert.Equal(t, a, b)
	})

	t.Run("long names are bounded", func(t *testing.T) {
		long := ""
		for i := 0; i < 30; i++ {
			long += "verylongword "
		}
		got := DeriveSlug(long, "p-long")
		assert.LessOrEqual(t, len(got), 80)
		assert.Regexp(t, slugShape, got)
	})
}

func TestSlugRegistry(t *testing.T) {
	t.Run("first use is unchanged", func(t *testing.T) {
		r := NewSlugRegistry()
		assert.Equal(t, "shirt", r.Reserve("shirt"))
	})

	t.Run("collisions get numeric suffixes", func(t *testing.T) {
		r := NewSlugRegistry()
		assert.Equal(t, "shirt", r.Reserve("shirt"))
		assert.Equal(t, "shirt-1", r.Reserve("shirt"))
		assert.Equal(t, "shirt-2", r.Reserve("shirt"))
	})

	t.Run("pre-seeded destination slugs count as taken", func(t *testing.T) {
		r := NewSlugRegistry("shirt", "coat")
		assert.Equal(t, "shirt-1", r.Reserve("shirt"))
		assert.Equal(t, "coat-1", r.Reserve("coat"))
		assert.Equal(t, "hat", r.Reserve("hat"))
	})

	t.Run("suffixed slugs stay within the length bound", func(t *testing.T) {
		long := ""
		for i := 0; i < 80; i++ {
			long += "a"
		}
		r := NewSlugRegistry(long)
		got := r.Reserve(long)
		assert.LessOrEqual(t, len(got), 80)
		assert.NotEqual(t, long, got)
	})
}
