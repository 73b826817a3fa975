package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Living Room":          "living-room",
		"  Chair #2  ":         "chair-2",
		"UPPER":                "upper",
		"already-a-slug":       "already-a-slug",
		"weird___name!!!":      "weird-name",
		"Résumé scan":          "r-sum-scan",
		"trailing punctuation": "trailing-punctuation",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestResolveSlugNoCollision(t *testing.T) {
	assert.Equal(t, "kitchen", resolveSlug("kitchen", nil))
	// prefix matches without an exact match leave the base untouched
	assert.Equal(t, "kitchen", resolveSlug("kitchen", []string{"kitchen-table", "kitchen-2"}))
}

func TestResolveSlugAppendsPrefixCount(t *testing.T) {
	// one exact match: suffix is the count of rows sharing the prefix
	assert.Equal(t, "kitchen-1", resolveSlug("kitchen", []string{"kitchen"}))
	assert.Equal(t, "kitchen-3", resolveSlug("kitchen", []string{"kitchen", "kitchen-1", "kitchen-2"}))
	// the counter counts prefix matches, not just exact ones
	assert.Equal(t, "kitchen-2", resolveSlug("kitchen", []string{"kitchen", "kitchen-table"}))
}
