package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	prompt, err := Get("segmentation.json", "segment-cv")
	require.NoError(t, err)
	assert.Contains(t, prompt, "JSON array")
	assert.Contains(t, prompt, "{{.RawText}}")
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("phrasing.json", "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	assert.NotPanics(t, func() {
		prompt := MustGet("phrasing.json", "phrase-observation")
		assert.NotEmpty(t, prompt)
	})
}

func TestFormat(t *testing.T) {
	template := "Finding about {{.SectionTitle}} in language {{.Language}}"
	result := Format(template, map[string]string{
		"SectionTitle": "Experience",
		"Language":     "en",
	})
	assert.Equal(t, "Finding about Experience in language en", result)
}

func TestFormat_NoPlaceholders(t *testing.T) {
	template := "No placeholders here"
	assert.Equal(t, template, Format(template, map[string]string{"Key": "Value"}))
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	// Unfilled placeholders stay in place.
	assert.Equal(t, template, Format(template, map[string]string{}))
}

func TestEmbeddedCatalogIsComplete(t *testing.T) {
	for _, ref := range []struct{ file, key string }{
		{"segmentation.json", "segment-cv"},
		{"phrasing.json", "phrase-observation"},
		{"phrasing.json", "phrase-strength"},
		{"phrasing.json", "rewrite-section"},
	} {
		_, err := Get(ref.file, ref.key)
		assert.NoError(t, err, "%s/%s", ref.file, ref.key)
	}
}
