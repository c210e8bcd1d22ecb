package writer

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	responses map[string]string
	prompts   map[string]string
	err       error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt, operation string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.prompts == nil {
		f.prompts = make(map[string]string)
	}
	f.prompts[operation] = prompt
	return f.responses[operation], nil
}

func TestFitTextLimit(t *testing.T) {
	assert.Equal(t, "short", FitTextLimit("  short  ", 10))
	assert.Equal(t, "ab", FitTextLimit("abcdef", 2))

	out := FitTextLimit(strings.Repeat("x", 50), 20)
	assert.Len(t, out, 20)
	assert.True(t, strings.HasSuffix(out, "..."))

	// clipping trims trailing whitespace before the ellipsis
	out = FitTextLimit("palavra "+strings.Repeat("y", 50), 11)
	assert.Equal(t, "palavra...", out)

	// multibyte text is measured in characters, not bytes
	out = FitTextLimit(strings.Repeat("ã", 30), 10)
	assert.Equal(t, 10, utf8.RuneCountInString(out))
}

func TestGeneratePost_Composition(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{
		"post_generate":  "post em portugues #golang",
		"post_translate": "post in english #golang",
	}}

	post, err := GeneratePost(context.Background(), gen, "material", Overrides{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(post, "「PT-BR」\n"))
	assert.Contains(t, post, "post em portugues")
	assert.Contains(t, post, "\n\n「EN-US」\n")
	assert.Contains(t, post, "post in english")
	assert.Contains(t, gen.prompts["post_generate"], "material")
	assert.Contains(t, gen.prompts["post_translate"], "post em portugues")
}

func TestGeneratePost_CompressesOversizedSections(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{
		"post_generate":  strings.Repeat("a", 5000),
		"post_translate": strings.Repeat("b", 5000),
	}}

	post, err := GeneratePost(context.Background(), gen, "material", Overrides{})
	require.NoError(t, err)
	assert.LessOrEqual(t, utf8.RuneCountInString(post), MaxPostChars)
	assert.Contains(t, post, "「PT-BR」")
	assert.Contains(t, post, "「EN-US」")
}

func TestGeneratePost_CustomTemplates(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{
		"post_generate":  "pt",
		"post_translate": "en",
	}}

	custom := "Escreva sobre: {{.Information}}"
	_, err := GeneratePost(context.Background(), gen, "kubernetes", Overrides{Generation: &custom})
	require.NoError(t, err)
	assert.Equal(t, "Escreva sobre: kubernetes", gen.prompts["post_generate"])
}

func TestGeneratePost_GenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: assert.AnError}
	_, err := GeneratePost(context.Background(), gen, "material", Overrides{})
	require.Error(t, err)
}
