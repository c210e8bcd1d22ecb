package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("hello {{.Name}}", map[string]string{"Name": "world"})
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)
}

func TestRenderTemplate_BadTemplate(t *testing.T) {
	_, err := RenderTemplate("{{.Broken", nil)
	require.Error(t, err)
}

func TestRenderTemplate_DefaultPrompts(t *testing.T) {
	data := map[string]string{
		"FrontendID":     "1",
		"Title":          "Two Sum",
		"Difficulty":     "Easy",
		"TitleSlug":      "two-sum",
		"StarterCode":    "class Solution: ...",
		"Content":        "<p>Given an array...</p>",
		"SampleTestCase": "[2,7,11,15]\n9",
		"MetadataJSON":   "{}",
		"SolutionCode":   "class Solution: pass",
		"TestsCode":      "run_tests()",
		"FailureOutput":  "AssertionError",
		"Information":    "paper summary",
		"PortuguesePost": "um post",
	}

	for name, tmpl := range map[string]string{
		"solution":    PromptGenerateSolution,
		"tests":       PromptGenerateTests,
		"fix":         PromptFixSolution,
		"post":        PromptPostGeneration,
		"translation": PromptTranslation,
	} {
		out, err := RenderTemplate(tmpl, data)
		require.NoError(t, err, name)
		assert.NotContains(t, out, "{{", name)
		assert.False(t, strings.Contains(out, "<no value>"), name)
	}
}
