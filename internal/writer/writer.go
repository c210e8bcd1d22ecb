// Package writer composes bilingual LinkedIn posts from source material.
package writer

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/autofeedr/autofeedr/internal/llm"
)

// Character budgets. LinkedIn rejects posts above 3000 characters, and each
// language section is held to 1400 so the combined post has headroom.
const (
	MaxSectionChars = 1400
	MaxPostChars    = 3000
)

const (
	headerPT = "「PT-BR」\n"
	headerEN = "\n\n「EN-US」\n"
)

// Generator is the slice of llm.Session the writer needs.
type Generator interface {
	Generate(ctx context.Context, prompt, operation string) (string, error)
}

// Overrides carries per-account prompt template replacements. Nil fields fall
// back to the package defaults.
type Overrides struct {
	Generation  *string
	Translation *string
}

// GeneratePost produces the final bilingual post text: a PT-BR section
// generated from the source material, an EN-US translation of it, and the
// 「PT-BR」/「EN-US」 framing. The result never exceeds MaxPostChars.
func GeneratePost(ctx context.Context, gen Generator, information string, ov Overrides) (string, error) {
	genTemplate := llm.PromptPostGeneration
	if ov.Generation != nil && strings.TrimSpace(*ov.Generation) != "" {
		genTemplate = *ov.Generation
	}
	prompt, err := llm.RenderTemplate(genTemplate, map[string]string{"Information": information})
	if err != nil {
		return "", fmt.Errorf("render generation prompt: %w", err)
	}

	postPT, err := gen.Generate(ctx, prompt, "post_generate")
	if err != nil {
		return "", fmt.Errorf("generate pt-br post: %w", err)
	}
	postPT = FitTextLimit(postPT, MaxSectionChars)

	trTemplate := llm.PromptTranslation
	if ov.Translation != nil && strings.TrimSpace(*ov.Translation) != "" {
		trTemplate = *ov.Translation
	}
	prompt, err = llm.RenderTemplate(trTemplate, map[string]string{"PortuguesePost": postPT})
	if err != nil {
		return "", fmt.Errorf("render translation prompt: %w", err)
	}

	postEN, err := gen.Generate(ctx, prompt, "post_translate")
	if err != nil {
		return "", fmt.Errorf("translate post: %w", err)
	}
	postEN = FitTextLimit(postEN, MaxSectionChars)

	post := composeBilingual(postPT, postEN)
	if utf8.RuneCountInString(post) > MaxPostChars {
		return "", fmt.Errorf("post exceeds %d characters after compression", MaxPostChars)
	}
	return post, nil
}

// composeBilingual joins both sections under their headers. If the combined
// post exceeds MaxPostChars, both sections are compressed to an equal share of
// the remaining budget (never below 200 characters each) and the result is
// clipped as a last resort.
func composeBilingual(postPT, postEN string) string {
	base := headerPT + postPT + headerEN + postEN
	if utf8.RuneCountInString(base) <= MaxPostChars {
		return base
	}

	available := MaxPostChars - utf8.RuneCountInString(headerPT) - utf8.RuneCountInString(headerEN)
	perSection := available / 2
	if perSection < 200 {
		perSection = 200
	}
	ptFit := FitTextLimit(postPT, perSection)
	enFit := FitTextLimit(postEN, perSection)
	return FitTextLimit(headerPT+ptFit+headerEN+enFit, MaxPostChars)
}

// FitTextLimit trims text to at most limit characters, appending "..." when it
// had to clip. It never returns an empty string for non-empty input.
func FitTextLimit(text string, limit int) string {
	clean := strings.TrimSpace(text)
	runes := []rune(clean)
	if len(runes) <= limit {
		return clean
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	clipped := strings.TrimRight(string(runes[:limit-3]), " \t\n")
	return clipped + "..."
}
