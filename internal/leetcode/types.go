package leetcode

import (
	"context"
	"encoding/json"

	"github.com/qri-io/jsonschema"
)

// ProblemSummary is one entry of the paginated problem set listing.
type ProblemSummary struct {
	FrontendID string
	Title      string
	TitleSlug  string
	Difficulty string
	PaidOnly   bool
	TopicTags  []string
}

// ProblemDetail is the full problem record used by the solving pipeline.
// MetadataJSON keeps the raw metaData blob for prompt rendering; Metadata is
// the schema-validated decoded form.
type ProblemDetail struct {
	FrontendID        string
	QuestionID        string
	Title             string
	TitleSlug         string
	Difficulty        string
	Content           string
	SampleTestCase    string
	MetadataJSON      string
	Metadata          ProblemMetadata
	StarterCodePython string
}

// ProblemMetadata is the decoded metaData blob: the entry-point name and its
// typed parameters.
type ProblemMetadata struct {
	Name   string      `json:"name"`
	Params []MetaParam `json:"params"`
	Return *MetaReturn `json:"return,omitempty"`
}

type MetaParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type MetaReturn struct {
	Type string `json:"type"`
}

// metadataSchema describes the metaData shape LeetCode emits for
// function-style problems. Blobs that do not match (system-design problems
// ship a different shape) are treated as absent, not as errors.
var metadataSchema = jsonschema.Must(`{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "params": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "type": {"type": "string"}
        }
      }
    },
    "return": {
      "type": "object",
      "properties": {
        "type": {"type": "string"}
      }
    }
  }
}`)

func parseMetadata(ctx context.Context, raw string) ProblemMetadata {
	var empty ProblemMetadata
	if raw == "" {
		return empty
	}

	keyErrs, err := metadataSchema.ValidateBytes(ctx, []byte(raw))
	if err != nil || len(keyErrs) > 0 {
		return empty
	}

	var meta ProblemMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return empty
	}
	return meta
}
