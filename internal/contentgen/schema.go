package contentgen

import "github.com/abhisek/drillgym/internal/llm"

// BatchSchema defines the JSON schema for a batch of practice problems.
var BatchSchema = &llm.Schema{
	Name:        "problem-batch",
	Description: "A batch of exam practice problems with canonical answers",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"problems": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The prompt shown to the learner",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "The canonical answer, as short as possible",
						},
						"accepted": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Other spellings or synonyms that are also correct",
						},
						"kind": map[string]any{
							"type": "string",
							"enum": []any{"text", "numeric", "choice"},
						},
						"choices": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Options for choice problems. Empty otherwise.",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "One or two sentences explaining the answer",
						},
						"steps": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Ordered worked-solution steps",
						},
					},
					"required": []any{"question", "answer"},
				},
			},
		},
		"required": []any{"problems"},
	},
}

// StepsSchema defines the JSON schema for a step-by-step solution.
var StepsSchema = &llm.Schema{
	Name:        "solution-steps",
	Description: "An ordered worked solution for one problem",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"steps": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "3-8 short steps, each a single action",
			},
		},
		"required":             []any{"steps"},
		"additionalProperties": false,
	},
}
