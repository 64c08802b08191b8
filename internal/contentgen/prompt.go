package contentgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/drillgym/internal/problemgen"
)

const batchSystemPrompt = `You write short exam practice problems. Every problem has exactly one correct answer that a learner can type in a single line.`

func buildBatchMessage(req Request, maxExcluded int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	if req.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n", req.Context)
	}
	fmt.Fprintf(&b, "Difficulty: %d of %d\n", problemgen.ClampLevel(req.Difficulty), problemgen.MaxLevel)
	fmt.Fprintf(&b, "Count: %d\n", req.Count)

	b.WriteString("\nAlready used (do not repeat):\n")
	b.WriteString(buildExcluded(req.Exclude, maxExcluded))

	b.WriteString(`

Instructions:
1. Write exactly the requested number of problems on the topic.
2. Keep answers short: a word, a number or a formula. Put synonyms in "accepted".
3. Use plain text. Write chemical formulas without markup, e.g. H2SO4.
4. Use "choice" only when you also give 3-5 options that include the answer.`)

	return b.String()
}

// buildExcluded lists the most recent prompts, or "None".
func buildExcluded(prompts []string, max int) string {
	if len(prompts) == 0 {
		return "None"
	}
	if max > 0 && len(prompts) > max {
		prompts = prompts[len(prompts)-max:]
	}

	var b strings.Builder
	for i, p := range prompts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	return strings.TrimRight(b.String(), "\n")
}

const stepsSystemPrompt = `You are a tutor. Solve the problem step by step so a learner can follow along. End with the given answer.`

func buildStepsMessage(p *problemgen.Problem) string {
	var b strings.Builder
	if p.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n", p.Context)
	}
	fmt.Fprintf(&b, "Problem: %s\n", p.Prompt)
	fmt.Fprintf(&b, "Answer: %s\n", p.Shown())
	return b.String()
}
