package problemgen

// Problem is one practice item ready for display.
// A Problem is treated as immutable once a generator returns it; the
// session attaches AI-derived solution steps to its own copy.
type Problem struct {
	// ID is unique within a session. Composite generators namespace it.
	ID string

	// Prompt is the question text shown to the learner.
	Prompt string

	// Answer is the canonical correct answer, e.g. "5/7", "6.25", "[3, -1]".
	Answer string

	// DisplayAnswer overrides Answer when revealing the solution.
	// Empty means Answer is shown as-is.
	DisplayAnswer string

	// Context is an optional hint or topic label shown above the prompt.
	Context string

	// Accepted lists alternative answers (synonyms) that are also correct.
	Accepted []string

	// SolutionSteps is an ordered worked solution.
	SolutionSteps []string

	// Explanation is a short free-text explanation shown after answering.
	Explanation string

	// Kind selects the validation strategy for this problem.
	Kind AnswerKind

	// Choices is populated only when Kind is KindChoice.
	Choices []string

	// Tolerance is used by KindNumeric and KindSigFig problems.
	Tolerance Tolerance

	// SigFigs is the required number of significant figures for KindSigFig.
	SigFigs int

	// Percent marks a KindFraction answer expressed as a percentage.
	Percent bool

	// Metadata is a free-form bag. The mix engine records the originating
	// generator id here.
	Metadata map[string]string
}

// AnswerKind tags the shape of a problem's answer.
type AnswerKind string

const (
	KindText       AnswerKind = "text"       // free text, synonyms allowed
	KindNumeric    AnswerKind = "numeric"    // number within a tolerance
	KindFraction   AnswerKind = "fraction"   // "a/b" or decimal, percent confusion tolerated
	KindSigFig     AnswerKind = "sigfig"     // number with a required precision
	KindChoice     AnswerKind = "choice"     // one of Choices, by text or 1-based index
	KindVector     AnswerKind = "vector"     // "[x, y]"
	KindExpression AnswerKind = "expression" // algebraic expression, checked symbolically
)

// ToleranceMode selects how Epsilon is applied.
type ToleranceMode string

const (
	// Absolute compares |input - answer| <= Epsilon. Suits bounded
	// quantities such as pH.
	Absolute ToleranceMode = "absolute"

	// Relative compares |input - answer| <= Epsilon * |answer|. Suits
	// open-ended magnitudes.
	Relative ToleranceMode = "relative"
)

// Tolerance is a numeric comparison policy chosen per problem.
type Tolerance struct {
	Mode    ToleranceMode
	Epsilon float64
}

// Verdict is the outcome of validating one answer.
type Verdict struct {
	Correct  bool
	Feedback string
}

// Shown returns the answer text to reveal to the learner.
func (p *Problem) Shown() string {
	if p.DisplayAnswer != "" {
		return p.DisplayAnswer
	}
	return p.Answer
}

// Meta returns a metadata value, or "" when unset.
func (p *Problem) Meta(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata[key]
}

// Clone returns a deep copy so callers can annotate it without touching
// the original.
func (p *Problem) Clone() *Problem {
	c := *p
	c.Accepted = append([]string(nil), p.Accepted...)
	c.SolutionSteps = append([]string(nil), p.SolutionSteps...)
	c.Choices = append([]string(nil), p.Choices...)
	if p.Metadata != nil {
		c.Metadata = make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// WithMeta returns a clone with the given metadata key set.
func (p *Problem) WithMeta(key, value string) *Problem {
	c := p.Clone()
	if c.Metadata == nil {
		c.Metadata = make(map[string]string, 1)
	}
	c.Metadata[key] = value
	return c
}
