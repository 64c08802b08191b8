package diagnosis

// CarelessLevel is the minimum box (inclusive) at which a wrong answer is
// treated as a slip rather than a gap.
const CarelessLevel = 4

// CarelessClassifier flags wrong answers from learners whose box shows a
// run of correct answers.
type CarelessClassifier struct{}

func (c *CarelessClassifier) Name() string { return "careless" }

func (c *CarelessClassifier) Classify(in *Input) (Pattern, float64) {
	if in.Level >= CarelessLevel {
		return PatternCareless, 0.6
	}
	return "", 0
}
