package diagnosis

// Classifier is a rule-based pattern detector.
// Returns a pattern and confidence (0.0–1.0), or ("", 0) if the rule doesn't apply.
type Classifier interface {
	Name() string
	Classify(in *Input) (Pattern, float64)
}

// DefaultClassifiers returns classifiers in priority order.
// Speed-rush comes first: a fast wrong answer is a rush even when it is
// close or the learner is strong.
func DefaultClassifiers() []Classifier {
	return []Classifier{
		&SpeedRushClassifier{},
		&NearMissClassifier{},
		&CarelessClassifier{},
	}
}

// Run executes classifiers in order.
// Returns the first match, or ("", 0, "") if no rules apply.
func Run(classifiers []Classifier, in *Input) (Pattern, float64, string) {
	for _, c := range classifiers {
		p, conf := c.Classify(in)
		if p != "" {
			return p, conf, c.Name()
		}
	}
	return "", 0, ""
}
