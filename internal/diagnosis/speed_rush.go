package diagnosis

import "time"

// SpeedRushThreshold is the maximum response time (exclusive) for a
// wrong answer to count as rushed.
const SpeedRushThreshold = 2 * time.Second

// SpeedRushClassifier flags answers submitted too quickly.
type SpeedRushClassifier struct{}

func (c *SpeedRushClassifier) Name() string { return "speed-rush" }

func (c *SpeedRushClassifier) Classify(in *Input) (Pattern, float64) {
	if in.TimeTaken < SpeedRushThreshold {
		return PatternSpeedRush, 0.9
	}
	return "", 0
}
