package diagnosis

import (
	"testing"
	"time"

	"github.com/abhisek/drillgym/internal/problemgen"
)

func numeric(answer string) *problemgen.Problem {
	return &problemgen.Problem{Prompt: "?", Answer: answer, Kind: problemgen.KindNumeric}
}

func TestSpeedRushClassifier(t *testing.T) {
	tests := []struct {
		name  string
		taken time.Duration
		want  Pattern
	}{
		{"zero", 0, PatternSpeedRush},
		{"under threshold", 1500 * time.Millisecond, PatternSpeedRush},
		{"at threshold", SpeedRushThreshold, ""},
		{"over threshold", 3 * time.Second, ""},
	}
	c := &SpeedRushClassifier{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := c.Classify(&Input{TimeTaken: tt.taken})
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNearMissClassifier(t *testing.T) {
	tests := []struct {
		name    string
		problem *problemgen.Problem
		answer  string
		want    Pattern
	}{
		{"within ten percent", numeric("50"), "54", PatternNearMiss},
		{"at ratio", numeric("50"), "55", PatternNearMiss},
		{"far off", numeric("50"), "70", ""},
		{"decimal comma", numeric("6.25"), "6,3", PatternNearMiss},
		{"not a number", numeric("50"), "fifty", ""},
		{"zero answer", numeric("0"), "0.01", ""},
		{"text problem", &problemgen.Problem{Answer: "50", Kind: problemgen.KindText}, "51", ""},
		{"nil problem", nil, "51", ""},
	}
	c := &NearMissClassifier{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := c.Classify(&Input{Problem: tt.problem, Answer: tt.answer})
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCarelessClassifier(t *testing.T) {
	c := &CarelessClassifier{}
	if got, conf := c.Classify(&Input{Level: 5}); got != PatternCareless || conf != 0.6 {
		t.Errorf("level 5: got %q (%v), want careless", got, conf)
	}
	if got, _ := c.Classify(&Input{Level: CarelessLevel}); got != PatternCareless {
		t.Errorf("at threshold: got %q, want careless", got)
	}
	if got, _ := c.Classify(&Input{Level: 2}); got != "" {
		t.Errorf("level 2: got %q, want empty", got)
	}
}

func TestRun_Priority(t *testing.T) {
	tests := []struct {
		name     string
		in       Input
		want     Pattern
		wantName string
	}{
		{
			name:     "rush beats everything",
			in:       Input{Problem: numeric("50"), Answer: "51", TimeTaken: time.Second, Level: 5},
			want:     PatternSpeedRush,
			wantName: "speed-rush",
		},
		{
			name:     "near miss beats careless",
			in:       Input{Problem: numeric("50"), Answer: "51", TimeTaken: 10 * time.Second, Level: 5},
			want:     PatternNearMiss,
			wantName: "near-miss",
		},
		{
			name:     "careless fallback",
			in:       Input{Problem: numeric("50"), Answer: "90", TimeTaken: 10 * time.Second, Level: 4},
			want:     PatternCareless,
			wantName: "careless",
		},
		{
			name: "no match",
			in:   Input{Problem: numeric("50"), Answer: "90", TimeTaken: 10 * time.Second, Level: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, name := Run(DefaultClassifiers(), &tt.in)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if name != tt.wantName {
				t.Errorf("got classifier %q, want %q", name, tt.wantName)
			}
		})
	}
}

func TestDefaultClassifiers_Order(t *testing.T) {
	want := []string{"speed-rush", "near-miss", "careless"}
	got := DefaultClassifiers()
	if len(got) != len(want) {
		t.Fatalf("got %d classifiers, want %d", len(got), len(want))
	}
	for i, c := range got {
		if c.Name() != want[i] {
			t.Errorf("classifier %d is %q, want %q", i, c.Name(), want[i])
		}
	}
}
