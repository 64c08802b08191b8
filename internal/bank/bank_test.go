package bank

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/drillgym/internal/problemgen"
)

const sampleBank = `
id: capitals
name: Capitals
topic: European capitals
context: Geography
problems:
  - id: fr
    prompt: What is the capital of France?
    answer: Paris
  - id: de
    level: 3
    prompt: What is the capital of Germany?
    answer: Berlin
    accepted: [berlin city]
  - id: pi
    kind: numeric
    prompt: Pi to two decimals
    answer: "3.14"
    tolerance: 0.005
  - id: pick
    kind: choice
    prompt: Which is in Spain?
    answer: Madrid
    choices: [Lisbon, Madrid, Rome]
`

func TestParse(t *testing.T) {
	b, err := Parse([]byte(sampleBank))
	require.NoError(t, err)

	assert.Equal(t, "capitals", b.ID)
	assert.Equal(t, "Capitals", b.Name)
	require.Len(t, b.Entries, 4)

	probs := b.Problems()
	assert.Equal(t, "capitals/fr", probs[0].ID)
	assert.Equal(t, problemgen.KindText, probs[0].Kind)
	assert.Equal(t, []string{"berlin city"}, probs[1].Accepted)
	assert.Equal(t, problemgen.Tolerance{Mode: problemgen.Absolute, Epsilon: 0.005}, probs[2].Tolerance)
	assert.Equal(t, problemgen.KindChoice, probs[3].Kind)
	assert.Equal(t, "capitals", probs[3].Meta("bank"))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing name", "id: x\nproblems:\n  - {id: a, prompt: p, answer: a}\n"},
		{"no problems", "id: x\nname: X\n"},
		{"missing answer", "id: x\nname: X\nproblems:\n  - {id: a, prompt: p}\n"},
		{"unknown kind", "id: x\nname: X\nproblems:\n  - {id: a, prompt: p, answer: a, kind: essay}\n"},
		{"choice without choices", "id: x\nname: X\nproblems:\n  - {id: a, prompt: p, answer: a, kind: choice}\n"},
		{"single choice", "id: x\nname: X\nproblems:\n  - {id: a, prompt: p, answer: a, kind: choice, choices: [a]}\n"},
		{"sigfig without count", "id: x\nname: X\nproblems:\n  - {id: a, prompt: p, answer: '1.0', kind: sigfig}\n"},
		{"level out of range", "id: x\nname: X\nproblems:\n  - {id: a, prompt: p, answer: a, level: 9}\n"},
		{"duplicate entry", "id: x\nname: X\nproblems:\n  - {id: a, prompt: p, answer: a}\n  - {id: a, prompt: q, answer: b}\n"},
		{"unknown key", "id: x\nname: X\nsubject: y\nproblems:\n  - {id: a, prompt: p, answer: a}\n"},
		{"slash in id", "id: x/y\nname: X\nproblems:\n  - {id: a, prompt: p, answer: a}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_TooLarge(t *testing.T) {
	_, err := Parse([]byte(strings.Repeat("#", MaxFileSize+1)))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"banks/b.yaml":   {Data: []byte("id: b\nname: B\nproblems:\n  - {id: a, prompt: p, answer: a}\n")},
		"banks/a.yaml":   {Data: []byte("id: a\nname: A\nproblems:\n  - {id: a, prompt: p, answer: a}\n")},
		"banks/note.txt": {Data: []byte("ignored")},
	}

	banks, err := Load(fsys, "banks")
	require.NoError(t, err)
	require.Len(t, banks, 2)
	assert.Equal(t, "a", banks[0].ID)
	assert.Equal(t, "b", banks[1].ID)
}

func TestLoad_DuplicateBankID(t *testing.T) {
	fsys := fstest.MapFS{
		"banks/one.yaml": {Data: []byte("id: same\nname: A\nproblems:\n  - {id: a, prompt: p, answer: a}\n")},
		"banks/two.yaml": {Data: []byte("id: same\nname: B\nproblems:\n  - {id: a, prompt: p, answer: a}\n")},
	}
	_, err := Load(fsys, "banks")
	assert.ErrorContains(t, err, "already defined")
}

func TestGenerator(t *testing.T) {
	b, err := Parse([]byte(sampleBank))
	require.NoError(t, err)
	g := NewGenerator(b)

	assert.Equal(t, "capitals", g.ID())
	assert.Equal(t, "Capitals", g.Name())

	// Level 1 never serves the level-3 entry.
	for range 50 {
		p := g.Generate(context.Background(), 1)
		assert.NotEqual(t, "capitals/de", p.ID)
		assert.Equal(t, "Geography", p.Context)
		assert.True(t, g.Validate(p.Answer, p).Correct, p.ID)
	}
}

func TestGenerator_Validate(t *testing.T) {
	b, err := Parse([]byte(sampleBank))
	require.NoError(t, err)
	g := NewGenerator(b)
	probs := b.Problems()

	tests := []struct {
		idx   int
		input string
		want  bool
	}{
		{0, "paris", true},
		{0, "Lyon", false},
		{1, "Berlin City", true},
		{2, "3.141", true},
		{2, "3.2", false},
		{3, "2", true},
		{3, "Rome", false},
	}
	for _, tt := range tests {
		got := g.Validate(tt.input, probs[tt.idx]).Correct
		if got != tt.want {
			t.Errorf("Validate(%q, %s) = %v, want %v", tt.input, probs[tt.idx].ID, got, tt.want)
		}
	}
}
