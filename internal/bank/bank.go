// Package bank loads static problem banks from YAML. Banks back the
// offline engines and serve as backup pools for adaptive ones.
package bank

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// MaxFileSize caps a single bank file.
const MaxFileSize = 1 << 20

// ErrTooLarge is returned for bank files over MaxFileSize.
var ErrTooLarge = errors.New("bank: file too large")

// Bank is one YAML file of problems for a single engine.
type Bank struct {
	ID        string  `yaml:"id" validate:"required,excludesall=/"`
	Name      string  `yaml:"name" validate:"required"`
	Topic     string  `yaml:"topic"`
	Context   string  `yaml:"context"`
	Formatter string  `yaml:"formatter" validate:"omitempty,oneof=chem"`
	Adaptive  bool    `yaml:"adaptive"`
	Entries   []Entry `yaml:"problems" validate:"required,min=1,dive"`
}

// Entry is one problem in a bank.
type Entry struct {
	ID          string   `yaml:"id" validate:"required"`
	Level       int      `yaml:"level" validate:"omitempty,min=1,max=5"`
	Prompt      string   `yaml:"prompt" validate:"required"`
	Answer      string   `yaml:"answer" validate:"required"`
	Display     string   `yaml:"display"`
	Context     string   `yaml:"context"`
	Accepted    []string `yaml:"accepted" validate:"omitempty,dive,required"`
	Kind        string   `yaml:"kind" validate:"omitempty,oneof=text numeric fraction sigfig choice vector expression"`
	Choices     []string `yaml:"choices" validate:"required_if=Kind choice,omitempty,min=2,dive,required"`
	Tolerance   float64  `yaml:"tolerance" validate:"gte=0"`
	Mode        string   `yaml:"tolerance_mode" validate:"omitempty,oneof=absolute relative"`
	SigFigs     int      `yaml:"sigfigs" validate:"required_if=Kind sigfig,omitempty,min=1,max=15"`
	Percent     bool     `yaml:"percent"`
	Explanation string   `yaml:"explanation"`
	Steps       []string `yaml:"steps"`
}

var validate = validator.New()

// Parse decodes and validates one bank. Unknown keys are rejected.
func Parse(data []byte) (*Bank, error) {
	if len(data) > MaxFileSize {
		return nil, ErrTooLarge
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var b Bank
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}
	if err := validate.Struct(&b); err != nil {
		return nil, fmt.Errorf("bank %q: %w", b.ID, err)
	}

	seen := make(map[string]bool, len(b.Entries))
	for _, e := range b.Entries {
		if seen[e.ID] {
			return nil, fmt.Errorf("bank %q: duplicate problem id %q", b.ID, e.ID)
		}
		seen[e.ID] = true
	}
	return &b, nil
}

// Load parses every *.yaml file in dir of fsys, sorted by file name.
func Load(fsys fs.FS, dir string) ([]*Bank, error) {
	matches, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	banks := make([]*Bank, 0, len(matches))
	ids := make(map[string]string, len(matches))
	for _, m := range matches {
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", m, err)
		}
		b, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
		if prev, ok := ids[b.ID]; ok {
			return nil, fmt.Errorf("%s: bank id %q already defined in %s", m, b.ID, prev)
		}
		ids[b.ID] = m
		banks = append(banks, b)
	}
	return banks, nil
}

// Problem converts the entry to a Problem with a bank-scoped id.
func (e Entry) Problem(bankID string) *problemgen.Problem {
	p := &problemgen.Problem{
		ID:            bankID + "/" + e.ID,
		Prompt:        e.Prompt,
		Answer:        e.Answer,
		DisplayAnswer: e.Display,
		Context:       e.Context,
		Accepted:      append([]string(nil), e.Accepted...),
		SolutionSteps: append([]string(nil), e.Steps...),
		Explanation:   e.Explanation,
		Kind:          problemgen.AnswerKind(e.Kind),
		Choices:       append([]string(nil), e.Choices...),
		SigFigs:       e.SigFigs,
		Percent:       e.Percent,
		Metadata:      map[string]string{"bank": bankID, "entry": e.ID},
	}
	if p.Kind == "" {
		p.Kind = problemgen.KindText
	}
	if e.Tolerance > 0 {
		mode := problemgen.ToleranceMode(e.Mode)
		if mode == "" {
			mode = problemgen.Absolute
		}
		p.Tolerance = problemgen.Tolerance{Mode: mode, Epsilon: e.Tolerance}
	}
	return p
}

// Problems converts every entry.
func (b *Bank) Problems() []*problemgen.Problem {
	out := make([]*problemgen.Problem, len(b.Entries))
	for i, e := range b.Entries {
		out[i] = e.Problem(b.ID)
	}
	return out
}
