package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"slices"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// Grades are on the 1-10 school scale.
const (
	gradeCorrect   = 10.0
	gradeIncorrect = 1.0
	minGrade       = 1.0
	maxGrade       = 10.0

	// masteredBox is the first box that counts towards coverage.
	masteredBox = 4

	// sessionGap splits the answer stream into practice sittings.
	sessionGap = 15 * time.Minute

	// staminaDepth is the longest sitting the stamina curve reports.
	staminaDepth = 20
)

// MonthStat is the average grade for one calendar month (UTC).
type MonthStat struct {
	Month    string  `json:"month"`
	AvgGrade float64 `json:"avg_grade"`
	Attempts int     `json:"attempts"`
}

// StaminaPoint is the accuracy at one position within a sitting.
type StaminaPoint struct {
	Position int `json:"position"`
	Accuracy int `json:"accuracy"`
	Samples  int `json:"samples"`
}

// GradePrediction is the expected exam grade with its inputs, each on a
// 0-10 scale.
type GradePrediction struct {
	Grade    float64 `json:"grade"`
	Accuracy float64 `json:"accuracy"`
	Coverage float64 `json:"coverage"`
	Stamina  float64 `json:"stamina"`
}

// MonthlyTrend returns the average grade of the latest months, oldest
// first. A correct answer grades 10 and a wrong one 1.
func (s *Store) MonthlyTrend(ctx context.Context, months int) ([]MonthStat, error) {
	sel := builder().
		Select(
			entsql.As("strftime('%Y-%m', timestamp / 1000, 'unixepoch')", "month"),
			entsql.As(entsql.Count("*"), "attempts"),
			entsql.As(entsql.Sum("is_correct"), "correct"),
		).
		From(entsql.Table(tableHistory)).
		GroupBy("month").
		OrderBy(entsql.Desc("month"))
	if months > 0 {
		sel.Limit(months)
	}
	q, args := sel.Query()

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, q, args, rows); err != nil {
		return nil, fmt.Errorf("query monthly trend: %w", err)
	}
	defer rows.Close()

	var out []MonthStat
	for rows.Next() {
		var (
			m       MonthStat
			correct sql.NullInt64
		)
		if err := rows.Scan(&m.Month, &m.Attempts, &correct); err != nil {
			return nil, fmt.Errorf("scan monthly trend: %w", err)
		}
		if m.Attempts > 0 {
			c := float64(correct.Int64)
			m.AvgGrade = (c*gradeCorrect + (float64(m.Attempts)-c)*gradeIncorrect) / float64(m.Attempts)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

// Stamina returns accuracy by position within a sitting over the latest
// answers. Answers more than 15 minutes apart start a new sitting.
func (s *Store) Stamina(ctx context.Context, limit int) ([]StaminaPoint, error) {
	sel := builder().
		Select("is_correct", "timestamp").
		From(entsql.Table(tableHistory)).
		OrderBy(entsql.Desc("timestamp"), entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	q, args := sel.Query()

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, q, args, rows); err != nil {
		return nil, fmt.Errorf("query stamina: %w", err)
	}
	defer rows.Close()

	type answer struct {
		correct bool
		at      int64
	}
	var answers []answer
	for rows.Next() {
		var a answer
		if err := rows.Scan(&a.correct, &a.at); err != nil {
			return nil, fmt.Errorf("scan stamina: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(answers)

	var (
		correct, total [staminaDepth]int
		pos            int
	)
	for i, a := range answers {
		if i > 0 && a.at-answers[i-1].at > sessionGap.Milliseconds() {
			pos = 0
		}
		if pos < staminaDepth {
			total[pos]++
			if a.correct {
				correct[pos]++
			}
		}
		pos++
	}

	var out []StaminaPoint
	for i := range staminaDepth {
		if total[i] == 0 {
			break
		}
		out = append(out, StaminaPoint{
			Position: i + 1,
			Accuracy: int(math.Round(float64(correct[i]) / float64(total[i]) * 100)),
			Samples:  total[i],
		})
	}
	return out, nil
}

// PredictGrade weighs overall accuracy (50%), coverage of engines at the
// mastered box or above (30%) and stamina over the last 100 answers
// (20%), clamped to 1-10 and rounded to one decimal.
func (s *Store) PredictGrade(ctx context.Context) (GradePrediction, error) {
	var p GradePrediction

	q, args := builder().
		Select(entsql.As("COALESCE(AVG(is_correct), 0)", "acc")).
		From(entsql.Table(tableHistory)).
		Query()
	acc, err := s.scalar(ctx, q, args)
	if err != nil {
		return p, fmt.Errorf("query accuracy: %w", err)
	}
	p.Accuracy = acc * 10

	progress, err := s.AllProgress(ctx)
	if err != nil {
		return p, err
	}
	if len(progress) > 0 {
		var mastered int
		for _, rs := range progress {
			if rs.Box >= masteredBox {
				mastered++
			}
		}
		p.Coverage = float64(mastered) / float64(len(progress)) * 10
	}

	curve, err := s.Stamina(ctx, 100)
	if err != nil {
		return p, err
	}
	if len(curve) > 0 {
		var sum int
		for _, pt := range curve {
			sum += pt.Accuracy
		}
		p.Stamina = float64(sum) / float64(len(curve)) / 10
	}

	raw := p.Accuracy*0.5 + p.Coverage*0.3 + p.Stamina*0.2
	p.Grade = math.Round(min(maxGrade, max(minGrade, raw))*10) / 10
	return p, nil
}

func (s *Store) scalar(ctx context.Context, q string, args []any) (float64, error) {
	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, q, args, rows); err != nil {
		return 0, err
	}
	defer rows.Close()

	var v sql.NullFloat64
	if rows.Next() {
		if err := rows.Scan(&v); err != nil {
			return 0, err
		}
	}
	return v.Float64, rows.Err()
}
