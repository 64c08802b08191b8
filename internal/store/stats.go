package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqljson"

	"github.com/abhisek/drillgym/internal/session"
	"github.com/abhisek/drillgym/internal/spacedrep"
)

// TimeStat is the average answer time for one engine.
type TimeStat struct {
	EngineID string        `json:"engine_id"`
	Average  time.Duration `json:"average"`
	Attempts int           `json:"attempts"`
	Correct  int           `json:"correct"`
}

// ErrorCount is the number of wrong answers of one error type.
type ErrorCount struct {
	ErrorType string `json:"error_type"`
	Count     int    `json:"count"`
}

// HistoryEntry is one stored submission.
type HistoryEntry struct {
	ID        int64             `json:"id"`
	EngineID  string            `json:"engine_id"`
	SkillKey  string            `json:"skill_key"`
	Correct   bool              `json:"correct"`
	TimeTaken time.Duration     `json:"time_taken"`
	Score     int               `json:"score"`
	Metrics   map[string]string `json:"metrics,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// TotalXP returns the sum of all awarded scores.
func (s *Store) TotalXP(ctx context.Context) (int, error) {
	q, args := builder().
		Select(entsql.As("COALESCE(SUM(score), 0)", "total_xp")).
		From(entsql.Table(tableHistory)).
		Query()

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, q, args, rows); err != nil {
		return 0, fmt.Errorf("query total xp: %w", err)
	}
	defer rows.Close()

	var total int64
	if rows.Next() {
		if err := rows.Scan(&total); err != nil {
			return 0, fmt.Errorf("scan total xp: %w", err)
		}
	}
	return int(total), rows.Err()
}

// AllProgress returns every default-category progress row, ordered by
// engine id.
func (s *Store) AllProgress(ctx context.Context) ([]spacedrep.ReviewState, error) {
	sel := builder().
		Select("engine_id", "skill_key", "box_level", "highest_box", "next_review").
		From(entsql.Table(tableProgress)).
		Where(entsql.EQ("skill_key", session.DefaultCategory)).
		OrderBy("engine_id")
	return s.progressRows(ctx, sel)
}

// DueItems returns progress rows whose review date has passed, oldest
// first. A non-positive limit returns all of them.
func (s *Store) DueItems(ctx context.Context, limit int) ([]spacedrep.ReviewState, error) {
	sel := builder().
		Select("engine_id", "skill_key", "box_level", "highest_box", "next_review").
		From(entsql.Table(tableProgress)).
		Where(entsql.LTE("next_review", s.now().UnixMilli())).
		OrderBy(entsql.Asc("next_review"))
	if limit > 0 {
		sel.Limit(limit)
	}
	return s.progressRows(ctx, sel)
}

func (s *Store) progressRows(ctx context.Context, sel *entsql.Selector) ([]spacedrep.ReviewState, error) {
	q, args := sel.Query()
	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, q, args, rows); err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	var out []spacedrep.ReviewState
	for rows.Next() {
		var (
			rs   spacedrep.ReviewState
			next int64
		)
		if err := rows.Scan(&rs.EngineID, &rs.SkillKey, &rs.Box, &rs.HighestBox, &next); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		rs.NextReview = time.UnixMilli(next)
		out = append(out, rs)
	}
	return out, rows.Err()
}

// TimeStats returns per-engine average answer times, slowest first.
func (s *Store) TimeStats(ctx context.Context, limit int) ([]TimeStat, error) {
	sel := builder().
		Select(
			"engine_id",
			entsql.As(entsql.Avg("time_taken_ms"), "avg_time"),
			entsql.As(entsql.Count("*"), "attempts"),
			entsql.As(entsql.Sum("is_correct"), "correct"),
		).
		From(entsql.Table(tableHistory)).
		GroupBy("engine_id").
		OrderBy(entsql.Desc("avg_time"))
	if limit > 0 {
		sel.Limit(limit)
	}
	q, args := sel.Query()

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, q, args, rows); err != nil {
		return nil, fmt.Errorf("query time stats: %w", err)
	}
	defer rows.Close()

	var out []TimeStat
	for rows.Next() {
		var (
			ts      TimeStat
			avg     float64
			correct sql.NullInt64
		)
		if err := rows.Scan(&ts.EngineID, &avg, &ts.Attempts, &correct); err != nil {
			return nil, fmt.Errorf("scan time stats: %w", err)
		}
		ts.Average = time.Duration(avg * float64(time.Millisecond))
		ts.Correct = int(correct.Int64)
		out = append(out, ts)
	}
	return out, rows.Err()
}

// ErrorDistribution counts wrong answers by their recorded error type,
// most frequent first.
func (s *Store) ErrorDistribution(ctx context.Context) ([]ErrorCount, error) {
	return s.countByMetric(ctx, "errorType")
}

// PatternDistribution counts wrong answers by their diagnosed pattern
// (speed-rush, near-miss, careless), most frequent first.
func (s *Store) PatternDistribution(ctx context.Context) ([]ErrorCount, error) {
	return s.countByMetric(ctx, "pattern")
}

// countByMetric groups wrong answers on one key of the metrics bag. key
// is always a constant.
func (s *Store) countByMetric(ctx context.Context, key string) ([]ErrorCount, error) {
	q, args := builder().
		Select(
			entsql.As(fmt.Sprintf("json_extract(metrics, '$.%s')", key), "error_type"),
			entsql.As(entsql.Count("*"), "n"),
		).
		From(entsql.Table(tableHistory)).
		Where(entsql.And(
			entsql.EQ("is_correct", false),
			sqljson.HasKey("metrics", sqljson.Path(key)),
		)).
		GroupBy("error_type").
		OrderBy(entsql.Desc("n"), "error_type").
		Query()

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, q, args, rows); err != nil {
		return nil, fmt.Errorf("query %s distribution: %w", key, err)
	}
	defer rows.Close()

	var out []ErrorCount
	for rows.Next() {
		var (
			ec  ErrorCount
			typ sql.NullString
		)
		if err := rows.Scan(&typ, &ec.Count); err != nil {
			return nil, fmt.Errorf("scan %s distribution: %w", key, err)
		}
		if !typ.Valid {
			continue
		}
		ec.ErrorType = typ.String
		out = append(out, ec)
	}
	return out, rows.Err()
}

// RecentHistory returns the latest submissions, newest first. An empty
// engineID matches all engines.
func (s *Store) RecentHistory(ctx context.Context, engineID string, limit int) ([]HistoryEntry, error) {
	sel := builder().
		Select("id", "engine_id", "skill_key", "is_correct", "time_taken_ms", "score", "metrics", "timestamp").
		From(entsql.Table(tableHistory)).
		OrderBy(entsql.Desc("id"))
	if engineID != "" {
		sel.Where(entsql.EQ("engine_id", engineID))
	}
	if limit > 0 {
		sel.Limit(limit)
	}
	q, args := sel.Query()

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, q, args, rows); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var (
			e       HistoryEntry
			taken   int64
			ts      int64
			metrics sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.EngineID, &e.SkillKey, &e.Correct, &taken, &e.Score, &metrics, &ts); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.TimeTaken = time.Duration(taken) * time.Millisecond
		e.Timestamp = time.UnixMilli(ts)
		if metrics.Valid && metrics.String != "" {
			if err := json.Unmarshal([]byte(metrics.String), &e.Metrics); err != nil {
				return nil, fmt.Errorf("decode metrics for history %d: %w", e.ID, err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
