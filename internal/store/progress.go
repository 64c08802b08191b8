package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/drillgym/internal/session"
	"github.com/abhisek/drillgym/internal/spacedrep"
)

// Level returns the engine's current and highest box for the default
// category. Engines with no progress start at box 1.
func (s *Store) Level(ctx context.Context, engineID string) (session.Level, error) {
	rs, found, err := s.review(ctx, s.drv, engineID, session.DefaultCategory)
	if err != nil {
		return session.Level{}, err
	}
	if !found {
		return session.Level{Current: spacedrep.MinBox, Highest: spacedrep.MinBox}, nil
	}
	return session.Level{Current: rs.Box, Highest: rs.HighestBox}, nil
}

// SaveResult stores one submission and moves the engine's box in a
// single transaction.
func (s *Store) SaveResult(ctx context.Context, r session.Record) (err error) {
	category := r.Category
	if category == "" {
		category = session.DefaultCategory
	}
	now := s.now()

	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rs, found, err := s.review(ctx, tx, r.EngineID, category)
	if err != nil {
		return err
	}
	if !found {
		rs = spacedrep.ReviewState{
			EngineID:   r.EngineID,
			SkillKey:   category,
			Box:        spacedrep.MinBox,
			HighestBox: spacedrep.MinBox,
		}
	}
	rs = rs.Record(r.Correct, now)

	q, args := builder().Insert(tableProgress).
		Columns("engine_id", "skill_key", "box_level", "highest_box", "next_review", "updated_at").
		Values(rs.EngineID, rs.SkillKey, rs.Box, rs.HighestBox, rs.NextReview.UnixMilli(), now.UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("engine_id", "skill_key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err = tx.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}

	var metrics any
	if len(r.Metrics) > 0 {
		raw, merr := json.Marshal(r.Metrics)
		if merr != nil {
			err = fmt.Errorf("encode metrics: %w", merr)
			return err
		}
		metrics = string(raw)
	}

	q, args = builder().Insert(tableHistory).
		Columns("engine_id", "skill_key", "is_correct", "time_taken_ms", "score", "metrics", "timestamp").
		Values(r.EngineID, category, r.Correct, r.TimeTaken.Milliseconds(), r.Score, metrics, now.UnixMilli()).
		Query()
	if err = tx.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SaveFeedback stores a learner's classification of a mistake.
func (s *Store) SaveFeedback(ctx context.Context, f session.Feedback) error {
	q, args := builder().Insert(tableFeedback).
		Columns("engine_id", "problem_id", "kind", "sentiment", "timestamp").
		Values(f.EngineID, f.ProblemID, f.Kind, f.Sentiment, s.now().UnixMilli()).
		Query()
	if err := s.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// Reset deletes progress, history and feedback for engineID, or for every
// engine when engineID is empty. It returns the number of progress rows
// removed.
func (s *Store) Reset(ctx context.Context, engineID string) (n int64, err error) {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{tableProgress, tableHistory, tableFeedback} {
		del := builder().Delete(table)
		if engineID != "" {
			del = del.Where(entsql.EQ("engine_id", engineID))
		}
		q, args := del.Query()

		var res sql.Result
		if err = tx.Exec(ctx, q, args, &res); err != nil {
			return 0, fmt.Errorf("delete from %s: %w", table, err)
		}
		if table == tableProgress {
			if n, err = res.RowsAffected(); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// querier is satisfied by both the driver and a transaction.
type querier interface {
	Query(ctx context.Context, query string, args, v any) error
}

func (s *Store) review(ctx context.Context, qr querier, engineID, skill string) (spacedrep.ReviewState, bool, error) {
	q, args := builder().
		Select("box_level", "highest_box", "next_review").
		From(entsql.Table(tableProgress)).
		Where(entsql.And(
			entsql.EQ("engine_id", engineID),
			entsql.EQ("skill_key", skill),
		)).
		Query()

	rows := &entsql.Rows{}
	if err := qr.Query(ctx, q, args, rows); err != nil {
		return spacedrep.ReviewState{}, false, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return spacedrep.ReviewState{}, false, rows.Err()
	}
	rs := spacedrep.ReviewState{EngineID: engineID, SkillKey: skill}
	var next int64
	if err := rows.Scan(&rs.Box, &rs.HighestBox, &next); err != nil {
		return spacedrep.ReviewState{}, false, fmt.Errorf("scan progress: %w", err)
	}
	rs.NextReview = time.UnixMilli(next)
	return rs, true, nil
}
