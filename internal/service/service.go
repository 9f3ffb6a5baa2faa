package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/queue"
)

// withTx runs fn inside a transaction and commits when it returns nil.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// publish hands ev to the event publisher after the workflow committed.
// Publishers used here must not wait on the broker (see
// queue.AsyncPublisher).  Failures are logged and otherwise ignored.
func publish(ctx context.Context, p queue.Publisher, log *zap.Logger, ev queue.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Warn("event publish failed", zap.String("type", ev.Type), zap.String("username", ev.Username), zap.Error(err))
	}
}
