package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"

	"github.com/karino-t/dining-concierge/internal/common/database"
)

// ProcessedSet は通知済みメッセージの冪等性キーを記録するストアのインターフェースです
// キューはat-least-once配送のため、再配送されたメッセージの二重通知をここで抑止します
type ProcessedSet interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

// PostgresProcessedSet はProcessedSetのPostgres実装です
//
// スキーマ:
//
//	CREATE TABLE processed_reservations (
//	    idempotency_key TEXT PRIMARY KEY,
//	    processed_at    TIMESTAMPTZ NOT NULL
//	);
type PostgresProcessedSet struct {
	db *database.DB
}

// NewPostgresProcessedSet は新しいPostgresProcessedSetを作成します
func NewPostgresProcessedSet(db *database.DB) *PostgresProcessedSet {
	return &PostgresProcessedSet{db: db}
}

// Seen は指定キーが処理済みかどうかを返します
func (p *PostgresProcessedSet) Seen(ctx context.Context, key string) (bool, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "ProcessedSet.Seen")
	defer seg.Close(nil)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM processed_reservations
			WHERE idempotency_key = $1
		)`

	var exists bool
	err := p.db.QueryRowContext(ctx, query, key).Scan(&exists)
	if err != nil {
		seg.Close(err)
		return false, fmt.Errorf("failed to check processed set: %w", err)
	}

	return exists, nil
}

// Mark は指定キーを処理済みとして記録します
// 既に記録済みの場合は何もしません
func (p *PostgresProcessedSet) Mark(ctx context.Context, key string) error {
	ctx, seg := xray.BeginSubsegment(ctx, "ProcessedSet.Mark")
	defer seg.Close(nil)

	query := `
		INSERT INTO processed_reservations (idempotency_key, processed_at)
		VALUES ($1, $2)
		ON CONFLICT (idempotency_key) DO NOTHING`

	_, err := p.db.ExecContext(ctx, query, key, time.Now())
	if err != nil {
		seg.Close(err)
		return fmt.Errorf("failed to mark processed: %w", err)
	}

	return nil
}
