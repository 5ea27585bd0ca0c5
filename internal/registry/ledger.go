package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerAggregate is the per-member roll-up of completed transactions.
// Every field defaults to zero when the member has no ledger entries.
type LedgerAggregate struct {
	Count      int64           `json:"count"`
	Sum        decimal.Decimal `json:"sum"`
	Commission decimal.Decimal `json:"commission"`
	TodaySum   decimal.Decimal `json:"todaySum"`
	MonthSum   decimal.Decimal `json:"monthSum"`
}

// Ledger aggregates monetary events per member.
type Ledger interface {
	AggregateFor(ctx context.Context, memberID string) (LedgerAggregate, error)
}

type GormLedger struct {
	db    *gorm.DB
	nowFn func() time.Time
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db, nowFn: time.Now}
}

func (l *GormLedger) AggregateFor(ctx context.Context, memberID string) (LedgerAggregate, error) {
	agg := zeroAggregate()

	var totals struct {
		Count      int64
		Sum        decimal.Decimal
		Commission decimal.Decimal
	}
	err := l.db.WithContext(ctx).
		Table("transactions").
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS sum, COALESCE(SUM(commission), 0) AS commission").
		Where("member_id = ? AND status = ?", memberID, "completed").
		Scan(&totals).Error
	if err != nil {
		return zeroAggregate(), fmt.Errorf("aggregate transactions for %s: %w", memberID, err)
	}
	agg.Count = totals.Count
	agg.Sum = totals.Sum
	agg.Commission = totals.Commission

	now := l.nowFn()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	todaySum, err := l.sumSince(ctx, memberID, dayStart)
	if err != nil {
		return zeroAggregate(), err
	}
	monthSum, err := l.sumSince(ctx, memberID, monthStart)
	if err != nil {
		return zeroAggregate(), err
	}
	agg.TodaySum = todaySum
	agg.MonthSum = monthSum

	return agg, nil
}

func (l *GormLedger) sumSince(ctx context.Context, memberID string, since time.Time) (decimal.Decimal, error) {
	var row struct {
		Sum decimal.Decimal
	}
	err := l.db.WithContext(ctx).
		Table("transactions").
		Select("COALESCE(SUM(amount), 0) AS sum").
		Where("member_id = ? AND status = ? AND created_at >= ?", memberID, "completed", since).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum transactions for %s since %s: %w", memberID, since.Format(time.RFC3339), err)
	}
	return row.Sum, nil
}

func zeroAggregate() LedgerAggregate {
	return LedgerAggregate{
		Sum:        decimal.Zero,
		Commission: decimal.Zero,
		TodaySum:   decimal.Zero,
		MonthSum:   decimal.Zero,
	}
}
