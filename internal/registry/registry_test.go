package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"mulmarket/internal/database"
	"mulmarket/internal/models"
)

func setupTestDB(t *testing.T) *GormRegistry {
	t.Helper()
	db, err := database.Initialize(":memory:")
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	return NewGormRegistry(db)
}

func seedMember(t *testing.T, r *GormRegistry, id, code, referredBy string, createdAt time.Time) {
	t.Helper()
	joined := createdAt
	m := models.Member{
		ID:           id,
		Email:        id + "@example.com",
		FirstName:    id,
		LastName:     "Test",
		ReferralCode: code,
		ReferredBy:   referredBy,
		MemberType:   models.TierX1,
		MemberDate:   &joined,
		CreatedAt:    createdAt,
	}
	if err := r.db.Create(&m).Error; err != nil {
		t.Fatalf("failed to seed member %s: %v", id, err)
	}
}

func TestFindByIDNotFound(t *testing.T) {
	r := setupTestDB(t)
	if _, err := r.FindByID(context.Background(), "ghost"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestFindByReferralCode(t *testing.T) {
	r := setupTestDB(t)
	base := time.Unix(1_700_000_000, 0)
	seedMember(t, r, "alice", "MULalice", "", base)

	m, err := r.FindByReferralCode(context.Background(), "MULalice")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if m.ID != "alice" {
		t.Fatalf("expected alice, got %s", m.ID)
	}

	if _, err := r.FindByReferralCode(context.Background(), "MULnobody"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestFindChildrenOfInsertionOrder(t *testing.T) {
	r := setupTestDB(t)
	base := time.Unix(1_700_000_000, 0)
	seedMember(t, r, "root", "MULroot", "", base)
	// Inserted out of alphabetical order on purpose.
	seedMember(t, r, "zeta", "MULzeta", "MULroot", base.Add(1*time.Hour))
	seedMember(t, r, "alpha", "MULalpha", "MULroot", base.Add(2*time.Hour))
	seedMember(t, r, "mid", "MULmid", "MULroot", base.Add(3*time.Hour))

	children, err := r.FindChildrenOf(context.Background(), "MULroot")
	if err != nil {
		t.Fatalf("find children failed: %v", err)
	}
	if len(children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(children))
	}
	for i, want := range []string{"zeta", "alpha", "mid"} {
		if children[i].ID != want {
			t.Fatalf("child %d: expected %s, got %s", i, want, children[i].ID)
		}
	}
}

func TestFindChildrenOfEmptyCode(t *testing.T) {
	r := setupTestDB(t)
	base := time.Unix(1_700_000_000, 0)
	seedMember(t, r, "orphan", "MULorphan", "", base)

	children, err := r.FindChildrenOf(context.Background(), "")
	if err != nil {
		t.Fatalf("find children failed: %v", err)
	}
	if children == nil || len(children) != 0 {
		t.Fatalf("empty code must yield an empty slice, got %v", children)
	}
}

func seedTransaction(t *testing.T, db *GormRegistry, memberID string, amount, commission int64, status string, createdAt time.Time) {
	t.Helper()
	tx := models.Transaction{
		MemberID:   memberID,
		OrderID:    "order-" + createdAt.Format("150405"),
		Amount:     decimal.NewFromInt(amount),
		Commission: decimal.NewFromInt(commission),
		Status:     status,
		CreatedAt:  createdAt,
	}
	if err := db.db.Create(&tx).Error; err != nil {
		t.Fatalf("failed to seed transaction: %v", err)
	}
}

func TestAggregateForZeroDefault(t *testing.T) {
	r := setupTestDB(t)
	ledger := NewGormLedger(r.db)

	agg, err := ledger.AggregateFor(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}
	if agg.Count != 0 || !agg.Sum.IsZero() || !agg.Commission.IsZero() {
		t.Fatalf("expected zero aggregate, got %+v", agg)
	}
	if !agg.TodaySum.IsZero() || !agg.MonthSum.IsZero() {
		t.Fatalf("expected zero window sums, got %+v", agg)
	}
}

func TestAggregateForWindows(t *testing.T) {
	r := setupTestDB(t)
	ledger := NewGormLedger(r.db)

	// Fixed clock: mid-month, mid-day.
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	ledger.nowFn = func() time.Time { return now }

	base := time.Unix(1_700_000_000, 0)
	seedMember(t, r, "buyer", "MULbuyer", "", base)

	seedTransaction(t, r, "buyer", 100, 5, models.TransactionCompleted, now.Add(-time.Hour))       // today
	seedTransaction(t, r, "buyer", 200, 10, models.TransactionCompleted, now.AddDate(0, 0, -5))   // this month
	seedTransaction(t, r, "buyer", 400, 20, models.TransactionCompleted, now.AddDate(0, -2, 0))   // older
	seedTransaction(t, r, "buyer", 999, 50, models.TransactionPending, now.Add(-30*time.Minute))  // excluded
	seedTransaction(t, r, "other", 700, 35, models.TransactionCompleted, now.Add(-30*time.Minute)) // other member

	agg, err := ledger.AggregateFor(context.Background(), "buyer")
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}

	if agg.Count != 3 {
		t.Fatalf("expected 3 completed transactions, got %d", agg.Count)
	}
	if !agg.Sum.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("expected sum 700, got %s", agg.Sum)
	}
	if !agg.Commission.Equal(decimal.NewFromInt(35)) {
		t.Fatalf("expected commission 35, got %s", agg.Commission)
	}
	if !agg.TodaySum.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected today sum 100, got %s", agg.TodaySum)
	}
	if !agg.MonthSum.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected month sum 300, got %s", agg.MonthSum)
	}
}
