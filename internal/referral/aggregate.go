package referral

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"mulmarket/internal/models"
	"mulmarket/internal/registry"
)

// Display fallbacks. These values are part of the API contract, not
// accidental defaults.
const (
	FallbackName       = "N/A"
	FallbackEmail      = "No email"
	FallbackMemberDate = "Unknown Date"
	FallbackMemberType = "Unknown"
)

// countedTiers are the membership tiers tracked in per-tier referral counts.
// Unrecognized tiers are not counted but never error.
var countedTiers = []string{models.TierX1, models.TierX2, models.TierX3, models.TierX5}

// Summary is one enriched referral row for the "view my referrals" listing.
type Summary struct {
	FirstName        string          `json:"firstName"`
	LastName         string          `json:"lastName"`
	Email            string          `json:"email"`
	MemberDate       string          `json:"memberDate"`
	MemberType       string          `json:"memberType"`
	TransactionCount int64           `json:"transactionCount"`
	TotalEarnings    decimal.Decimal `json:"totalEarnings"`
	Commission       decimal.Decimal `json:"commission"`
}

// ListResult carries the enriched referral summaries plus per-tier counts.
type ListResult struct {
	Counts    map[string]int `json:"referralCounts"`
	Referrals []Summary      `json:"data"`
}

// Aggregator computes roll-up statistics from the ledger for flat member
// lists and for built trees.
type Aggregator struct {
	ledger registry.Ledger
	logger *slog.Logger
}

func NewAggregator(ledger registry.Ledger, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{ledger: ledger, logger: logger}
}

// CombinedEarnings is the wallet display value computed at the tree root:
// direct referral earnings plus the member's own commission. It is
// recomputed on every fetch and must never be trusted from a cached copy
// for financial decisions.
func CombinedEarnings(root *Node) decimal.Decimal {
	if root == nil {
		return decimal.Zero
	}
	return root.Statistics.DirectReferralEarnings.Add(root.Statistics.Commission)
}

// AggregateAcrossList enriches each member with ledger statistics and counts
// referrals per recognized tier. A failed ledger lookup is isolated: that
// member's statistics default to zero and the aggregation continues.
func (a *Aggregator) AggregateAcrossList(ctx context.Context, members []models.Member) (*ListResult, error) {
	result := &ListResult{
		Counts:    make(map[string]int, len(countedTiers)),
		Referrals: make([]Summary, 0, len(members)),
	}
	for _, tier := range countedTiers {
		result.Counts[tier] = 0
	}

	for i := range members {
		member := &members[i]

		for _, tier := range countedTiers {
			if member.MemberType == tier {
				result.Counts[tier]++
				break
			}
		}

		summary := Summary{
			FirstName:     fallback(member.FirstName, FallbackName),
			LastName:      fallback(member.LastName, FallbackName),
			Email:         fallback(member.Email, FallbackEmail),
			MemberDate:    formatMemberDate(member.MemberDate),
			MemberType:    fallback(member.MemberType, FallbackMemberType),
			TotalEarnings: decimal.Zero,
			Commission:    decimal.Zero,
		}

		agg, err := a.ledger.AggregateFor(ctx, member.ID)
		if err != nil {
			a.logger.Warn("ledger lookup failed, defaulting referral statistics to zero",
				"member_id", member.ID, "error", err)
		} else {
			summary.TransactionCount = agg.Count
			summary.TotalEarnings = agg.Sum
			summary.Commission = agg.Commission
		}

		result.Referrals = append(result.Referrals, summary)
	}

	return result, nil
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
