package referral

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"mulmarket/internal/models"
	"mulmarket/internal/registry"
)

var (
	ErrInvalidDepth   = errors.New("max depth must be at least 1")
	ErrMemberNotFound = registry.ErrMemberNotFound
)

// DefaultMaxDepth matches the seven-layer commission plan. It is a
// traversal-time parameter, not a registry-level constraint.
const DefaultMaxDepth = 7

const memberDateLayout = "Jan 2, 2006"

// UserDetails is the identity slice of a member exposed in tree output.
type UserDetails struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Statistics is the per-node roll-up. All amounts default to zero, never
// absent, so consumers can render them without nil checks.
type Statistics struct {
	DirectReferralEarnings decimal.Decimal `json:"directReferralEarnings"`
	Commission             decimal.Decimal `json:"commission"`
	TotalEarnings          decimal.Decimal `json:"totalEarnings"`
	TransactionCount       int64           `json:"transactionCount"`
}

// Node is one member placed at a specific depth of a specific traversal.
// Nodes are rebuilt on every query and owned exclusively by the call that
// created them.
type Node struct {
	UserDetails UserDetails `json:"userDetails"`
	MemberType  string      `json:"memberType"`
	MemberDate  string      `json:"memberDate"`
	Statistics  Statistics  `json:"statistics"`
	Children    []*Node     `json:"children"`
}

// TreeBuilder resolves referred members level by level up to a fixed depth.
type TreeBuilder struct {
	registry registry.MemberRegistry
	ledger   registry.Ledger
	logger   *slog.Logger
}

func NewTreeBuilder(reg registry.MemberRegistry, ledger registry.Ledger, logger *slog.Logger) *TreeBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &TreeBuilder{registry: reg, ledger: ledger, logger: logger}
}

// BuildTree resolves the root member and expands referrals down to maxDepth
// levels below it. Deeper referrals are simply not expanded. The traversal is
// read-only; cancellation of ctx aborts the build without returning a
// partial tree.
func (b *TreeBuilder) BuildTree(ctx context.Context, rootMemberID string, maxDepth int) (*Node, error) {
	if maxDepth <= 0 {
		return nil, ErrInvalidDepth
	}

	root, err := b.registry.FindByID(ctx, rootMemberID)
	if err != nil {
		return nil, err
	}

	visited := make(map[string]struct{})
	node, err := b.build(ctx, root, 0, maxDepth, visited)
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (b *TreeBuilder) build(ctx context.Context, member *models.Member, depth, maxDepth int, visited map[string]struct{}) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("tree build aborted: %w", err)
	}

	node := b.newNode(ctx, member)

	// Depth bound reached: deeper referrals exist but are not expanded.
	if depth >= maxDepth {
		return node, nil
	}

	// Cycle defense. The registry forbids cycles at write time; if corrupted
	// data reaches us anyway, the repeated branch stops expanding.
	if _, seen := visited[member.ID]; seen {
		b.logger.Warn("referral cycle detected, stopping branch",
			"member_id", member.ID, "referral_code", member.ReferralCode)
		return node, nil
	}
	visited[member.ID] = struct{}{}
	defer delete(visited, member.ID)

	children, err := b.registry.FindChildrenOf(ctx, member.ReferralCode)
	if err != nil {
		return nil, err
	}

	for i := range children {
		childNode, err := b.build(ctx, &children[i], depth+1, maxDepth, visited)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
		node.Statistics.DirectReferralEarnings =
			node.Statistics.DirectReferralEarnings.Add(childNode.Statistics.Commission)
	}

	return node, nil
}

// newNode builds a leaf node for the member with its own ledger statistics.
// A failed ledger lookup degrades this member's statistics to zero instead
// of failing the whole traversal.
func (b *TreeBuilder) newNode(ctx context.Context, member *models.Member) *Node {
	node := &Node{
		UserDetails: UserDetails{
			ID:        member.ID,
			FirstName: member.FirstName,
			LastName:  member.LastName,
			Email:     member.Email,
		},
		MemberType: member.MemberType,
		MemberDate: formatMemberDate(member.MemberDate),
		Statistics: zeroStatistics(),
		Children:   []*Node{},
	}

	agg, err := b.ledger.AggregateFor(ctx, member.ID)
	if err != nil {
		b.logger.Warn("ledger lookup failed, defaulting statistics to zero",
			"member_id", member.ID, "error", err)
		return node
	}
	node.Statistics.Commission = agg.Commission
	node.Statistics.TotalEarnings = agg.Sum
	node.Statistics.TransactionCount = agg.Count
	return node
}

func zeroStatistics() Statistics {
	return Statistics{
		DirectReferralEarnings: decimal.Zero,
		Commission:             decimal.Zero,
		TotalEarnings:          decimal.Zero,
	}
}

func formatMemberDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "Unknown Date"
	}
	return t.Format(memberDateLayout)
}
