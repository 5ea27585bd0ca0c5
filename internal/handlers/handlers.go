package handlers

import (
	"log/slog"

	"gorm.io/gorm"

	"mulmarket/internal/cache"
	"mulmarket/internal/config"
	"mulmarket/internal/referral"
	"mulmarket/internal/registry"
)

type Handlers struct {
	db         *gorm.DB
	config     *config.Config
	logger     *slog.Logger
	members    registry.MemberRegistry
	ledger     registry.Ledger
	trees      *referral.TreeBuilder
	aggregator *referral.Aggregator
	earnings   *cache.EarningsCache
}

func New(
	db *gorm.DB,
	cfg *config.Config,
	logger *slog.Logger,
	members registry.MemberRegistry,
	ledger registry.Ledger,
	trees *referral.TreeBuilder,
	aggregator *referral.Aggregator,
	earnings *cache.EarningsCache,
) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		db:         db,
		config:     cfg,
		logger:     logger,
		members:    members,
		ledger:     ledger,
		trees:      trees,
		aggregator: aggregator,
		earnings:   earnings,
	}
}
