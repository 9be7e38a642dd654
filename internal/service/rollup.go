package service

import (
	"context"

	"github.com/xolan/logpost/internal/rollup"
)

// RollupService runs the daily rollup on demand
type RollupService struct {
	orchestrator *rollup.Orchestrator
}

// NewRollupService creates a new RollupService
func NewRollupService(o *rollup.Orchestrator) *RollupService {
	return &RollupService{orchestrator: o}
}

// Run publishes today's summary and clears the posted entries
func (s *RollupService) Run(ctx context.Context) (*rollup.Report, error) {
	return s.orchestrator.Run(ctx)
}

// Preview composes today's summary without publishing it
func (s *RollupService) Preview(ctx context.Context) (*rollup.Report, error) {
	return s.orchestrator.Preview(ctx)
}
