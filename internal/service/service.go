// Package service implements the calling coach's session lifecycle, webhook
// dispatch and scoring pipeline on top of the repository.
package service

import (
	"log"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/config"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/metrics"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/prompt"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/repository"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/scoring"
	"github.com/maddoxeriksen-12/Calling-Coach/policy"
)

type Service struct {
	store        repository.Store
	builder      prompt.Builder
	evaluator    scoring.Evaluator
	config       *config.Config
	policyEngine *policy.Engine
	metrics      *metrics.Metrics

	sessionLocks *sessionLocks
	scoring      singleflight.Group
}

func New(store repository.Store, builder prompt.Builder, evaluator scoring.Evaluator, cfg *config.Config, policyEngine *policy.Engine, m *metrics.Metrics) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Service{
		store:        store,
		builder:      builder,
		evaluator:    evaluator,
		config:       cfg,
		policyEngine: policyEngine,
		metrics:      m,
		sessionLocks: newSessionLocks(),
	}
}

func (s *Service) debugf(format string, args ...interface{}) {
	if strings.EqualFold(s.config.LogLevel, "debug") {
		log.Printf("DEBUG: "+format, args...)
	}
}
