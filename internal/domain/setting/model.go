package setting

import (
	"github.com/riskibarqy/poule-scoring/internal/domain/scoring"
	"github.com/riskibarqy/poule-scoring/internal/domain/tournament"
)

const (
	KeyTournamentResult    = "wk_results"
	KeyDefaultScoringRules = "default_scoring_rules"
)

// Snapshot is the global configuration read once at the start of a scoring run.
type Snapshot struct {
	DefaultRules scoring.RulesOverride
	Result       tournament.Result
}
