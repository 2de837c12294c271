package domain

// Maximum value of each scoring dimension.
const (
	MaxPainIntensity     = 25
	MaxUrgency           = 20
	MaxCommercialContext = 20
	MaxDecisionMaker     = 15
	MaxAnthromindFit     = 20
)

// ScoreResult is the rubric's verdict on a Signal.
//
// Degraded marks an evaluator-side failure (missing credential, transport
// error, unparseable response). A degraded result carries all-zero scores and
// a Reasoning describing the cause, so callers can tell it apart from a
// legitimately low score.
type ScoreResult struct {
	PainIntensity     int    `json:"pain_intensity"`
	Urgency           int    `json:"urgency"`
	CommercialContext int    `json:"commercial_context"`
	DecisionMaker     int    `json:"decision_maker"`
	AnthromindFit     int    `json:"anthromind_fit"`
	TotalScore        int    `json:"total_score"`
	Category          string `json:"category"`
	Reasoning         string `json:"reasoning"`
	SuggestedHook     string `json:"suggested_hook"`
	Degraded          bool   `json:"-"`
}

// DegradedScore builds the all-zero result produced when the evaluator
// cannot be consulted.
func DegradedScore(reason string) ScoreResult {
	return ScoreResult{Reasoning: reason, Degraded: true}
}

// Reconcile clamps every dimension into its [0, max] range and recomputes
// TotalScore as the sum of the clamped dimensions. The evaluator's
// self-reported total is never trusted.
func (s *ScoreResult) Reconcile() {
	s.PainIntensity = clamp(s.PainIntensity, MaxPainIntensity)
	s.Urgency = clamp(s.Urgency, MaxUrgency)
	s.CommercialContext = clamp(s.CommercialContext, MaxCommercialContext)
	s.DecisionMaker = clamp(s.DecisionMaker, MaxDecisionMaker)
	s.AnthromindFit = clamp(s.AnthromindFit, MaxAnthromindFit)

	s.TotalScore = s.PainIntensity + s.Urgency + s.CommercialContext +
		s.DecisionMaker + s.AnthromindFit
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
