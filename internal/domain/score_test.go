package domain

import "testing"

func TestReconcileRecomputesTotal(t *testing.T) {
	t.Parallel()

	s := ScoreResult{
		PainIntensity:     25,
		Urgency:           20,
		CommercialContext: 20,
		DecisionMaker:     15,
		AnthromindFit:     20,
		TotalScore:        0,
	}
	s.Reconcile()

	if s.TotalScore != 100 {
		t.Fatalf("expected recomputed total 100, got %d", s.TotalScore)
	}
}

func TestReconcileClampsDimensions(t *testing.T) {
	t.Parallel()

	s := ScoreResult{
		PainIntensity:     99,
		Urgency:           -4,
		CommercialContext: 21,
		DecisionMaker:     15,
		AnthromindFit:     3,
		TotalScore:        500,
	}
	s.Reconcile()

	if s.PainIntensity != 25 {
		t.Fatalf("pain_intensity not clamped: %d", s.PainIntensity)
	}
	if s.Urgency != 0 {
		t.Fatalf("urgency not clamped: %d", s.Urgency)
	}
	if s.CommercialContext != 20 {
		t.Fatalf("commercial_context not clamped: %d", s.CommercialContext)
	}
	if s.TotalScore != 25+0+20+15+3 {
		t.Fatalf("unexpected total: %d", s.TotalScore)
	}
}

func TestDegradedScore(t *testing.T) {
	t.Parallel()

	s := DegradedScore("no API key")
	if !s.Degraded {
		t.Fatal("expected degraded flag")
	}
	if s.TotalScore != 0 || s.PainIntensity != 0 {
		t.Fatalf("degraded score must be all-zero: %+v", s)
	}
	if s.Reasoning != "no API key" {
		t.Fatalf("unexpected reasoning: %s", s.Reasoning)
	}
}
