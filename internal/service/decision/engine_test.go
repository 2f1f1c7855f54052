package decision

import (
	"math"
	"testing"
)

func defaultEngine() *Engine {
	return NewEngine(Config{
		MinEdge:       0.15,
		MinOdds:       1.60,
		KellyFraction: 0.25,
		MaxStakePct:   0.05,
	})
}

func TestDecide(t *testing.T) {
	e := defaultEngine()

	cases := []struct {
		name     string
		p        float64
		odds     float64
		wantEdge float64
		eligible bool
	}{
		{"clear value", 0.70, 1.85, 0.70 - 1/1.85, true},
		{"edge below threshold", 0.55, 1.80, 0.55 - 1/1.80, false},
		{"odds below threshold", 0.80, 1.55, 0.80 - 1/1.55, false},
		{"odds exactly at threshold", 0.80, 1.60, 0.80 - 1/1.60, false},
		{"edge exactly at threshold", 0.65, 2.00, 0.15, false},
		{"unquoted side", 0.70, 1.00, -0.30, false},
		{"negative edge", 0.40, 1.90, 0.40 - 1/1.90, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			edge, ok := e.Decide(tc.p, tc.odds)
			if math.Abs(edge-tc.wantEdge) > 1e-12 {
				t.Fatalf("edge = %v, want %v", edge, tc.wantEdge)
			}
			if ok != tc.eligible {
				t.Fatalf("eligible = %v, want %v", ok, tc.eligible)
			}
		})
	}
}

func TestSizeStakeCapApplies(t *testing.T) {
	e := defaultEngine()

	// p=0.70 at 1.85: b=0.85, f* = (0.70*0.85 - 0.30)/0.85 ≈ 0.3471.
	// Quarter Kelly on 10000 ≈ 868, above the 5% cap of 500.
	got := e.SizeStake(0.70, 1.85, 10000)
	if got != 500 {
		t.Fatalf("stake = %v, want 500 (capped)", got)
	}
}

func TestSizeStakeUnderCap(t *testing.T) {
	e := defaultEngine()

	// p=0.60 at 2.10: b=1.10, f* = (0.66-0.40)/1.10 ≈ 0.23636.
	// Quarter Kelly on 10000 ≈ 590.9, above cap -> 500. Use a smaller edge:
	// p=0.55 at 2.00: b=1, f* = 0.55-0.45 = 0.10; quarter Kelly = 250.
	got := e.SizeStake(0.55, 2.00, 10000)
	if math.Abs(got-250) > 1e-9 {
		t.Fatalf("stake = %v, want 250", got)
	}
}

func TestSizeStakeNonPositiveKelly(t *testing.T) {
	e := defaultEngine()

	if got := e.SizeStake(0.40, 1.50, 10000); got != 0 {
		t.Fatalf("negative-Kelly stake = %v, want 0", got)
	}
	if got := e.SizeStake(0.50, 2.00, 10000); got != 0 {
		t.Fatalf("zero-Kelly stake = %v, want 0", got)
	}
	if got := e.SizeStake(0.70, 1.00, 10000); got != 0 {
		t.Fatalf("no-payout stake = %v, want 0", got)
	}
}

func TestSizeStakeNonFiniteInputs(t *testing.T) {
	e := defaultEngine()

	if got := e.SizeStake(math.NaN(), 1.85, 10000); got != 0 {
		t.Fatalf("NaN probability stake = %v, want 0", got)
	}
	if got := e.SizeStake(0.70, math.Inf(1), 10000); got != 0 {
		t.Fatalf("infinite odds stake = %v, want 0", got)
	}
}

func TestBuildProposalPicksEligibleSide(t *testing.T) {
	e := defaultEngine()

	p := e.BuildProposal("pred-1", "2025-10-22", "Boston Celtics", "New York Knicks",
		0.70, 1.85, 2.10, 10000)
	if p == nil {
		t.Fatal("expected a proposal")
	}
	if p.Selection != "Boston Celtics" {
		t.Fatalf("selection = %q, want home side", p.Selection)
	}
	if p.Match != "Boston Celtics:New York Knicks" {
		t.Fatalf("match = %q", p.Match)
	}
	if got := p.Stake.InexactFloat64(); got != 500 {
		t.Fatalf("stake = %v, want 500", got)
	}
	if p.Status != "PENDING" {
		t.Fatalf("status = %q", p.Status)
	}
}

func TestBuildProposalHigherEdgeWinsConflict(t *testing.T) {
	// Permissive thresholds so both sides qualify; the away side carries
	// the larger edge and must win.
	e := NewEngine(Config{MinEdge: 0.01, MinOdds: 1.01, KellyFraction: 0.25, MaxStakePct: 0.05})

	p := e.BuildProposal("pred-1", "2025-10-22", "Boston Celtics", "New York Knicks",
		0.52, 2.10, 2.30, 10000)
	if p == nil {
		t.Fatal("expected a proposal")
	}
	homeEdge := 0.52 - 1/2.10
	awayEdge := 0.48 - 1/2.30
	if awayEdge <= homeEdge {
		t.Fatalf("test setup wrong: away edge %v <= home edge %v", awayEdge, homeEdge)
	}
	if p.Selection != "New York Knicks" {
		t.Fatalf("selection = %q, want away side", p.Selection)
	}
}

func TestBuildProposalNoneEligible(t *testing.T) {
	e := defaultEngine()

	if p := e.BuildProposal("pred-1", "2025-10-22", "A", "B", 0.55, 1.80, 2.20, 10000); p != nil {
		t.Fatalf("expected nil proposal, got %+v", p)
	}
}
