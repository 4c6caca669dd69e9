package edgar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestQuarterizeConcept_S1 is SPEC_FULL §8 scenario S1: Q1=100, YTD_6M=210,
// YTD_9M=330, FY=460 quarterize to Q1=100, Q2=110, Q3=120, Q4=130.
func TestQuarterizeConcept_S1(t *testing.T) {
	facts := []FinancialFact{
		{Concept: "us-gaap:Revenues", NumericValue: numPtr(100), FiscalYear: "2024", FiscalPeriod: "Q1", PeriodStart: "2024-01-01", PeriodEnd: "2024-03-31"},
		{Concept: "us-gaap:Revenues", NumericValue: numPtr(210), FiscalYear: "2024", FiscalPeriod: "YTD_6M", PeriodStart: "2024-01-01", PeriodEnd: "2024-06-30"},
		{Concept: "us-gaap:Revenues", NumericValue: numPtr(330), FiscalYear: "2024", FiscalPeriod: "YTD_9M", PeriodStart: "2024-01-01", PeriodEnd: "2024-09-30"},
		{Concept: "us-gaap:Revenues", NumericValue: numPtr(460), FiscalYear: "2024", FiscalPeriod: "FY", PeriodStart: "2024-01-01", PeriodEnd: "2024-12-31"},
	}

	out := QuarterizeConcept(facts)
	require.Len(t, out, 4)

	byPeriod := map[string]float64{}
	for _, f := range out {
		require.NotNil(t, f.NumericValue)
		byPeriod[f.FiscalPeriod] = *f.NumericValue
	}

	require.InDelta(t, 100.0, byPeriod["Q1"], 1e-9)
	require.InDelta(t, 110.0, byPeriod["Q2"], 1e-9)
	require.InDelta(t, 120.0, byPeriod["Q3"], 1e-9)
	require.InDelta(t, 130.0, byPeriod["Q4"], 1e-9)

	// TTM at FY-end should be the full-year total, per S1.
	ttm, err := CalculateTTM(out, "2024-12-31")
	require.NoError(t, err)
	require.InDelta(t, 460.0, ttm.Value, 1e-9)
}

// TestQuarterizeConcept_RoundTrip is the §8 universal invariant: facts
// already carrying discrete Q1-Q4 (no YTD/FY tags) pass through unchanged.
func TestQuarterizeConcept_RoundTrip(t *testing.T) {
	facts := []FinancialFact{
		{Concept: "us-gaap:Revenues", NumericValue: numPtr(100), FiscalYear: "2024", FiscalPeriod: "Q1", PeriodEnd: "2024-03-31"},
		{Concept: "us-gaap:Revenues", NumericValue: numPtr(110), FiscalYear: "2024", FiscalPeriod: "Q2", PeriodEnd: "2024-06-30"},
		{Concept: "us-gaap:Revenues", NumericValue: numPtr(120), FiscalYear: "2024", FiscalPeriod: "Q3", PeriodEnd: "2024-09-30"},
		{Concept: "us-gaap:Revenues", NumericValue: numPtr(130), FiscalYear: "2024", FiscalPeriod: "Q4", PeriodEnd: "2024-12-31"},
	}

	out := QuarterizeConcept(facts)
	require.Len(t, out, 4)
	for i, f := range facts {
		require.Equal(t, f.FiscalPeriod, out[i].FiscalPeriod)
		require.Equal(t, f.NumericValue, out[i].NumericValue)
	}
}

func TestDeriveEPSFacts(t *testing.T) {
	facts := []FinancialFact{
		{Concept: "us-gaap:NetIncomeLoss", NumericValue: numPtr(100), FiscalYear: "2024", FiscalPeriod: "Q1", PeriodEnd: "2024-03-31"},
		{Concept: "us-gaap:NetIncomeLoss", NumericValue: numPtr(210), FiscalYear: "2024", FiscalPeriod: "YTD_6M", PeriodEnd: "2024-06-30"},
		{Concept: "us-gaap:WeightedAverageNumberOfSharesOutstandingBasic", NumericValue: numPtr(50), FiscalYear: "2024", FiscalPeriod: "Q1"},
		{Concept: "us-gaap:WeightedAverageNumberOfSharesOutstandingBasic", NumericValue: numPtr(55), FiscalYear: "2024", FiscalPeriod: "Q2"},
	}

	derived := DeriveEPSFacts(facts)
	require.NotEmpty(t, derived)
	for _, f := range derived {
		require.Equal(t, "us-gaap:EarningsPerShareBasic", f.Concept)
		require.NotNil(t, f.NumericValue)
		require.Contains(t, f.CalculationContext, "derived_eps_basic_")
	}
}
