package edgar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func quarterlyFacts(values [4]float64, ends [4]string) []FinancialFact {
	out := make([]FinancialFact, 4)
	for i := range values {
		out[i] = FinancialFact{
			Concept:      "us-gaap:Revenues",
			NumericValue: numPtr(values[i]),
			PeriodEnd:    ends[i],
			FiscalPeriod: "Q" + string(rune('1'+i)),
		}
	}
	return out
}

func TestCalculateTTM_RollingSum(t *testing.T) {
	facts := quarterlyFacts(
		[4]float64{100, 110, 120, 130},
		[4]string{"2024-03-31", "2024-06-30", "2024-09-30", "2024-12-31"},
	)

	metric, err := CalculateTTM(facts, "")
	require.NoError(t, err)
	require.InDelta(t, 460.0, metric.Value, 1e-9)
	require.False(t, metric.HasGaps)
	require.Equal(t, "2024-12-31", metric.AsOf)
}

func TestCalculateTTM_InsufficientQuarters(t *testing.T) {
	facts := []FinancialFact{
		{Concept: "us-gaap:Revenues", NumericValue: numPtr(100), PeriodEnd: "2024-03-31"},
	}
	_, err := CalculateTTM(facts, "")
	require.Error(t, err)
	var notFound *NoCompanyFactsFound
	require.ErrorAs(t, err, &notFound)
}

func TestCalculateTTM_DetectsGap(t *testing.T) {
	facts := quarterlyFacts(
		[4]float64{100, 110, 120, 130},
		[4]string{"2023-06-30", "2024-06-30", "2024-09-30", "2024-12-31"}, // missing quarter -> large gap
	)
	metric, err := CalculateTTM(facts, "")
	require.NoError(t, err)
	require.True(t, metric.HasGaps)
}

func TestCalculateTTMTrend_NewestFirst(t *testing.T) {
	facts := []FinancialFact{
		{Concept: "us-gaap:Revenues", NumericValue: numPtr(100), PeriodEnd: "2024-03-31"},
		{Concept: "us-gaap:Revenues", NumericValue: numPtr(110), PeriodEnd: "2024-06-30"},
		{Concept: "us-gaap:Revenues", NumericValue: numPtr(120), PeriodEnd: "2024-09-30"},
		{Concept: "us-gaap:Revenues", NumericValue: numPtr(130), PeriodEnd: "2024-12-31"},
		{Concept: "us-gaap:Revenues", NumericValue: numPtr(140), PeriodEnd: "2025-03-31"},
	}

	trend, err := CalculateTTMTrend(facts, 0)
	require.NoError(t, err)
	require.Len(t, trend, 2)
	// Newest-first: most recent TTM window first.
	require.Equal(t, "2025-03-31", trend[0].AsOfQuarter)
	require.InDelta(t, 500.0, trend[0].TTMValue, 1e-9) // 110+120+130+140
	require.Equal(t, "2024-12-31", trend[1].AsOfQuarter)
	require.InDelta(t, 460.0, trend[1].TTMValue, 1e-9)
}

func TestCalculateEPSTTM(t *testing.T) {
	netIncome := quarterlyFacts(
		[4]float64{10, 11, 12, 13},
		[4]string{"2024-03-31", "2024-06-30", "2024-09-30", "2024-12-31"},
	)
	shares := []FinancialFact{
		{Concept: "us-gaap:WeightedAverageNumberOfSharesOutstandingBasic", NumericValue: numPtr(100), PeriodEnd: "2024-03-31"},
		{Concept: "us-gaap:WeightedAverageNumberOfSharesOutstandingBasic", NumericValue: numPtr(100), PeriodEnd: "2024-06-30"},
		{Concept: "us-gaap:WeightedAverageNumberOfSharesOutstandingBasic", NumericValue: numPtr(100), PeriodEnd: "2024-09-30"},
		{Concept: "us-gaap:WeightedAverageNumberOfSharesOutstandingBasic", NumericValue: numPtr(100), PeriodEnd: "2024-12-31"},
	}

	metric, err := CalculateEPSTTM(netIncome, shares, "")
	require.NoError(t, err)
	require.InDelta(t, 0.46, metric.Value, 1e-9) // 46 / 100
}
