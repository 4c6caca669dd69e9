package edgar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func numPtr(v float64) *float64 { return &v }

// TestApplySplitAdjustments_S2 is SPEC_FULL §8 scenario S2: EPS basic 10.0
// for FY2023 plus a 2024-01-01 2-for-1 split halves the EPS and doubles
// the share count.
func TestApplySplitAdjustments_S2(t *testing.T) {
	facts := []FinancialFact{
		{
			Concept:      "us-gaap:EarningsPerShareBasic",
			Unit:         "USD/shares",
			NumericValue: numPtr(10.0),
			PeriodStart:  "2023-01-01",
			PeriodEnd:    "2023-12-31",
			FiscalYear:   "2023",
			FiscalPeriod: "FY",
		},
		{
			Concept:      "us-gaap:WeightedAverageNumberOfSharesOutstandingBasic",
			Unit:         "shares",
			NumericValue: numPtr(100),
			PeriodStart:  "2023-01-01",
			PeriodEnd:    "2023-12-31",
			FiscalYear:   "2023",
			FiscalPeriod: "FY",
		},
	}
	splitDate, err := time.Parse("2006-01-02", "2024-01-01")
	require.NoError(t, err)
	splits := []Split{{Date: splitDate, Ratio: 2.0}}

	adjusted := ApplySplitAdjustments(facts, splits)
	require.Len(t, adjusted, 2)

	require.NotNil(t, adjusted[0].NumericValue)
	require.InDelta(t, 5.0, *adjusted[0].NumericValue, 1e-9)
	require.Contains(t, adjusted[0].CalculationContext, "ratio_2.00")

	require.NotNil(t, adjusted[1].NumericValue)
	require.InDelta(t, 200.0, *adjusted[1].NumericValue, 1e-9)
}

// TestApplySplitAdjustments_RoundTrip is the §8 universal invariant: with
// no splits, every fact's numeric_value is preserved exactly.
func TestApplySplitAdjustments_RoundTrip(t *testing.T) {
	facts := []FinancialFact{
		{Concept: "us-gaap:EarningsPerShareBasic", Unit: "USD/shares", NumericValue: numPtr(3.21), PeriodEnd: "2023-12-31"},
		{Concept: "us-gaap:Revenues", Unit: "USD", NumericValue: numPtr(1000), PeriodEnd: "2023-12-31"},
	}

	out := ApplySplitAdjustments(facts, nil)
	require.Len(t, out, len(facts))
	for i := range facts {
		require.Equal(t, facts[i].NumericValue, out[i].NumericValue)
		require.Equal(t, facts[i].CalculationContext, out[i].CalculationContext)
	}
}

// TestDetectSplits_S3 is scenario S3: a StockSplitConversionRatio fact
// filed 2024-07-01 for a period ending 2020-01-31 is a stale historical
// echo (lag far beyond maxSplitLagDays) and must be rejected.
func TestDetectSplits_S3(t *testing.T) {
	facts := []FinancialFact{
		{
			Concept:      "us-gaap:StockSplitConversionRatio",
			NumericValue: numPtr(2.0),
			PeriodStart:  "2020-01-01",
			PeriodEnd:    "2020-01-31",
			FilingDate:   "2024-07-01",
		},
	}

	splits := DetectSplits(facts)
	require.Empty(t, splits)
}

func TestDetectSplits_AcceptsFreshSplit(t *testing.T) {
	facts := []FinancialFact{
		{
			Concept:      "us-gaap:StockSplitConversionRatio",
			NumericValue: numPtr(4.0),
			PeriodStart:  "2024-06-01",
			PeriodEnd:    "2024-06-15",
			FilingDate:   "2024-06-20",
		},
	}

	splits := DetectSplits(facts)
	require.Len(t, splits, 1)
	require.InDelta(t, 4.0, splits[0].Ratio, 1e-9)
}

func TestDetectSplits_RejectsLongDurationAggregate(t *testing.T) {
	facts := []FinancialFact{
		{
			Concept:      "us-gaap:StockSplitConversionRatio",
			NumericValue: numPtr(3.0),
			PeriodStart:  "2024-01-01",
			PeriodEnd:    "2024-09-30", // > maxSplitDurationDays
			FilingDate:   "2024-10-01",
		},
	}

	splits := DetectSplits(facts)
	require.Empty(t, splits)
}
