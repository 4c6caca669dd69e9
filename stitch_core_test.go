package edgar

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type testFactSpec struct {
	concept string
	value   float64
}

// newTestXBRLView builds a minimal synthetic single-filing XBRL view: one
// duration context plus the dei entity facts the PeriodOptimizer and
// concept integration key off, and one financial fact per spec sharing
// that context's period.
func newTestXBRLView(accession, formType, filingDate, fiscalYear, fiscalPeriod, periodStart, periodEnd string, specs []testFactSpec) *XBRLView {
	period := Period{StartDate: periodStart, EndDate: periodEnd}

	var facts []Fact
	facts = append(facts,
		Fact{Concept: "dei:EntityRegistrantName", Value: "Test Co"},
		Fact{Concept: "dei:EntityCentralIndexKey", Value: "0000000001"},
		Fact{Concept: "dei:DocumentType", Value: formType},
		Fact{Concept: "dei:DocumentPeriodEndDate", Value: periodEnd},
		Fact{Concept: "dei:DocumentFiscalYearFocus", Value: fiscalYear},
		Fact{Concept: "dei:DocumentFiscalPeriodFocus", Value: fiscalPeriod},
	)

	for _, spec := range specs {
		v := spec.value
		facts = append(facts, Fact{
			Concept:       spec.concept,
			Value:         strconv.FormatFloat(v, 'f', -1, 64),
			ContextRef:    "c1",
			Period:        &period,
			NumericValue:  &v,
			StandardLabel: GetStandardizedLabel(spec.concept),
		})
	}

	x := &XBRL{
		Contexts: []Context{{ID: "c1", Period: period}},
		Facts:    facts,
	}

	return NewXBRLView(x, accession, formType, filingDate)
}

func TestFromFilings_FiltersAmendments(t *testing.T) {
	original := newTestXBRLView("0001-24-000001", "10-K", "2024-03-01", "2024", "FY", "2023-01-01", "2023-12-31",
		[]testFactSpec{{"us-gaap:Revenues", 100}})
	amendment := newTestXBRLView("0001-24-000002", "10-K/A", "2024-04-01", "2024", "FY", "2023-01-01", "2023-12-31",
		[]testFactSpec{{"us-gaap:Revenues", 105}})

	xbrls := FromFilings([]*XBRLView{amendment, original}, true)
	require.Len(t, xbrls.views, 1)
	require.Equal(t, "10-K", xbrls.views[0].FormType)
}

func TestFromFilings_PreservesNilPlaceholders(t *testing.T) {
	v := newTestXBRLView("0001-24-000001", "10-K", "2024-03-01", "2024", "FY", "2023-01-01", "2023-12-31",
		[]testFactSpec{{"us-gaap:Revenues", 100}})

	xbrls := FromFilings([]*XBRLView{v, nil}, false)
	require.Len(t, xbrls.views, 2)
	require.Nil(t, xbrls.views[1])
}

func TestGetStatement_Idempotent(t *testing.T) {
	v1 := newTestXBRLView("0001-24-000002", "10-K", "2025-03-01", "2025", "FY", "2024-01-01", "2024-12-31",
		[]testFactSpec{{"us-gaap:Revenues", 200}, {"us-gaap:NetIncomeLoss", 20}})
	v2 := newTestXBRLView("0001-24-000001", "10-K", "2024-03-01", "2024", "FY", "2023-01-01", "2023-12-31",
		[]testFactSpec{{"us-gaap:Revenues", 100}, {"us-gaap:NetIncomeLoss", 10}})

	xbrls := FromFilings([]*XBRLView{v1, v2}, true)

	first, err := xbrls.GetStatement(IncomeStatement, 8, true, true, false)
	require.NoError(t, err)
	second, err := xbrls.GetStatement(IncomeStatement, 8, true, true, false)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("GetStatement is not idempotent across identical calls (-first +second):\n%s", diff)
	}

	require.NotEmpty(t, first.Periods)
	require.NotEmpty(t, first.StatementData)
}

func TestStitch_PeriodsHaveNoDuplicates(t *testing.T) {
	v := newTestXBRLView("0001-24-000001", "10-K", "2024-03-01", "2024", "FY", "2023-01-01", "2023-12-31",
		[]testFactSpec{{"us-gaap:Revenues", 100}})

	xbrls := FromFilings([]*XBRLView{v}, true)
	stmt, err := xbrls.GetStatement(IncomeStatement, 8, true, true, false)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, p := range stmt.Periods {
		require.False(t, seen[p.PeriodKey], "duplicate period key %q", p.PeriodKey)
		seen[p.PeriodKey] = true
	}
}

func TestStitch_StandardizesConcepts(t *testing.T) {
	v := newTestXBRLView("0001-24-000001", "10-K", "2024-03-01", "2024", "FY", "2023-01-01", "2023-12-31",
		[]testFactSpec{{"us-gaap:Revenues", 100}, {"us-gaap:NetIncomeLoss", 10}})

	xbrls := FromFilings([]*XBRLView{v}, true)
	stmt, err := xbrls.GetStatement(IncomeStatement, 8, true, true, false)
	require.NoError(t, err)
	require.NotEmpty(t, stmt.StatementData)

	var revenueRow *StitchedLineItem
	for i := range stmt.StatementData {
		if stmt.StatementData[i].Concept == "us-gaap:Revenues" {
			revenueRow = &stmt.StatementData[i]
		}
	}
	require.NotNil(t, revenueRow, "revenue line item must be present")
	require.True(t, revenueRow.HasValues)
}
