package edgar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConceptMappings(t *testing.T) {
	labels := GetAllStandardizedLabels()
	require.NotEmpty(t, labels)

	tests := []struct {
		xbrlConcept   string
		expectedLabel string
	}{
		{"us-gaap:CashAndCashEquivalentsAtCarryingValue", "Cash and Cash Equivalents"},
		{"us-gaap:ResearchAndDevelopmentExpense", "Research and Development Expense"},
		{"us-gaap:GeneralAndAdministrativeExpense", "General and Administrative Expense"},
		{"us-gaap:LongTermDebt", "Long-Term Debt"},
	}

	for _, tt := range tests {
		t.Run(tt.xbrlConcept, func(t *testing.T) {
			require.Equal(t, tt.expectedLabel, GetStandardizedLabel(tt.xbrlConcept))
			require.True(t, HasMapping(tt.xbrlConcept))
		})
	}

	concepts, err := GetConceptsForLabel("Cash and Cash Equivalents")
	require.NoError(t, err)
	require.NotEmpty(t, concepts)

	require.Empty(t, GetStandardizedLabel("us-gaap:ThisDoesNotExist"))

	_, err = GetConceptsForLabel("This Label Does Not Exist")
	require.Error(t, err)
}

func TestConceptMappingCaseInsensitive(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"us-gaap:CashAndCashEquivalentsAtCarryingValue", "Cash and Cash Equivalents"},
		{"US-GAAP:CASHANDCASHEQUIVALENTSATCARRYINGVALUE", "Cash and Cash Equivalents"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, GetStandardizedLabel(tt.input))
		})
	}
}

// TestMapForStatement exercises the statement-scoped lookup the
// StitchedFactQuery standardization path uses: a concept maps only on
// the statement types it's actually meaningful for.
func TestMapForStatement(t *testing.T) {
	label, standardConcept, ok := MapForStatement("BalanceSheet", "us-gaap:CashAndCashEquivalentsAtCarryingValue")
	require.True(t, ok)
	require.Equal(t, "Cash and Cash Equivalents", label)
	require.Equal(t, "CashAndCashEquivalents", standardConcept)

	_, _, ok = MapForStatement("IncomeStatement", "us-gaap:CashAndCashEquivalentsAtCarryingValue")
	require.False(t, ok, "a balance sheet concept should not resolve on the income statement")

	label, standardConcept, ok = MapForStatement("IncomeStatement", "us-gaap:ResearchAndDevelopmentExpense")
	require.True(t, ok)
	require.Equal(t, "Research and Development Expense", label)
	require.Equal(t, "ResearchAndDevelopmentExpense", standardConcept)

	_, _, ok = MapForStatement("BalanceSheet", "us-gaap:ThisDoesNotExist")
	require.False(t, ok)
}

func TestStandardConceptKey(t *testing.T) {
	require.Equal(t, "NetIncomeLoss", standardConceptKey("Net Income (Loss)"))
	require.Equal(t, "LongTermDebt", standardConceptKey("Long-Term Debt"))
	require.Equal(t, "CashAndCashEquivalents", standardConceptKey("Cash and Cash Equivalents"))
}
