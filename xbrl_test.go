package edgar

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

const standaloneXBRLFixture = `<?xml version="1.0" encoding="UTF-8"?>
<xbrl xmlns="http://www.xbrl.org/2003/instance" xmlns:us-gaap="http://fasb.org/us-gaap/2023" xmlns:dei="http://xbrl.sec.gov/dei/2023">
  <context id="FY2023">
    <entity><identifier>0001631574</identifier></entity>
    <period><startDate>2023-01-01</startDate><endDate>2023-12-31</endDate></period>
  </context>
  <context id="AsOf2023">
    <entity><identifier>0001631574</identifier></entity>
    <period><instant>2023-12-31</instant></period>
  </context>
  <unit id="usd"><measure>iso4217:USD</measure></unit>
  <dei:EntityRegistrantName contextRef="FY2023">TEST CO</dei:EntityRegistrantName>
  <dei:EntityCentralIndexKey contextRef="FY2023">0001631574</dei:EntityCentralIndexKey>
  <dei:DocumentType contextRef="FY2023">10-K</dei:DocumentType>
  <dei:DocumentPeriodEndDate contextRef="FY2023">2023-12-31</dei:DocumentPeriodEndDate>
  <dei:DocumentFiscalYearFocus contextRef="FY2023">2023</dei:DocumentFiscalYearFocus>
  <dei:DocumentFiscalPeriodFocus contextRef="FY2023">FY</dei:DocumentFiscalPeriodFocus>
  <us-gaap:Revenues contextRef="FY2023" unitRef="usd" decimals="-3">1234000</us-gaap:Revenues>
  <us-gaap:CashAndCashEquivalentsAtCarryingValue contextRef="AsOf2023" unitRef="usd" decimals="-3">567000</us-gaap:CashAndCashEquivalentsAtCarryingValue>
</xbrl>`

const inlineXBRLFixture = `<html xmlns:ix="http://www.xbrl.org/2013/inlineXBRL">
<body>
<ix:header>
<ix:resources>
  <context id="FY2023">
    <entity><identifier>0001631574</identifier></entity>
    <period><startDate>2023-01-01</startDate><endDate>2023-12-31</endDate></period>
  </context>
  <unit id="usd"><measure>iso4217:USD</measure></unit>
</ix:resources>
</ix:header>
<ix:nonFraction name="us-gaap:Revenues" contextRef="FY2023" unitRef="usd" decimals="-3">1234000</ix:nonFraction>
<ix:nonNumeric name="dei:EntityRegistrantName" contextRef="FY2023">TEST CO</ix:nonNumeric>
</body>
</html>`

func TestParseXBRL_Standalone(t *testing.T) {
	x, err := ParseXBRL([]byte(standaloneXBRLFixture))
	require.NoError(t, err)
	require.Len(t, x.Contexts, 2)
	require.Len(t, x.Units, 1)

	info := ExtractEntityInfo(x)
	require.Equal(t, "TEST CO", info.RegistrantName)
	require.Equal(t, "10-K", info.DocumentType)
	require.Equal(t, "FY", info.FiscalPeriodFocus)

	facts := x.ToFinancialFacts("0001193125-24-000001", "10-K", "2024-02-01", "")
	require.NotEmpty(t, facts)

	var revenue *FinancialFact
	for i := range facts {
		if facts[i].Concept == "us-gaap:Revenues" {
			revenue = &facts[i]
		}
	}
	require.NotNil(t, revenue)
	require.Equal(t, "duration", revenue.PeriodType)
	require.NotNil(t, revenue.NumericValue)
	require.InDelta(t, 1234000, *revenue.NumericValue, 0.001)
}

func TestParseInlineXBRL(t *testing.T) {
	x, err := ParseInlineXBRL([]byte(inlineXBRLFixture))
	require.NoError(t, err)
	require.Len(t, x.Facts, 2)

	var revenue *Fact
	for i := range x.Facts {
		if x.Facts[i].Concept == "us-gaap:Revenues" {
			revenue = &x.Facts[i]
		}
	}
	require.NotNil(t, revenue)
	require.Equal(t, "1234000", revenue.Value)
	require.True(t, revenue.IsDuration())
	require.NotNil(t, revenue.NumericValue)
	require.InDelta(t, 1234000, *revenue.NumericValue, 0.001)
}

func TestDetectXBRLType(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"inline via xmlns:ix", inlineXBRLFixture, "inline"},
		{"standalone via xbrl root element", standaloneXBRLFixture, "standalone"},
		{"unknown plain html", "<html><body>no xbrl here</body></html>", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DetectXBRLType([]byte(tt.data)))
		})
	}
}

func TestParseXBRLAuto(t *testing.T) {
	x, err := ParseXBRLAuto([]byte(inlineXBRLFixture))
	require.NoError(t, err)
	require.NotEmpty(t, x.Facts)

	x, err = ParseXBRLAuto([]byte(standaloneXBRLFixture))
	require.NoError(t, err)
	require.NotEmpty(t, x.Facts)

	_, err = ParseXBRLAuto([]byte("<html><body>plain</body></html>"))
	require.Error(t, err)
}

// submissionWithPrimary builds a minimal SUBMISSION-format SGML document
// carrying a single primary document, for exercising the filing-level
// XBRL bridge (FilingSGML.XBRLView) without depending on fixture files.
func submissionWithPrimary(primaryBody string) string {
	return fmt.Sprintf(`<SUBMISSION>
<ACCESSION-NUMBER>0000000001-24-000002
<TYPE>10-K
<FILING-DATE>20240215
<PERIOD>20231231
<CIK>0000000001
<FILER>
<COMPANY-DATA>
<CONFORMED-NAME>TEST CO
<CIK>0000000001
</COMPANY-DATA>
</FILER>
<DOCUMENT>
<TYPE>10-K
<SEQUENCE>1
<FILENAME>primary.htm
<DESCRIPTION>10-K
<TEXT>
%s
</TEXT>
</DOCUMENT>
</SUBMISSION>
`, primaryBody)
}

func TestFilingSGML_XBRLView_InlinePrimary(t *testing.T) {
	filing, err := ParseFilingSGML(submissionWithPrimary(inlineXBRLFixture))
	require.NoError(t, err)
	require.True(t, filing.Primary[0].IXBRL)

	view, err := filing.XBRLView()
	require.NoError(t, err)
	require.NotNil(t, view)
	require.NotEmpty(t, view.Facts)
	require.Equal(t, filing.Header.AccessionNumber(), view.Accession)
	require.Equal(t, "TEST CO", view.Entity.RegistrantName)
}

func TestFilingSGML_XBRLView_NoXBRL(t *testing.T) {
	filing, err := ParseFilingSGML(submissionWithPrimary("<html><body>no xbrl tags</body></html>"))
	require.NoError(t, err)
	require.False(t, filing.Primary[0].IXBRL)

	view, err := filing.XBRLView()
	require.NoError(t, err)
	require.Nil(t, view)
}
