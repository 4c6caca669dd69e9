package edgar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleSubmission = `<SUBMISSION>
<TYPE>10-K
<FILER>
<COMPANY-DATA>
<CONFORMED-NAME>TEST CO
<CIK>0000000001
</COMPANY-DATA>
</FILER>
<FILER>
<COMPANY-DATA>
<CONFORMED-NAME>SECOND FILER
<CIK>0000000002
</COMPANY-DATA>
</FILER>
<DOCUMENT>
<TYPE>10-K
<SEQUENCE>1
<FILENAME>test.htm
<DESCRIPTION>10-K
<TEXT>
body text here
</TEXT>
</DOCUMENT>
</SUBMISSION>
`

func TestParseSubmission_SubmissionDialect(t *testing.T) {
	parsed, err := ParseSubmission(sampleSubmission)
	require.NoError(t, err)
	require.Equal(t, FormatSubmission, parsed.Format)

	filers, ok := parsed.HeaderTree["FILER"].([]map[string]any)
	require.True(t, ok, "FILER must be promoted to a list even though the repeatable-tag rule applies regardless of count")
	require.Len(t, filers, 2)

	companyData, ok := filers[0]["COMPANY-DATA"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "TEST CO", companyData["CONFORMED-NAME"])
	require.Equal(t, "0000000001", companyData["CIK"])

	require.Len(t, parsed.Documents, 1)
	require.Equal(t, "10-K", parsed.Documents[0].Type)
	require.Equal(t, "test.htm", parsed.Documents[0].Filename)
}

func TestParseSubmission_MismatchedTag(t *testing.T) {
	malformed := "<SUBMISSION>\n<FILER>\n<COMPANY-DATA>\n</FILER>\n</SUBMISSION>\n"
	_, err := newSubmissionParser().parse(malformed)
	require.Error(t, err)
	require.ErrorAs(t, err, new(*MismatchedTag))
}

func TestParseSubmission_SecDocumentDialect(t *testing.T) {
	legacy := "<SEC-DOCUMENT>0001-24-000001.txt : 20240101\n" +
		"<SEC-HEADER>\nACCESSION NUMBER:\t\t0001-24-000001\n</SEC-HEADER>\n" +
		"<DOCUMENT>\n<TYPE>10-K\n<TEXT>\nbody\n</TEXT>\n</DOCUMENT>\n"

	parsed, err := ParseSubmission(legacy)
	require.NoError(t, err)
	require.Equal(t, FormatSECDocument, parsed.Format)
	require.Contains(t, parsed.HeaderText, "ACCESSION NUMBER")
	require.Len(t, parsed.Documents, 1)
}

func TestParseSubmission_RepeatedDataTagBecomesList(t *testing.T) {
	ctx := map[string]any{}
	appendValue(ctx, "ITEM", "1.01")
	appendValue(ctx, "ITEM", "5.02")

	items, ok := ctx["ITEM"].([]string)
	require.True(t, ok)
	require.Equal(t, []string{"1.01", "5.02"}, items)
}
