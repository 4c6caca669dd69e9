package edgar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDetectFormat_S6 is the §8 scenario S6: an EDGAR identity-rejection
// HTML page must be recognized and rejected, never mistaken for (or parsed
// as if it were) a valid SGML submission.
func TestDetectFormat_S6(t *testing.T) {
	rejectionPage := `<html><head><title>Request Rejected</title></head>
<body>Your request originating from an undeclared automated tool to sec.gov
has been blocked. Please declare your traffic by updating your User-Agent.</body></html>`

	_, err := DetectFormat(rejectionPage)
	require.Error(t, err)
	require.ErrorAs(t, err, new(*SECIdentityError))
}

func TestDetectFormat_NoSuchKey(t *testing.T) {
	notFound := `<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`

	_, err := DetectFormat(notFound)
	require.Error(t, err)
	require.ErrorAs(t, err, new(*SECFilingNotFoundError))
}

func TestDetectFormat_GenericHTML(t *testing.T) {
	_, err := DetectFormat(`<html><body>Something else entirely</body></html>`)
	require.Error(t, err)
	require.ErrorAs(t, err, new(*SECHTMLResponseError))
}

func TestDetectFormat_UnrecognizedSGML(t *testing.T) {
	_, err := DetectFormat("not sgml at all, no tags here")
	require.Error(t, err)
	require.ErrorAs(t, err, new(*InvalidSGML))
}

func TestDetectFormat_Submission(t *testing.T) {
	format, err := DetectFormat("<SUBMISSION>\n<TYPE>10-K\n</SUBMISSION>")
	require.NoError(t, err)
	require.Equal(t, FormatSubmission, format)
}

func TestDetectFormat_SECDocument(t *testing.T) {
	format, err := DetectFormat("<SEC-DOCUMENT>0001-24-000001.txt : 20240101\n<SEC-HEADER>\n</SEC-HEADER>\n")
	require.NoError(t, err)
	require.Equal(t, FormatSECDocument, format)
}
