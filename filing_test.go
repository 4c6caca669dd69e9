package edgar

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleFilingSubmission = `<SUBMISSION>
<ACCESSION-NUMBER>0000000001-24-000001
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
<FILENAME>test.htm
<DESCRIPTION>10-K
<TEXT>
<html><body>primary document body</body></html>
</TEXT>
</DOCUMENT>
<DOCUMENT>
<TYPE>EX-99.1
<SEQUENCE>2
<FILENAME>exhibit.htm
<DESCRIPTION>Exhibit
<TEXT>
exhibit body text
</TEXT>
</DOCUMENT>
<DOCUMENT>
<TYPE>EX-101.INS
<SEQUENCE>3
<FILENAME>test-20231231.xml
<DESCRIPTION>XBRL Instance
<TEXT>
<xbrl>facts</xbrl>
</TEXT>
</DOCUMENT>
</SUBMISSION>
`

func parseSampleFiling(t *testing.T) *FilingSGML {
	t.Helper()
	filing, err := ParseFilingSGML(sampleFilingSubmission)
	require.NoError(t, err)
	return filing
}

// TestParseFilingSGML_AccessionNumberFormat is the universal §8 invariant:
// accession_number always matches NNNNNNNNNN-NN-NNNNNN.
func TestParseFilingSGML_AccessionNumberFormat(t *testing.T) {
	filing := parseSampleFiling(t)
	require.Regexp(t, `^\d{10}-\d{2}-\d{6}$`, filing.Header.AccessionNumber())
}

// TestParseFilingSGML_AttachmentClassification exercises the Filing
// Assembler's single-pass rule (§4.2): sequence "1" is primary, and the
// first data-file-suffixed filename among the rest flips everything after
// it into the data-file bucket.
func TestParseFilingSGML_AttachmentClassification(t *testing.T) {
	filing := parseSampleFiling(t)

	require.Len(t, filing.Primary, 1)
	require.Equal(t, "test.htm", filing.Primary[0].Document)

	require.Len(t, filing.Documents, 2)
	require.Equal(t, "test.htm", filing.Documents[0].Document)
	require.Equal(t, "exhibit.htm", filing.Documents[1].Document)

	require.Len(t, filing.DataFiles, 1)
	require.Equal(t, "test-20231231.xml", filing.DataFiles[0].Document)
}

func TestParseFilingSGML_GetDocumentLookups(t *testing.T) {
	filing := parseSampleFiling(t)

	require.NotNil(t, filing.GetDocumentBySequence("2"))
	require.Equal(t, "exhibit.htm", filing.GetDocumentBySequence("2").Filename)
	require.Nil(t, filing.GetDocumentBySequence("99"))

	require.NotNil(t, filing.GetDocumentByName("exhibit.htm"))
	require.Nil(t, filing.GetDocumentByName("missing.htm"))
}

func TestFilingSGML_HTML(t *testing.T) {
	filing := parseSampleFiling(t)
	html, err := filing.HTML()
	require.NoError(t, err)
	require.Contains(t, html, "primary document body")
}

func TestFilingSGML_Download_Directory(t *testing.T) {
	filing := parseSampleFiling(t)
	dir := t.TempDir()

	require.NoError(t, filing.Download(dir, false))

	for _, name := range []string{"test.htm", "exhibit.htm", "test-20231231.xml"} {
		content, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NotEmpty(t, content)
	}
}

func TestFilingSGML_Download_Archive(t *testing.T) {
	filing := parseSampleFiling(t)
	dest := filepath.Join(t.TempDir(), "filing.zip")

	require.NoError(t, filing.Download(dest, true))

	zr, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer zr.Close()

	names := map[string]bool{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		require.NotEmpty(t, body)
		names[f.Name] = true
	}
	require.True(t, names["test.htm"])
	require.True(t, names["exhibit.htm"])
	require.True(t, names["test-20231231.xml"])
}
