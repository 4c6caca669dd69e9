package edgar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractMetadataFromURL(t *testing.T) {
	meta, err := ExtractMetadataFromURL("https://www.sec.gov/Archives/edgar/data/1631574/000119312525314736/ownership.xml")
	require.NoError(t, err)
	require.Equal(t, "1631574", meta.CIK)
	require.Equal(t, "0001193125-25-314736", meta.Accession)
}

func TestExtractMetadataFromURL_NoMatch(t *testing.T) {
	_, err := ExtractMetadataFromURL("https://example.com/not-an-edgar-url")
	require.Error(t, err)
}
