package edgar

import (
	"fmt"
	"regexp"
)

// edgarArchiveURLPattern matches the CIK/accession segment of an EDGAR
// Archives URL: .../edgar/data/{cik}/{accession}/{filename}.
var edgarArchiveURLPattern = regexp.MustCompile(`/edgar/data/(\d+)/(\d+)/`)

// URLMetadata is the CIK/accession pair recovered from a URL-shaped
// submission source, without any network call.
type URLMetadata struct {
	CIK       string
	Accession string
}

// ExtractMetadataFromURL parses a URL-shaped submission source
// (e.g. https://www.sec.gov/Archives/edgar/data/1631574/000119312525314736/ownership.xml)
// to recover the CIK and accession number, normalizing the compact
// 18-digit accession form to NNNNNNNNNN-NN-NNNNNN.
func ExtractMetadataFromURL(url string) (*URLMetadata, error) {
	matches := edgarArchiveURLPattern.FindStringSubmatch(url)
	if len(matches) < 3 {
		return nil, fmt.Errorf("could not extract CIK and accession number from URL %q", url)
	}
	return &URLMetadata{
		CIK:       matches[1],
		Accession: normalizeAccession(matches[2]),
	}, nil
}
