package edgar

import (
	"strings"

	"golang.org/x/net/html"
)

// SGMLFormatType distinguishes the two submission dialects EDGAR has used
// over the years.
type SGMLFormatType string

const (
	FormatSubmission  SGMLFormatType = "submission"
	FormatSECDocument SGMLFormatType = "sec_document"
)

// DetectFormat dispatches on the root element of a raw submission to decide
// which dialect parser should run. It runs the defensive error checks
// first: a payload that looks like an HTML rejection page or an S3 error
// document is never valid SGML, no matter what tags it happens to contain.
func DetectFormat(content string) (SGMLFormatType, error) {
	if err := detectErrorResponse(content); err != nil {
		return "", err
	}

	trimmed := strings.TrimSpace(content)
	switch {
	case strings.HasPrefix(trimmed, "<SUBMISSION>"):
		return FormatSubmission, nil
	case strings.Contains(content, "<SEC-DOCUMENT>"):
		return FormatSECDocument, nil
	case strings.Contains(content, "<IMS-DOCUMENT>"):
		return FormatSECDocument, nil
	}

	head := content
	if len(head) > 1000 {
		head = head[:1000]
	}
	if strings.Contains(head, "<DOCUMENT>") {
		return FormatSECDocument, nil
	}

	return "", &InvalidSGML{Detail: "unrecognized submission format: no <SUBMISSION>, <SEC-DOCUMENT>, <IMS-DOCUMENT> or leading <DOCUMENT> found"}
}

// detectErrorResponse recognizes the handful of non-SGML payloads EDGAR
// serves instead of a filing: an identity-rejection HTML page, an S3-style
// NoSuchKey error document, or any other HTML/XML where SGML was expected.
// Each must be distinguishable so a caller can react appropriately (e.g.
// retry with a compliant User-Agent vs. give up on a 404).
func detectErrorResponse(content string) error {
	trimmed := strings.TrimSpace(content)
	lower := strings.ToLower(trimmed)

	if strings.Contains(trimmed, "<Error>") && strings.Contains(trimmed, "<Code>NoSuchKey</Code>") {
		return &SECFilingNotFoundError{Detail: "source returned an S3 NoSuchKey error"}
	}

	if strings.HasPrefix(lower, "<?xml") || strings.HasPrefix(lower, "<error>") {
		return &SECHTMLResponseError{Detail: "received an XML document where SGML was expected"}
	}

	if !strings.HasPrefix(lower, "<html") && !strings.Contains(lower, "<!doctype html") {
		return nil
	}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return &SECHTMLResponseError{Detail: "received HTML that failed to parse"}
	}
	pageText := strings.ToLower(extractPlainText(doc))

	if strings.Contains(pageText, "sec.gov") &&
		(strings.Contains(pageText, "automated tool") || strings.Contains(pageText, "request originating from an undeclared automated tool")) {
		return &SECIdentityError{Detail: "EDGAR rejected the request as an unidentified automated tool"}
	}

	return &SECHTMLResponseError{Detail: "received an HTML page where SGML was expected"}
}

// extractPlainText walks an html.Node tree collecting all text node
// content, used only to classify a handful of known error-page phrases.
func extractPlainText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(extractPlainText(c))
		b.WriteString(" ")
	}
	return b.String()
}
