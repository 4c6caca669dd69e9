package edgar

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AttachmentType coarsely classifies a filing's embedded documents, per
// the Filing Assembler's single-pass classification rule: the primary
// document, supporting documents, and machine-readable data files.
type AttachmentType string

const (
	AttachmentPrimary  AttachmentType = "primary"
	AttachmentDocument AttachmentType = "document"
	AttachmentDataFile AttachmentType = "datafile"
)

// Attachment is one document of a filing, classified and given a virtual
// archive path, with an optional purpose label sourced from
// FilingSummary.xml.
type Attachment struct {
	Sequence    string
	Path        string
	Document    string // filename
	DocumentType string // declared type refined by extension inference
	Description string
	Purpose     string
	IXBRL       bool
	SGML        *SGMLDocument
}

// FilingSGML is the assembled filing: header, documents indexed both by
// sequence and by filename, and the derived attachment classification.
// It is built once per source and never mutated afterward.
type FilingSGML struct {
	Header *FilingHeader

	documentsBySequence map[string][]*SGMLDocument
	documentsByName     map[string]*SGMLDocument

	Primary   []Attachment
	Documents []Attachment
	DataFiles []Attachment

	filingSummary *filingSummary
}

func dataFileExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".xml" || ext == ".xsd" || ext == ".xbrl"
}

// ParseFilingSGML runs the SGML Parser then assembles a FilingSGML,
// classifying every embedded document exactly as described in the
// assembler's single-pass rule: sequence "1" is always primary; once a
// data-file-suffixed filename is seen among the non-primary documents,
// every subsequent non-primary document is treated as a data file too
// (EDGAR orders human-readable documents first, then data files).
func ParseFilingSGML(content string) (*FilingSGML, error) {
	parsed, err := ParseSubmission(content)
	if err != nil {
		return nil, err
	}

	var header *FilingHeader
	if parsed.Format == FormatSubmission {
		header = parseSubmissionFormatHeader(parsed.HeaderTree)
	} else {
		header, err = safeParseSGMLHeaderText(parsed.HeaderText)
		if err != nil {
			return nil, err
		}
	}

	filing := &FilingSGML{
		Header:              header,
		documentsBySequence: map[string][]*SGMLDocument{},
		documentsByName:     map[string]*SGMLDocument{},
	}

	accessionPrefix := strings.ReplaceAll(header.AccessionNumber(), "-", "")
	archivePrefix := fmt.Sprintf("/Archives/edgar/data/%s/%s", header.CIK(), accessionPrefix)

	inDataFileMode := false
	for _, raw := range parsed.Documents {
		doc := newSGMLDocument(raw)
		filing.documentsBySequence[doc.Sequence] = append(filing.documentsBySequence[doc.Sequence], doc)
		if doc.Filename != "" {
			filing.documentsByName[doc.Filename] = doc
		}

		attachment := Attachment{
			Sequence:     doc.Sequence,
			Path:         fmt.Sprintf("%s/%s", archivePrefix, doc.Filename),
			Document:     doc.Filename,
			DocumentType: inferDocumentType(doc.Filename, doc.Type),
			Description:  doc.Description,
			SGML:         doc,
		}

		if doc.Sequence == "1" {
			if content, cerr := doc.Content(); cerr == nil && DetectXBRLType(content) == "inline" {
				attachment.IXBRL = true
			}
			filing.Primary = append(filing.Primary, attachment)
			filing.Documents = append(filing.Documents, attachment)
			continue
		}

		if !inDataFileMode {
			inDataFileMode = dataFileExtension(doc.Filename)
		}
		if inDataFileMode {
			filing.DataFiles = append(filing.DataFiles, attachment)
		} else {
			filing.Documents = append(filing.Documents, attachment)
		}
	}

	if summaryDoc, ok := filing.documentsByName["FilingSummary.xml"]; ok {
		content, err := summaryDoc.Content()
		if err == nil {
			if summary, perr := parseFilingSummary(content); perr == nil {
				filing.filingSummary = summary
				filing.applyPurposeLabels()
			}
		}
	}

	return filing, nil
}

func safeParseSGMLHeaderText(text string) (header *FilingHeader, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse SEC-DOCUMENT header: %v", r)
		}
	}()
	h := parseSGMLHeaderText(text, false)
	if h.AccessionNumber() == "" {
		h = parseSGMLHeaderText(text, true)
	}
	return h, nil
}

// applyPurposeLabels enriches each attachment with the short_name taken
// from the filing summary's report index, matched by filename.
func (f *FilingSGML) applyPurposeLabels() {
	if f.filingSummary == nil {
		return
	}
	assign := func(attachments []Attachment) {
		for i := range attachments {
			if purpose, ok := f.filingSummary.purposeFor(attachments[i].Document); ok {
				attachments[i].Purpose = purpose
			}
		}
	}
	assign(f.Primary)
	assign(f.Documents)
	assign(f.DataFiles)
}

// inferDocumentType refines a declared type using the filename extension
// when the declared type is absent or generic.
func inferDocumentType(filename, declaredType string) string {
	if declaredType != "" {
		return declaredType
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".htm", ".html":
		return "HTML"
	case ".xml":
		return "XML"
	case ".xsd":
		return "XSD"
	case ".xbrl":
		return "XBRL"
	case ".pdf":
		return "PDF"
	case ".txt":
		return "TEXT"
	default:
		return strings.ToUpper(strings.TrimPrefix(ext, "."))
	}
}

// GetDocumentBySequence returns the first document at the given sequence
// (a sequence value can repeat; the first document wins, as in the
// reference assembler).
func (f *FilingSGML) GetDocumentBySequence(sequence string) *SGMLDocument {
	docs := f.documentsBySequence[sequence]
	if len(docs) == 0 {
		return nil
	}
	return docs[0]
}

func (f *FilingSGML) GetDocumentByName(filename string) *SGMLDocument {
	return f.documentsByName[filename]
}

// HTML returns the primary document's HTML content, if the primary
// document carries one.
func (f *FilingSGML) HTML() (string, error) {
	if len(f.Primary) == 0 {
		return "", nil
	}
	doc := f.Primary[0].SGML
	if html, ok := doc.HTML(); ok {
		return html, nil
	}
	content, err := doc.Content()
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// XML returns the primary document's XML content, if the primary
// document carries one.
func (f *FilingSGML) XML() (string, error) {
	if len(f.Primary) == 0 {
		return "", nil
	}
	doc := f.Primary[0].SGML
	if xmlContent, ok := doc.XML(); ok {
		return xmlContent, nil
	}
	content, err := doc.Content()
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// XBRLView locates and parses this filing's XBRL instance — inline XBRL
// tagged directly on the primary document, or a standalone instance
// document among the data files — and bridges it into the richer view
// the stitcher and TTM engine consume. Returns (nil, nil) when the
// filing carries no XBRL at all (pre-2009 filings, or forms that never
// tag XBRL facts).
func (f *FilingSGML) XBRLView() (*XBRLView, error) {
	x, err := f.parseXBRLInstance()
	if err != nil {
		return nil, err
	}
	if x == nil {
		return nil, nil
	}
	return NewXBRLView(x, f.Header.AccessionNumber(), f.Header.Form(), f.Header.FilingDate()), nil
}

// parseXBRLInstance checks the primary document for inline XBRL first
// (the common case for 10-K/10-Q filings since 2009), then falls back to
// scanning the data files for a standalone XBRL instance document.
func (f *FilingSGML) parseXBRLInstance() (*XBRL, error) {
	if len(f.Primary) > 0 {
		doc := f.Primary[0].SGML
		content, err := doc.Content()
		if err != nil {
			return nil, fmt.Errorf("failed to decode primary document %s: %w", f.Primary[0].Document, err)
		}
		if DetectXBRLType(content) == "inline" {
			x, perr := ParseInlineXBRL(content)
			if perr != nil {
				return nil, fmt.Errorf("failed to parse inline XBRL in %s: %w", f.Primary[0].Document, perr)
			}
			return x, nil
		}
	}

	for _, a := range f.DataFiles {
		ext := strings.ToLower(filepath.Ext(a.Document))
		if ext != ".xml" && ext != ".xbrl" {
			continue
		}
		content, err := a.SGML.Content()
		if err != nil {
			continue
		}
		if DetectXBRLType(content) != "standalone" {
			continue
		}
		x, perr := ParseXBRL(content)
		if perr != nil {
			return nil, fmt.Errorf("failed to parse XBRL instance %s: %w", a.Document, perr)
		}
		return x, nil
	}

	return nil, nil
}

// allAttachments returns every attachment across the three classified
// lists, in the order the assembler originally emitted them: primary
// first (duplicated into Documents, so skipped there to avoid writing it
// twice), then the remaining documents, then data files.
func (f *FilingSGML) allAttachments() []Attachment {
	out := make([]Attachment, 0, len(f.Primary)+len(f.Documents)+len(f.DataFiles))
	out = append(out, f.Primary...)
	primaryName := ""
	if len(f.Primary) > 0 {
		primaryName = f.Primary[0].Document
	}
	for _, a := range f.Documents {
		if a.Document == primaryName {
			continue
		}
		out = append(out, a)
	}
	out = append(out, f.DataFiles...)
	return out
}

// Download writes every document of the filing to disk, either as loose
// files under dest or, when archive is true, as a single zip archive at
// dest.
func (f *FilingSGML) Download(dest string, archive bool) error {
	attachments := f.allAttachments()

	if archive {
		zf, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("failed to create archive %s: %w", dest, err)
		}
		defer zf.Close()

		zw := zip.NewWriter(zf)
		defer zw.Close()

		for _, a := range attachments {
			content, err := a.SGML.Content()
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", a.Document, err)
			}
			w, err := zw.Create(a.Document)
			if err != nil {
				return fmt.Errorf("failed to add %s to archive: %w", a.Document, err)
			}
			if _, err := w.Write(content); err != nil {
				return fmt.Errorf("failed to write %s to archive: %w", a.Document, err)
			}
		}
		return nil
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dest, err)
	}
	for _, a := range attachments {
		content, err := a.SGML.Content()
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", a.Document, err)
		}
		path := filepath.Join(dest, a.Document)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// filingSummary is the small slice of FilingSummary.xml this module
// consumes: a filename -> short_name ("purpose") index.
type filingSummary struct {
	reports []summaryReport
}

type summaryReport struct {
	HtmlFileName string `xml:"HtmlFileName"`
	ShortName    string `xml:"ShortName"`
	LongName     string `xml:"LongName"`
	Role         string `xml:"Role"`
}

type filingSummaryXML struct {
	XMLName xml.Name         `xml:"FilingSummary"`
	Reports []summaryReport  `xml:"MyReports>Report"`
}

func parseFilingSummary(content []byte) (*filingSummary, error) {
	var parsed filingSummaryXML
	if err := xml.Unmarshal(content, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse FilingSummary.xml: %w", err)
	}
	return &filingSummary{reports: parsed.Reports}, nil
}

func (s *filingSummary) purposeFor(filename string) (string, bool) {
	for _, r := range s.reports {
		if r.HtmlFileName == filename {
			return r.ShortName, true
		}
	}
	return "", false
}
