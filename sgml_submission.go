package edgar

import (
	"regexp"
	"strings"
)

// sectionTags is the closed set of tags that introduce a nested section in
// the SUBMISSION dialect header. Any other bare tag is either a data tag
// (has a value on the same line) or an empty tag.
var sectionTags = map[string]bool{
	"FILER": true, "OWNER-DATA": true, "COMPANY-DATA": true, "REPORTING-OWNER": true,
	"ISSUER": true, "DEPOSITOR": true, "SECURITIZER": true, "ISSUING_ENTITY": true,
	"FORMER-COMPANY": true, "SUBJECT-COMPANY": true, "FILED-BY": true, "FORMER-NAME": true,
	"FILING-VALUES": true, "BUSINESS-ADDRESS": true, "MAIL-ADDRESS": true,
	"CLASS-CONTRACT": true, "SERIES": true, "NEW-SERIES": true, "NEW-CLASSES-CONTRACTS": true,
	"ACQUIRING-DATA": true, "TARGET-DATA": true, "SERIAL-COMPANY": true, "MERGER": true,
	"SERIES-AND-CLASSES-CONTRACTS-DATA": true, "NEW-SERIES-AND-CLASSES-CONTRACTS": true,
	"MERGER-SERIES-AND-CLASSES-CONTRACTS": true, "EXISTING-SERIES-AND-CLASSES-CONTRACTS": true,
	"UNDERWRITER": true, "RULE": true, "ITEM": true,
}

// repeatableTags always become a list in the parsed tree, even when a
// single occurrence is present, so downstream code never has to branch on
// whether a field is a scalar or a list.
var repeatableTags = map[string]bool{
	"FILER": true, "REPORTING-OWNER": true, "SERIES": true, "CLASS-CONTRACT": true,
	"FORMER-COMPANY": true, "SUBJECT-COMPANY": true, "UNDERWRITER": true, "ITEM": true,
}

// rawDocument is one <DOCUMENT>...</DOCUMENT> block, still in raw form:
// neither content-decoded nor classified.
type rawDocument struct {
	Type        string
	Sequence    string
	Filename    string
	Description string
	Content     string // full raw text between <DOCUMENT> and </DOCUMENT>, inclusive of sub-tags
}

// parsedSubmission is the generic result of parsing either dialect's
// header: a nested tree (lists for repeatable sections, strings for leaf
// values) plus the ordered list of embedded documents.
type parsedSubmission struct {
	Format    SGMLFormatType
	HeaderTree map[string]any
	HeaderText string // raw header text, used by the SEC-DOCUMENT dialect's text-block parser
	Documents []rawDocument
}

var (
	docTypeRe        = regexp.MustCompile(`(?m)<TYPE>([^<\n]+)`)
	docSequenceRe    = regexp.MustCompile(`(?m)<SEQUENCE>([^<\n]+)`)
	docFilenameRe    = regexp.MustCompile(`(?m)<FILENAME>([^<\n]+)`)
	docDescriptionRe = regexp.MustCompile(`(?m)<DESCRIPTION>([^<\n]+)`)
)

func parseDocumentSection(content string) rawDocument {
	doc := rawDocument{Content: content}
	if m := docTypeRe.FindStringSubmatch(content); m != nil {
		doc.Type = strings.TrimSpace(m[1])
	}
	if m := docSequenceRe.FindStringSubmatch(content); m != nil {
		doc.Sequence = strings.TrimSpace(m[1])
	}
	if m := docFilenameRe.FindStringSubmatch(content); m != nil {
		doc.Filename = strings.TrimSpace(m[1])
	}
	if m := docDescriptionRe.FindStringSubmatch(content); m != nil {
		doc.Description = strings.TrimSpace(m[1])
	}
	return doc
}

// stackFrame locates the parser's current position within the growing
// header tree: tag is the section name, index selects which element of a
// repeatable-tag's list is current (-1 for non-repeatable sections).
type stackFrame struct {
	tag   string
	index int
}

// submissionParser implements the stack-based, line-oriented state machine
// for the <SUBMISSION> dialect described in the format's defensive parsing
// rules: section start/end, data tags, empty tags, and unclosed
// tags-with-trailing-value are all handled per-line with no lookahead.
type submissionParser struct {
	tree        map[string]any
	stack       []stackFrame
	headerLines []string
}

func newSubmissionParser() *submissionParser {
	return &submissionParser{tree: map[string]any{}}
}

// parse runs the full state machine over the submission content, switching
// from header mode to document mode on the first <DOCUMENT> line.
func (p *submissionParser) parse(content string) (*parsedSubmission, error) {
	var documents []rawDocument
	var docBuffer []string
	inDocuments := false

	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "<DOCUMENT>") {
			inDocuments = true
			docBuffer = []string{line}
			continue
		}

		if inDocuments {
			if strings.Contains(line, "</DOCUMENT>") {
				docBuffer = append(docBuffer, line)
				documents = append(documents, parseDocumentSection(strings.Join(docBuffer, "\n")))
				docBuffer = nil
				continue
			}
			if docBuffer != nil {
				docBuffer = append(docBuffer, line)
			}
			continue
		}

		p.headerLines = append(p.headerLines, line)
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch {
		case isSectionStart(trimmed):
			if err := p.handleSectionStart(trimmed); err != nil {
				return nil, err
			}
		case isSectionEnd(trimmed):
			if err := p.handleSectionEnd(trimmed); err != nil {
				return nil, err
			}
		case isDataTag(trimmed):
			p.handleDataTag(trimmed)
		case isEmptyTag(trimmed):
			p.handleEmptyTag(trimmed)
		case isUnclosedTag(trimmed):
			p.handleDataTag(trimmed) // same handling: store trailing value
		}
	}

	return &parsedSubmission{
		Format:     FormatSubmission,
		HeaderTree: p.tree,
		HeaderText: strings.Join(p.headerLines, "\n"),
		Documents:  documents,
	}, nil
}

func isSectionStart(line string) bool {
	if !strings.HasPrefix(line, "<") || !strings.HasSuffix(line, ">") {
		return false
	}
	tag := line[1 : len(line)-1]
	return sectionTags[tag]
}

func isSectionEnd(line string) bool {
	return strings.HasPrefix(line, "</")
}

func isDataTag(line string) bool {
	if !strings.HasPrefix(line, "<") {
		return false
	}
	parts := strings.SplitN(line, ">", 2)
	return len(parts) == 2 && strings.TrimSpace(parts[1]) != ""
}

func isEmptyTag(line string) bool {
	return strings.HasPrefix(line, "<") && strings.HasSuffix(line, ">") &&
		!strings.HasPrefix(line, "</") && !isSectionStart(line) && !isDataTag(line)
}

func isUnclosedTag(line string) bool {
	if !strings.HasPrefix(line, "<") || strings.HasPrefix(line, "</") {
		return false
	}
	idx := strings.Index(line, ">")
	if idx < 0 {
		return false
	}
	return strings.TrimSpace(line[idx+1:]) != ""
}

// currentContext walks the stack from the root tree to find the map the
// next tag should be written into.
func (p *submissionParser) currentContext() map[string]any {
	ctx := p.tree
	for _, frame := range p.stack {
		if frame.index >= 0 {
			list := ctx[frame.tag].([]map[string]any)
			ctx = list[frame.index]
		} else {
			ctx = ctx[frame.tag].(map[string]any)
		}
	}
	return ctx
}

func (p *submissionParser) handleSectionStart(line string) error {
	tag := line[1 : len(line)-1]
	ctx := p.currentContext()

	if repeatableTags[tag] {
		list, _ := ctx[tag].([]map[string]any)
		list = append(list, map[string]any{})
		ctx[tag] = list
		p.stack = append(p.stack, stackFrame{tag: tag, index: len(list) - 1})
		return nil
	}

	if _, ok := ctx[tag]; !ok {
		ctx[tag] = map[string]any{}
	}
	p.stack = append(p.stack, stackFrame{tag: tag, index: -1})
	return nil
}

func (p *submissionParser) handleSectionEnd(line string) error {
	tag := line[2 : len(line)-1]
	if len(p.stack) == 0 {
		return &MismatchedTag{Expected: "", Found: tag}
	}
	top := p.stack[len(p.stack)-1]
	if top.tag != tag {
		return &MismatchedTag{Expected: top.tag, Found: tag}
	}
	p.stack = p.stack[:len(p.stack)-1]
	return nil
}

func (p *submissionParser) handleDataTag(line string) {
	idx := strings.Index(line, ">")
	tag := line[1:idx]
	value := strings.TrimSpace(line[idx+1:])
	ctx := p.currentContext()
	appendValue(ctx, tag, value)
}

func (p *submissionParser) handleEmptyTag(line string) {
	tag := line[1 : len(line)-1]
	ctx := p.currentContext()
	ctx[tag] = ""
}

// appendValue stores value under tag, promoting to a list the moment a tag
// is seen a second time in the same context (mirrors the reference
// parser's "repeated tags become lists" rule for non-section data tags).
func appendValue(ctx map[string]any, tag, value string) {
	existing, ok := ctx[tag]
	if !ok {
		ctx[tag] = value
		return
	}
	switch v := existing.(type) {
	case []string:
		ctx[tag] = append(v, value)
	case string:
		ctx[tag] = []string{v, value}
	default:
		ctx[tag] = value
	}
}

// parseSecDocumentFormat implements the simpler legacy dialect: a single
// <SEC-HEADER>/<IMS-HEADER> text block (parsed separately by the header
// text-block parser) plus <DOCUMENT>...</DOCUMENT> sections extracted the
// same way as the SUBMISSION dialect.
func parseSecDocumentFormat(content string) (*parsedSubmission, error) {
	var headerText []string
	var documents []rawDocument
	var docBuffer []string
	inHeader := false
	inDocument := false

	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "<SEC-HEADER>") || strings.Contains(line, "<IMS-HEADER>") {
			inHeader = true
			continue
		}
		if strings.Contains(line, "</SEC-HEADER>") || strings.Contains(line, "</IMS-HEADER>") {
			inHeader = false
			continue
		}
		if inHeader {
			headerText = append(headerText, line)
		}

		if strings.Contains(line, "<DOCUMENT>") {
			inDocument = true
			docBuffer = nil
			continue
		}
		if strings.Contains(line, "</DOCUMENT>") {
			if inDocument {
				documents = append(documents, parseDocumentSection(strings.Join(docBuffer, "\n")))
			}
			inDocument = false
			docBuffer = nil
			continue
		}
		if inDocument {
			docBuffer = append(docBuffer, line)
		}
	}

	return &parsedSubmission{
		Format:     FormatSECDocument,
		HeaderText: strings.Join(headerText, "\n"),
		Documents:  documents,
	}, nil
}

// ParseSubmission is the SGML Parser's single entry point: it detects the
// dialect and runs the matching state machine, returning a generic
// parsedSubmission tree that the Filing Assembler and Header Parser turn
// into typed records.
func ParseSubmission(content string) (*parsedSubmission, error) {
	format, err := DetectFormat(content)
	if err != nil {
		return nil, err
	}
	if format == FormatSubmission {
		return newSubmissionParser().parse(content)
	}
	return parseSecDocumentFormat(content)
}
