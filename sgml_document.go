package edgar

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding/charmap"
)

// zstdMagic is the four-byte frame magic number used to detect
// zstandard-compressed document bodies pulled from datamule tar archives.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

var (
	textTagRe = regexp.MustCompile(`(?is)<TEXT>([\s\S]*?)</TEXT>`)
	xmlTagRe  = regexp.MustCompile(`(?is)<XML>([\s\S]*?)</XML>`)
	htmlTagRe = regexp.MustCompile(`(?is)<HTML>([\s\S]*?)</HTML>`)
	xbrlTagRe = regexp.MustCompile(`(?is)<XBRL>([\s\S]*?)</XBRL>`)
	pdfTagRe  = regexp.MustCompile(`(?is)<PDF>([\s\S]*?)</PDF>`)
)

// SGMLDocument is one <DOCUMENT>...</DOCUMENT> block from a parsed
// submission, with content decoded lazily: most documents in a filing are
// never read by a given caller, so paying the uu-decode/zstd cost upfront
// for all of them would be wasted work.
type SGMLDocument struct {
	Type        string
	Sequence    string
	Filename    string
	Description string
	rawContent  string
}

func newSGMLDocument(raw rawDocument) *SGMLDocument {
	return &SGMLDocument{
		Type:        raw.Type,
		Sequence:    raw.Sequence,
		Filename:    raw.Filename,
		Description: raw.Description,
		rawContent:  raw.Content,
	}
}

// Text returns the content between <TEXT>...</TEXT>, the outermost and
// most commonly present wrapper.
func (d *SGMLDocument) Text() string {
	if m := textTagRe.FindStringSubmatch(d.rawContent); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// XML returns the content between <XML>...</XML> if present.
func (d *SGMLDocument) XML() (string, bool) {
	if m := xmlTagRe.FindStringSubmatch(d.rawContent); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

// HTML returns the content between <HTML>...</HTML> if present.
func (d *SGMLDocument) HTML() (string, bool) {
	if m := htmlTagRe.FindStringSubmatch(d.rawContent); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

// XBRL returns the content between <XBRL>...</XBRL> if present.
func (d *SGMLDocument) XBRL() (string, bool) {
	if m := xbrlTagRe.FindStringSubmatch(d.rawContent); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

// ContentType reports the document's primary embedded content marker,
// checked innermost-first: PDF, XBRL, XML, HTML, then plain text.
func (d *SGMLDocument) ContentType() string {
	if m := pdfTagRe.FindStringSubmatch(d.rawContent); m != nil && strings.TrimSpace(m[1]) != "" {
		return "pdf"
	}
	if _, ok := d.XBRL(); ok {
		return "xbrl"
	}
	if _, ok := d.XML(); ok {
		return "xml"
	}
	if _, ok := d.HTML(); ok {
		return "html"
	}
	return "text"
}

// Content returns the fully decoded payload: the body between
// <TEXT>...</TEXT>, falling back to the whole raw content when there is no
// TEXT block, with uu-decoding and zstd decompression applied when the body
// signals either. Inner <XML>/<HTML>/<XBRL>/<PDF> wrappers are not
// stripped; use XML, HTML or XBRL for those.
func (d *SGMLDocument) Content() ([]byte, error) {
	body := d.Text()
	if body == "" {
		body = strings.TrimSpace(d.rawContent)
	}
	if body == "" {
		return nil, nil
	}

	if strings.HasPrefix(body, "begin ") {
		decoded, err := uuDecode(body)
		if err != nil {
			return nil, fmt.Errorf("uu-decode failed for %s: %w", d.Filename, err)
		}
		body2 := decoded
		if isZstdCompressed(body2) {
			return decompressZstd(body2)
		}
		return body2, nil
	}

	raw := []byte(body)
	if isZstdCompressed(raw) {
		return decompressZstd(raw)
	}
	return decodeLegacyText(raw), nil
}

// decodeLegacyText re-decodes documents filed before EDGAR required UTF-8:
// many pre-2000s SGML text bodies are Windows-1252, which overlaps ASCII but
// diverges in the 0x80-0x9F range (smart quotes, em dashes). Bodies that are
// already valid UTF-8 pass through unchanged.
func decodeLegacyText(b []byte) []byte {
	if utf8.Valid(b) {
		return b
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return b
	}
	return decoded
}

func isZstdCompressed(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], zstdMagic)
}

func decompressZstd(b []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("zstd reader init failed: %w", err)
	}
	defer decoder.Close()
	out, err := decoder.DecodeAll(b, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	return out, nil
}

// uuDecode implements the classic uuencode scheme used to embed binaries
// (images, PDFs) inside SGML submissions: a "begin NNN filename" header
// line, body lines each prefixed with a length byte, and a terminating
// "`"/"end" pair. No ecosystem package covers this legacy, SEC-specific
// encoding, so it is hand-rolled against the well-known algorithm.
func uuDecode(body string) ([]byte, error) {
	lines := strings.Split(body, "\n")
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty uu-encoded body")
	}

	start := 0
	if strings.HasPrefix(strings.TrimSpace(lines[0]), "begin") {
		start = 1
	}

	var out bytes.Buffer
	for _, line := range lines[start:] {
		line = strings.TrimRight(line, "\r")
		if line == "" || line == "`" || strings.TrimSpace(line) == "end" {
			if strings.TrimSpace(line) == "end" {
				break
			}
			continue
		}

		decoded, err := uuDecodeLine(line)
		if err != nil {
			continue // malformed line: skip, matching the reference decoder's lenient "quiet" mode
		}
		out.Write(decoded)
	}

	return out.Bytes(), nil
}

// uuDecodeLine decodes a single uuencoded line: the first character
// encodes the byte count, each subsequent run of 4 characters decodes to
// 3 bytes via the standard (space + 0x20)-offset alphabet.
func uuDecodeLine(line string) ([]byte, error) {
	if len(line) == 0 {
		return nil, fmt.Errorf("empty line")
	}
	n := int(uuDecodeChar(line[0]))
	data := line[1:]

	var out bytes.Buffer
	for i := 0; i+4 <= len(data) && out.Len() < n; i += 4 {
		c0 := uuDecodeChar(data[i])
		c1 := uuDecodeChar(data[i+1])
		c2 := uuDecodeChar(data[i+2])
		c3 := uuDecodeChar(data[i+3])

		b0 := (c0 << 2) | (c1 >> 4)
		b1 := (c1 << 4) | (c2 >> 2)
		b2 := (c2 << 6) | c3

		out.WriteByte(b0)
		if out.Len() < n {
			out.WriteByte(b1)
		}
		if out.Len() < n {
			out.WriteByte(b2)
		}
	}

	result := out.Bytes()
	if len(result) > n {
		result = result[:n]
	}
	return result, nil
}

// uuDecodeChar maps a uuencoded character to its 6-bit value. Space (and
// the common backtick substitute for space) decodes to 0; otherwise the
// value is (char - 0x20) & 0x3F.
func uuDecodeChar(c byte) byte {
	if c == ' ' || c == '`' {
		return 0
	}
	return (c - 0x20) & 0x3F
}
