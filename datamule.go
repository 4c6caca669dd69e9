package edgar

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
)

// DatamuleIndex is the process-global, write-once-at-startup accession → tar
// path index described by the shared-resource policy: configured once via
// UseDatamuleStorage and read many times by GetDatamuleFiling. It is never
// mutated after configuration, so it needs no lock.
type DatamuleIndex struct {
	pathsByAccession map[string]string
}

var datamuleIndex *DatamuleIndex

// UseDatamuleStorage installs a process-global accession → tar-path index.
// Calling it again replaces the index wholesale; it is expected to be
// called once at startup, not interleaved with GetDatamuleFiling calls.
func UseDatamuleStorage(pathsByAccession map[string]string) {
	idx := &DatamuleIndex{pathsByAccession: map[string]string{}}
	for k, v := range pathsByAccession {
		idx.pathsByAccession[normalizeAccession(k)] = v
	}
	datamuleIndex = idx
}

// GetDatamuleFiling resolves an accession number through the configured
// datamule index and loads the matching filing from its tar archive.
func GetDatamuleFiling(accessionNo string) (*FilingSGML, error) {
	if datamuleIndex == nil {
		return nil, fmt.Errorf("datamule storage not configured: call UseDatamuleStorage first")
	}
	tarPath, ok := datamuleIndex.pathsByAccession[normalizeAccession(accessionNo)]
	if !ok {
		return nil, &SECFilingNotFoundError{Detail: fmt.Sprintf("accession %s not indexed in datamule storage", accessionNo)}
	}
	return LoadFilingFromTarFile(tarPath, accessionNo)
}

// GetDatamuleFilingFromURL resolves a URL-shaped submission source (an
// EDGAR Archives URL rather than a bare accession number) through the
// configured datamule index, recovering the accession number first via
// ExtractMetadataFromURL.
func GetDatamuleFilingFromURL(url string) (*FilingSGML, error) {
	meta, err := ExtractMetadataFromURL(url)
	if err != nil {
		return nil, err
	}
	return GetDatamuleFiling(meta.Accession)
}

func normalizeAccession(accession string) string {
	accession = strings.TrimSpace(accession)
	if strings.Contains(accession, "-") {
		return accession
	}
	if len(accession) == 18 {
		return accession[:10] + "-" + accession[10:12] + "-" + accession[12:]
	}
	return accession
}

// datamuleDocInfo is one entry of a metadata.json "documents" array.
type datamuleDocInfo struct {
	Filename    string `json:"filename"`
	Type        string `json:"type"`
	Sequence    string `json:"sequence"`
	Description string `json:"description"`
}

// LoadFilingFromTarBytes loads a filing from an in-memory datamule tar
// archive. If accessionNo is empty, the first metadata.json found is used
// (single-filing tar layout); otherwise the matching `<accession>/` prefix
// is located (batch tar layout).
func LoadFilingFromTarBytes(data []byte, accessionNo string) (*FilingSGML, error) {
	tr := tar.NewReader(bytes.NewReader(data))

	type entry struct {
		name string
		body []byte
	}
	var entries []entry
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar: %w", err)
		}
		if hdr.Typeflag == tar.TypeDir {
			continue
		}
		body, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("failed to read tar member %s: %w", hdr.Name, err)
		}
		entries = append(entries, entry{name: hdr.Name, body: body})
	}

	var prefix string
	var metadataBody []byte
	target := normalizeAccession(accessionNo)

	if accessionNo == "" {
		for _, e := range entries {
			if strings.HasSuffix(e.name, "metadata.json") {
				metadataBody = e.body
				prefix = prefixOf(e.name)
				break
			}
		}
	} else {
		for _, e := range entries {
			if !strings.HasSuffix(e.name, "metadata.json") {
				continue
			}
			var m map[string]any
			if err := json.Unmarshal(e.body, &m); err != nil {
				continue
			}
			found := normalizeAccession(metadataString(m, "accession-number", "accession_number", "accessionNumber"))
			if found == target {
				metadataBody = e.body
				prefix = prefixOf(e.name)
				break
			}
		}
	}

	if metadataBody == nil {
		return nil, &SECFilingNotFoundError{Detail: fmt.Sprintf("no metadata.json found for accession %q in tar", accessionNo)}
	}

	var metadata map[string]any
	if err := json.Unmarshal(metadataBody, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata.json: %w", err)
	}

	var docInfos []datamuleDocInfo
	if rawDocs, ok := metadata["documents"].([]any); ok {
		for _, rd := range rawDocs {
			if m, ok := rd.(map[string]any); ok {
				docInfos = append(docInfos, datamuleDocInfo{
					Filename:    metadataString(m, "filename"),
					Type:        metadataString(m, "type"),
					Sequence:    metadataString(m, "sequence"),
					Description: metadataString(m, "description"),
				})
			}
		}
	}
	docInfoByFilename := map[string]datamuleDocInfo{}
	for _, d := range docInfos {
		docInfoByFilename[d.Filename] = d
	}

	header := filingHeaderFromDatamuleMetadata(metadata)

	filing := &FilingSGML{
		Header:              header,
		documentsBySequence: map[string][]*SGMLDocument{},
		documentsByName:     map[string]*SGMLDocument{},
	}

	seq := 1
	for _, e := range entries {
		if strings.HasSuffix(e.name, "metadata.json") {
			continue
		}
		if prefix != "" && !strings.HasPrefix(e.name, prefix) {
			continue
		}
		filename := strings.TrimPrefix(e.name, prefix)

		body := e.body
		if isZstdCompressed(body) {
			decompressed, err := decompressZstd(body)
			if err == nil {
				body = decompressed
			}
		}

		docSeq := strconv.Itoa(seq)
		docType := inferDatamuleDocType(filename)
		docDesc := ""
		if info, ok := docInfoByFilename[filename]; ok {
			if info.Sequence != "" {
				docSeq = info.Sequence
			}
			if info.Type != "" {
				docType = info.Type
			}
			docDesc = info.Description
		}

		doc := &SGMLDocument{
			Type:        docType,
			Sequence:    docSeq,
			Filename:    filename,
			Description: docDesc,
			rawContent:  string(body),
		}
		filing.documentsBySequence[docSeq] = append(filing.documentsBySequence[docSeq], doc)
		filing.documentsByName[filename] = doc

		attachment := Attachment{
			Sequence:     docSeq,
			Document:     filename,
			DocumentType: docType,
			Description:  docDesc,
			SGML:         doc,
		}
		if docSeq == "1" {
			filing.Primary = append(filing.Primary, attachment)
			filing.Documents = append(filing.Documents, attachment)
		} else if dataFileExtension(filename) {
			filing.DataFiles = append(filing.DataFiles, attachment)
		} else {
			filing.Documents = append(filing.Documents, attachment)
		}

		seq++
	}

	return filing, nil
}

// LoadFilingFromTarFile opens a tar file on disk (optionally gzip-wrapped,
// per the submission source's accepted encodings) and loads one filing
// from it.
func LoadFilingFromTarFile(path string, accessionNo string) (*FilingSGML, error) {
	data, err := readMaybeGzipFile(path)
	if err != nil {
		return nil, err
	}
	return LoadFilingFromTarBytes(data, accessionNo)
}

func readMaybeGzipFile(p string) ([]byte, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	if strings.HasSuffix(p, ".gz") {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip tar %s: %w", p, err)
		}
		defer gz.Close()
		return io.ReadAll(gz)
	}
	return data, nil
}

func prefixOf(metadataPath string) string {
	dir := path.Dir(metadataPath)
	if dir == "." {
		return ""
	}
	return dir + "/"
}

func metadataString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			switch t := v.(type) {
			case string:
				if t != "" {
					return t
				}
			case float64:
				return strconv.FormatFloat(t, 'f', -1, 64)
			}
		}
	}
	return ""
}

func inferDatamuleDocType(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".htm", ".html":
		return "HTML"
	case ".xml", ".xsd":
		return "XML"
	case ".txt":
		return "TEXT"
	case ".json":
		return "JSON"
	case ".jpg", ".jpeg", ".png", ".gif":
		return "GRAPHIC"
	case ".pdf":
		return "PDF"
	case ".xlsx":
		return "EXCEL"
	case ".zip":
		return "ZIP"
	default:
		return strings.ToUpper(strings.TrimPrefix(ext, "."))
	}
}

// filingHeaderFromDatamuleMetadata builds a FilingHeader from a
// metadata.json dict, accepting both shapes described in the datamule tar
// layout: flat snake_case/camelCase keys, and the nested kebab-case shape
// (filer.company-data.conformed-name) some datamule exports use.
func filingHeaderFromDatamuleMetadata(metadata map[string]any) *FilingHeader {
	meta := newFilingMetadata()

	accession := normalizeAccession(metadataString(metadata, "accession-number", "accession_number", "accessionNumber"))
	if accession != "" {
		meta.Update("ACCESSION NUMBER", accession)
	}
	if form := metadataString(metadata, "form-type", "form_type", "formType"); form != "" {
		meta.Update("CONFORMED SUBMISSION TYPE", form)
	}
	if filingDate := metadataString(metadata, "filing-date", "filing_date", "filingDate"); filingDate != "" {
		meta.Update("FILED AS OF DATE", strings.ReplaceAll(filingDate, "-", ""))
	}
	if period := metadataString(metadata, "period-of-report", "period_of_report", "periodOfReport"); period != "" {
		meta.Update("CONFORMED PERIOD OF REPORT", strings.ReplaceAll(period, "-", ""))
	}
	if docCount := metadataString(metadata, "document-count", "document_count", "documentCount"); docCount != "" {
		meta.Update("PUBLIC DOCUMENT COUNT", docCount)
	}

	header := &FilingHeader{FilingMetadata: meta}

	filerData := nestedFilerBlock(metadata)
	if filerData == nil {
		filerData = metadata
	}

	cik := metadataString(filerData, "cik")
	companyName := metadataString(filerData, "conformed-name", "company-name", "company_name", "companyName")
	if cik != "" || companyName != "" {
		sic := metadataString(filerData, "sic", "standard-industrial-classification", "standard_industrial_classification")
		irs := metadataString(filerData, "irs-number", "irs_number", "irsNumber")
		stateOfInc := metadataString(filerData, "state-of-incorporation", "state_of_incorporation", "stateOfIncorporation")
		fye := metadataString(filerData, "fiscal-year-end", "fiscal_year_end", "fiscalYearEnd")

		form := metadataString(filerData, "form-type", "form_type", "formType")
		fileNumber := metadataString(filerData, "file-number", "file_number", "fileNumber")
		secAct := metadataString(filerData, "sec-act", "sec_act", "act")
		filmNumber := metadataString(filerData, "film-number", "film_number", "filmNumber")

		header.Filers = append(header.Filers, Filer{
			CompanyInformation: CompanyInformation{
				Name: companyName, CIK: cik, SIC: sic, IRSNumber: irs,
				StateOfIncorporation: stateOfInc, FiscalYearEnd: fye,
			},
			FilingInformation: FilingInformation{
				Form: form, FileNumber: fileNumber, SECAct: secAct, FilmNumber: filmNumber,
			},
			BusinessAddress: addressFromDatamule(filerData, "business-address", "business_address", "businessAddress"),
			MailingAddress:  addressFromDatamule(filerData, "mailing-address", "mailing_address", "mailingAddress"),
		})
	}

	return header
}

// nestedFilerBlock locates the "filer" sub-object used by the nested
// kebab-case metadata shape; the flat shape has no such key and this
// returns nil, signalling the caller to read fields off the root map.
func nestedFilerBlock(metadata map[string]any) map[string]any {
	if filer, ok := metadata["filer"].(map[string]any); ok {
		merged := map[string]any{}
		for k, v := range filer {
			merged[k] = v
		}
		if companyData, ok := filer["company-data"].(map[string]any); ok {
			for k, v := range companyData {
				merged[k] = v
			}
		}
		if filingValues, ok := filer["filing-values"].(map[string]any); ok {
			for k, v := range filingValues {
				merged[k] = v
			}
		}
		return merged
	}
	return nil
}

func addressFromDatamule(m map[string]any, keys ...string) Address {
	var raw map[string]any
	for _, k := range keys {
		if v, ok := m[k].(map[string]any); ok {
			raw = v
			break
		}
	}
	if raw == nil {
		return Address{}
	}
	return Address{
		Street1:        metadataString(raw, "street1", "street_1"),
		Street2:        metadataString(raw, "street2", "street_2"),
		City:           metadataString(raw, "city"),
		StateOrCountry: metadataString(raw, "state", "state_or_country"),
		Zipcode:        metadataString(raw, "zipcode", "zip"),
	}
}
