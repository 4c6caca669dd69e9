package edgar

import (
	"regexp"
	"strconv"
	"strings"
)

// Address is a business or mailing address as recorded in a filing header.
type Address struct {
	Street1       string
	Street2       string
	City          string
	StateOrCountry string
	Zipcode       string
}

func (a Address) IsEmpty() bool {
	return a == Address{}
}

// CompanyInformation is the CONFORMED NAME / CIK / SIC / state-of-incorporation
// block shared by filers, issuers, reporting owners and subject companies.
type CompanyInformation struct {
	Name                 string
	CIK                  string
	SIC                  string
	IRSNumber            string
	StateOfIncorporation string
	FiscalYearEnd        string
}

// FilingInformation is the FILE-NUMBER / SEC-ACT / FILM-NUMBER block.
type FilingInformation struct {
	Form        string
	FileNumber  string
	SECAct      string
	FilmNumber  string
}

// FormerCompany records one entry of a company's former-name history.
type FormerCompany struct {
	Name         string
	DateOfChange string
}

// Filer is a role record for a company filing on its own behalf.
type Filer struct {
	CompanyInformation  CompanyInformation
	FilingInformation   FilingInformation
	BusinessAddress     Address
	MailingAddress      Address
	FormerCompanyNames  []FormerCompany
}

// Owner mirrors Filer's shape for an individual or entity filing as a
// reporting owner (Forms 3/4/5, Schedule 13D/G).
type Owner struct {
	Name string
	CIK  string
}

// ReportingOwner pairs the owner's identity with the company/filing blocks
// that accompany it in the header (a reporting owner is itself a filer for
// header purposes).
type ReportingOwner struct {
	Owner               Owner
	CompanyInformation  CompanyInformation
	FilingInformation   FilingInformation
	BusinessAddress     Address
	MailingAddress      Address
}

// Issuer is the security issuer named in a Form 3/4/5 or Schedule 13D/G.
type Issuer struct {
	CompanyInformation CompanyInformation
	BusinessAddress    Address
	MailingAddress     Address
}

// SubjectCompany is the company a Schedule 13D/G or tender offer concerns.
type SubjectCompany struct {
	CompanyInformation  CompanyInformation
	FilingInformation   FilingInformation
	BusinessAddress     Address
	MailingAddress      Address
	FormerCompanyNames  []FormerCompany
}

// FilingMetadata is the loosely-typed key/value header block (ACCESSION
// NUMBER, FILED AS OF DATE, ...) that doesn't fit the structured role
// records. Keys use the header's own spacing, e.g. "FILED AS OF DATE".
type FilingMetadata struct {
	values map[string]string
}

func newFilingMetadata() *FilingMetadata {
	return &FilingMetadata{values: map[string]string{}}
}

func (m *FilingMetadata) Get(key string) string {
	return m.values[key]
}

func (m *FilingMetadata) Update(key, value string) {
	m.values[key] = value
}

// NumDocuments parses "PUBLIC DOCUMENT COUNT" if present.
func (m *FilingMetadata) NumDocuments() (int, bool) {
	v := m.values["PUBLIC DOCUMENT COUNT"]
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FilingHeader is the fully-assembled header for one filing, built either
// from the SUBMISSION dialect's parsed tree or from the SEC-DOCUMENT
// dialect's text block.
type FilingHeader struct {
	FilingMetadata   *FilingMetadata
	Filers           []Filer
	ReportingOwners  []ReportingOwner
	Issuer           *Issuer
	SubjectCompanies []SubjectCompany
}

func (h *FilingHeader) AccessionNumber() string {
	return h.FilingMetadata.Get("ACCESSION NUMBER")
}

func (h *FilingHeader) CIK() string {
	if len(h.Filers) > 0 {
		return h.Filers[0].CompanyInformation.CIK
	}
	if len(h.ReportingOwners) > 0 {
		return h.ReportingOwners[0].CompanyInformation.CIK
	}
	return h.FilingMetadata.Get("CIK")
}

func (h *FilingHeader) Form() string {
	return h.FilingMetadata.Get("CONFORMED SUBMISSION TYPE")
}

func (h *FilingHeader) PeriodOfReport() string {
	return h.FilingMetadata.Get("CONFORMED PERIOD OF REPORT")
}

func (h *FilingHeader) FilingDate() string {
	return h.FilingMetadata.Get("FILED AS OF DATE")
}

// asMap / asList / asString are small helpers for walking the untyped tree
// produced by submissionParser without type-asserting at every call site.
func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asListOfMaps(v any) []map[string]any {
	l, _ := v.([]map[string]any)
	return l
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func companyInformationFrom(companyData map[string]any) CompanyInformation {
	return CompanyInformation{
		Name:                 asString(companyData["CONFORMED-NAME"]),
		CIK:                  asString(companyData["CIK"]),
		SIC:                  asString(companyData["ASSIGNED-SIC"]),
		IRSNumber:            asString(companyData["IRS-NUMBER"]),
		StateOfIncorporation: asString(companyData["STATE-OF-INCORPORATION"]),
		FiscalYearEnd:        asString(companyData["FISCAL-YEAR-END"]),
	}
}

func filingInformationFrom(filingValues map[string]any) FilingInformation {
	return FilingInformation{
		Form:       asString(filingValues["FORM-TYPE"]),
		FileNumber: asString(filingValues["FILE-NUMBER"]),
		SECAct:     asString(filingValues["SEC-ACT"]),
		FilmNumber: asString(filingValues["FILM-NUMBER"]),
	}
}

func addressFrom(addr map[string]any) Address {
	return Address{
		Street1:        asString(addr["STREET1"]),
		Street2:        asString(addr["STREET2"]),
		City:           asString(addr["CITY"]),
		StateOrCountry: asString(addr["STATE"]),
		Zipcode:        asString(addr["ZIP"]),
	}
}

func formerCompaniesFrom(list []map[string]any) []FormerCompany {
	var out []FormerCompany
	for _, fc := range list {
		out = append(out, FormerCompany{
			Name:         asString(fc["FORMER-CONFORMED-NAME"]),
			DateOfChange: asString(fc["DATE-OF-NAME-CHANGE"]),
		})
	}
	return out
}

// parseSubmissionFormatHeader assembles a FilingHeader out of the tree
// produced by the SUBMISSION dialect's stack-based parser. Top-level
// scalar fields (ACCESSION-NUMBER, TYPE, FILING-DATE, PERIOD, CIK) sit
// directly on the tree root; role sections (FILER, REPORTING-OWNER,
// ISSUER, SUBJECT-COMPANY) are nested maps or lists of maps.
func parseSubmissionFormatHeader(tree map[string]any) *FilingHeader {
	metadata := newFilingMetadata()
	metadata.Update("ACCESSION NUMBER", asString(tree["ACCESSION-NUMBER"]))
	metadata.Update("CONFORMED SUBMISSION TYPE", asString(tree["TYPE"]))
	metadata.Update("FILED AS OF DATE", asString(tree["FILING-DATE"]))
	metadata.Update("CONFORMED PERIOD OF REPORT", asString(tree["PERIOD"]))
	metadata.Update("CIK", asString(tree["CIK"]))

	header := &FilingHeader{FilingMetadata: metadata}

	for _, filerData := range asListOfMaps(tree["FILER"]) {
		companyData := asMap(filerData["COMPANY-DATA"])
		filingValues := asMap(filerData["FILING-VALUES"])
		filer := Filer{
			CompanyInformation: companyInformationFrom(companyData),
			FilingInformation:  filingInformationFrom(filingValues),
			BusinessAddress:    addressFrom(asMap(filerData["BUSINESS-ADDRESS"])),
			MailingAddress:     addressFrom(asMap(filerData["MAIL-ADDRESS"])),
			FormerCompanyNames: formerCompaniesFrom(asListOfMaps(companyData["FORMER-COMPANY"])),
		}
		header.Filers = append(header.Filers, filer)
	}

	for _, ownerData := range asListOfMaps(tree["REPORTING-OWNER"]) {
		companyData := asMap(ownerData["COMPANY-DATA"])
		filingValues := asMap(ownerData["FILING-VALUES"])
		ownerRecord := asMap(ownerData["OWNER-DATA"])
		owner := Owner{
			Name: asString(ownerRecord["CONFORMED-NAME"]),
			CIK:  asString(ownerRecord["CIK"]),
		}
		header.ReportingOwners = append(header.ReportingOwners, ReportingOwner{
			Owner:              owner,
			CompanyInformation: companyInformationFrom(companyData),
			FilingInformation:  filingInformationFrom(filingValues),
			BusinessAddress:    addressFrom(asMap(ownerData["BUSINESS-ADDRESS"])),
			MailingAddress:     addressFrom(asMap(ownerData["MAIL-ADDRESS"])),
		})
	}

	if issuerData := asMap(tree["ISSUER"]); issuerData != nil {
		companyData := asMap(issuerData["COMPANY-DATA"])
		header.Issuer = &Issuer{
			CompanyInformation: companyInformationFrom(companyData),
			BusinessAddress:    addressFrom(asMap(issuerData["BUSINESS-ADDRESS"])),
			MailingAddress:     addressFrom(asMap(issuerData["MAIL-ADDRESS"])),
		}
	}

	for _, subjectData := range asListOfMaps(tree["SUBJECT-COMPANY"]) {
		companyData := asMap(subjectData["COMPANY-DATA"])
		filingValues := asMap(subjectData["FILING-VALUES"])
		header.SubjectCompanies = append(header.SubjectCompanies, SubjectCompany{
			CompanyInformation: companyInformationFrom(companyData),
			FilingInformation:  filingInformationFrom(filingValues),
			BusinessAddress:    addressFrom(asMap(subjectData["BUSINESS-ADDRESS"])),
			MailingAddress:     addressFrom(asMap(subjectData["MAIL-ADDRESS"])),
			FormerCompanyNames: formerCompaniesFrom(asListOfMaps(companyData["FORMER-COMPANY"])),
		})
	}

	return header
}

// headerKeyPattern matches a line that starts with a key made only of
// uppercase ASCII letters, digits and hyphens, followed by a colon.
// parseSGMLHeaderText does not apply it: header lines are split on their
// first '>' or ':' without validating the key, so inline HTML/XBRL content
// after </SEC-HEADER> is not filtered out by this pattern.
var headerKeyPattern = regexp.MustCompile(`^[A-Z0-9-]+:`)

// parseSGMLHeaderText parses the legacy SEC-DOCUMENT dialect's tab-indented
// key:value header block into the same FilingHeader shape the SUBMISSION
// dialect produces, so downstream code never has to branch on dialect.
func parseSGMLHeaderText(text string, preprocess bool) *FilingHeader {
	if preprocess {
		text = preprocessOldHeader(text)
	}

	metadata := newFilingMetadata()
	var filers []Filer
	var reportingOwners []ReportingOwner
	var issuer *Issuer
	var subjectCompanies []SubjectCompany

	var currentCompanyData, currentFilingValues, currentBusinessAddress, currentMailAddress map[string]string
	var currentOwnerData map[string]string
	var currentFormerCompanies []FormerCompany
	section := ""

	flushFiler := func() {
		if currentCompanyData == nil {
			return
		}
		filers = append(filers, Filer{
			CompanyInformation: CompanyInformation{
				Name:                 currentCompanyData["COMPANY CONFORMED NAME"],
				CIK:                  currentCompanyData["CENTRAL INDEX KEY"],
				SIC:                  currentCompanyData["STANDARD INDUSTRIAL CLASSIFICATION"],
				IRSNumber:            currentCompanyData["IRS NUMBER"],
				StateOfIncorporation: currentCompanyData["STATE OF INCORPORATION"],
				FiscalYearEnd:        currentCompanyData["FISCAL YEAR END"],
			},
			FilingInformation: FilingInformation{
				Form:       currentFilingValues["FORM TYPE"],
				FileNumber: currentFilingValues["SEC FILE NUMBER"],
				SECAct:     currentFilingValues["SEC ACT"],
				FilmNumber: currentFilingValues["FILM NUMBER"],
			},
			BusinessAddress: Address{
				Street1: currentBusinessAddress["STREET 1"], Street2: currentBusinessAddress["STREET 2"],
				City: currentBusinessAddress["CITY"], StateOrCountry: currentBusinessAddress["STATE"],
				Zipcode: currentBusinessAddress["ZIP"],
			},
			MailingAddress: Address{
				Street1: currentMailAddress["STREET 1"], Street2: currentMailAddress["STREET 2"],
				City: currentMailAddress["CITY"], StateOrCountry: currentMailAddress["STATE"],
				Zipcode: currentMailAddress["ZIP"],
			},
			FormerCompanyNames: currentFormerCompanies,
		})
		currentCompanyData, currentFilingValues, currentBusinessAddress, currentMailAddress = nil, nil, nil, nil
		currentFormerCompanies = nil
	}

	lines := strings.Split(text, "\n")
	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasSuffix(trimmed, ":") && !strings.Contains(trimmed, ">") {
			section = trimmed[:len(trimmed)-1]
			switch section {
			case "FILER":
				flushFiler()
			}
			continue
		}

		// Lines with multiple '>' characters are XBRL inline content
		// trailing the header block; split only on the first one.
		idx := strings.Index(trimmed, ">")
		var key, value string
		if idx >= 0 {
			key = strings.TrimSpace(trimmed[:idx])
			value = strings.TrimSpace(trimmed[idx+1:])
		} else if colonIdx := strings.Index(trimmed, ":"); colonIdx >= 0 {
			key = strings.TrimSpace(trimmed[:colonIdx])
			value = strings.TrimSpace(trimmed[colonIdx+1:])
		} else {
			continue
		}
		if key == "" {
			continue
		}

		switch key {
		case "ACCESSION NUMBER", "CONFORMED SUBMISSION TYPE", "PUBLIC DOCUMENT COUNT",
			"CONFORMED PERIOD OF REPORT", "FILED AS OF DATE", "DATE AS OF CHANGE", "ACCEPTANCE-DATETIME":
			metadata.Update(key, value)
			continue
		}

		switch section {
		case "COMPANY DATA":
			currentCompanyData = ensureMap(currentCompanyData)
			currentCompanyData[key] = value
		case "FILING VALUES":
			currentFilingValues = ensureMap(currentFilingValues)
			currentFilingValues[key] = value
		case "BUSINESS ADDRESS":
			currentBusinessAddress = ensureMap(currentBusinessAddress)
			currentBusinessAddress[key] = value
		case "MAIL ADDRESS":
			currentMailAddress = ensureMap(currentMailAddress)
			currentMailAddress[key] = value
		case "FORMER COMPANY":
			if key == "FORMER CONFORMED NAME" {
				currentFormerCompanies = append(currentFormerCompanies, FormerCompany{Name: value})
			} else if key == "DATE OF NAME CHANGE" && len(currentFormerCompanies) > 0 {
				currentFormerCompanies[len(currentFormerCompanies)-1].DateOfChange = value
			}
		case "OWNER DATA":
			currentOwnerData = ensureMap(currentOwnerData)
			currentOwnerData[key] = value
		}
		_ = currentOwnerData
	}
	flushFiler()

	return &FilingHeader{
		FilingMetadata:   metadata,
		Filers:           filers,
		ReportingOwners:  reportingOwners,
		Issuer:           issuer,
		SubjectCompanies: subjectCompanies,
	}
}

func ensureMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// preprocessOldHeader converts a pre-2000 <TAG>...</TAG>-wrapped header
// into the tab-indented form the rest of the parser expects. Go's RE2
// engine can't express a backreference on the closing tag, so instead of
// matching <TAG>...</TAG> pairs directly, this strips any standalone tag
// line and indents everything else. Filings this old also commonly carry
// stray HTML entities in header values (smart quotes, non-breaking
// spaces), so the text is run through NormalizeText first.
func preprocessOldHeader(text string) string {
	text = string(NormalizeText([]byte(text)))
	lines := strings.Split(text, "\n")
	var out []string
	tagLine := regexp.MustCompile(`^<[^/>]+>.*$`)
	closeTag := regexp.MustCompile(`</?[\w-]+>`)
	for _, line := range lines {
		if tagLine.MatchString(strings.TrimSpace(line)) {
			continue
		}
		out = append(out, "\t"+closeTag.ReplaceAllString(line, ""))
	}
	return strings.Join(out, "\n")
}
