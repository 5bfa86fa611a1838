// pkg/model/person.go
package model

import (
	"strings"
	"time"
)

// Contact and privacy field names
const (
	FieldFirstName    = "FIRST_NAME"
	FieldLastName     = "LAST_NAME"
	FieldMiddleName   = "MIDDLE_NAME"
	FieldNamePrefix   = "NAME_PREFIX"
	FieldNameSuffix   = "NAME_SUFFIX"
	FieldDisplayName  = "DISPLAY_NAME"
	FieldGatorlink    = "GATORLINK"
	FieldWorkingTitle = "WORKINGTITLE"
	FieldEmail        = "UF_BUSINESS_EMAIL"
	FieldPhone        = "UF_BUSINESS_PHONE"
	FieldFax          = "UF_BUSINESS_FAX"
	FieldHomeDept     = "HOME_DEPT"
	FieldProtectFlag  = "UF_PROTECT_FLG"
)

// PositionRow is one HR record. Dates are kept as read; the validator parses
// them.
type PositionRow struct {
	Line               int // 1-based data row number in the source
	UFID               string
	HRPosition         bool
	DeptID             string
	SalaryPlan         string
	JobCodeDescription string
	StartDate          string
	EndDate            string
}

// ParseHRPosition interprets the HR_POSITION cell
func ParseHRPosition(v string) bool {
	return strings.TrimSpace(v) == "1"
}

// ContactRecord holds the contact lookup entry of one person
type ContactRecord struct {
	FirstName    string
	LastName     string
	MiddleName   string
	NamePrefix   string
	NameSuffix   string
	DisplayName  string
	Gatorlink    string
	WorkingTitle string
	Email        string
	Phone        string
	Fax          string
	HomeDept     string
}

// ContactFromFields builds a contact record from a lookup entry
func ContactFromFields(f map[string]string) ContactRecord {
	return ContactRecord{
		FirstName:    f[FieldFirstName],
		LastName:     f[FieldLastName],
		MiddleName:   f[FieldMiddleName],
		NamePrefix:   f[FieldNamePrefix],
		NameSuffix:   f[FieldNameSuffix],
		DisplayName:  f[FieldDisplayName],
		Gatorlink:    f[FieldGatorlink],
		WorkingTitle: f[FieldWorkingTitle],
		Email:        f[FieldEmail],
		Phone:        f[FieldPhone],
		Fax:          f[FieldFax],
		HomeDept:     f[FieldHomeDept],
	}
}

// PrivacyRecord holds the privacy lookup entry of one person
type PrivacyRecord struct {
	ProtectFlag string
}

// Protected reports whether the person must be left out entirely
func (p PrivacyRecord) Protected() bool {
	return strings.TrimSpace(p.ProtectFlag) == "Y"
}

// PrivacyFromFields builds a privacy record from a lookup entry
func PrivacyFromFields(f map[string]string) PrivacyRecord {
	return PrivacyRecord{ProtectFlag: f[FieldProtectFlag]}
}

// PersonUpdate is the validated, normalized form of one HR row joined with
// its contact data. Empty strings and nil dates mean absent.
type PersonUpdate struct {
	UFID string `json:"ufid"`
	URI  string `json:"uri,omitempty"` // Existing knowledge-base reference

	// Position
	HRPosition     bool       `json:"hr_position"`
	PositionDeptID string     `json:"position_deptid,omitempty"`
	PositionOrgURI string     `json:"position_orguri,omitempty"`
	PositionType   string     `json:"position_type,omitempty"`
	PersonType     string     `json:"person_type,omitempty"`
	PositionLabel  string     `json:"position_label,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`

	// Contact
	GivenName       string `json:"given_name,omitempty"`
	FamilyName      string `json:"family_name,omitempty"`
	AdditionalName  string `json:"additional_name,omitempty"`
	HonorificPrefix string `json:"honorific_prefix,omitempty"`
	HonorificSuffix string `json:"honorific_suffix,omitempty"`
	DisplayName     string `json:"display_name,omitempty"`
	Gatorlink       string `json:"gatorlink,omitempty"`
	Title           string `json:"title,omitempty"`
	PreferredTitle  string `json:"preferred_title,omitempty"`
	PrimaryEmail    string `json:"primary_email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Fax             string `json:"fax,omitempty"`
	HomeDeptID      string `json:"home_deptid,omitempty"`
	HomeDeptURI     string `json:"homedept_uri,omitempty"`

	// Provenance
	DateHarvested time.Time `json:"date_harvested"`
	HarvestedBy   string    `json:"harvested_by"`
}

// HasPosition reports whether a position should be asserted for the person
func (p *PersonUpdate) HasPosition() bool {
	return p.HRPosition && p.PositionOrgURI != "" && p.PositionType != ""
}

// BestTitle returns the preferred title, falling back to the title derived
// from the job code
func (p *PersonUpdate) BestTitle() string {
	if p.PreferredTitle != "" {
		return p.PreferredTitle
	}
	return p.Title
}
