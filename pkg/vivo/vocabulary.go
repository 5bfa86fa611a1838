// pkg/vivo/vocabulary.go

// Package vivo maps person-update records onto the VIVO person and position
// model.
package vivo

// Classes
const (
	TypePerson           = "foaf:Person"
	TypeUFEntity         = "ufVivo:UFEntity"
	TypeUFCurrentEntity  = "ufVivo:UFCurrentEntity"
	TypePosition         = "vivo:Position"
	TypeDateTimeInterval = "vivo:DateTimeInterval"
	TypeDateTimeValue    = "vivo:DateTimeValue"
)

// Properties
const (
	PredType              = "rdf:type"
	PredLabel             = "rdfs:label"
	PredUFID              = "ufVivo:ufid"
	PredDeptID            = "ufVivo:deptID"
	PredGatorlink         = "ufVivo:gatorlink"
	PredHomeDept          = "ufVivo:homeDept"
	PredHarvestedBy       = "ufVivo:harvestedBy"
	PredDateHarvested     = "ufVivo:dateHarvested"
	PredFirstName         = "foaf:firstName"
	PredLastName          = "foaf:lastName"
	PredMiddleName        = "vivo:middleName"
	PredPrefixName        = "bibo:prefixName"
	PredSuffixName        = "bibo:suffixName"
	PredPrimaryEmail      = "vivo:primaryEmail"
	PredPhoneNumber       = "vivo:phoneNumber"
	PredFaxNumber         = "vivo:faxNumber"
	PredPreferredTitle    = "vivo:preferredTitle"
	PredPersonInPosition  = "vivo:personInPosition"
	PredPositionForPerson = "vivo:positionForPerson"
	PredPositionInOrg     = "vivo:positionInOrganization"
	PredOrgForPosition    = "vivo:organizationForPosition"
	PredDateTimeInterval  = "vivo:dateTimeInterval"
	PredStart             = "vivo:start"
	PredEnd               = "vivo:end"
	PredDateTime          = "vivo:dateTime"
	PredDateTimePrecision = "vivo:dateTimePrecision"
	PrecisionYearMonthDay = "vivo:yearMonthDayPrecision"
)

const dateTimeLayout = "2006-01-02T15:04:05"
