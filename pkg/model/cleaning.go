// pkg/model/cleaning.go
package model

// FieldRepair records one normalization applied to a source value
type FieldRepair struct {
	UFID      string // Person the value belongs to
	Field     string // Source column (e.g. "UF_BUSINESS_PHONE")
	Original  string // Value as read
	Repaired  string // Value after normalization
	Operation string // Normalization performed (e.g. "repair_phone")
}
