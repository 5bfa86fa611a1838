// pkg/ingest/validator.go
package ingest

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mconlon17/vivo-person-ingest/pkg/cleaner"
	"github.com/mconlon17/vivo-person-ingest/pkg/exceptions"
	"github.com/mconlon17/vivo-person-ingest/pkg/lookup"
	"github.com/mconlon17/vivo-person-ingest/pkg/model"
	"github.com/mconlon17/vivo-person-ingest/pkg/vivo"
)

// DateLayout is the only accepted form of START_DATE and END_DATE
const DateLayout = "2006-01-02"

// ReferenceFinder resolves a tagged property value to the entity holding it
type ReferenceFinder interface {
	FindReference(ctx context.Context, tag, value string) (string, error)
}

// Result is the outcome of validating one row. Record is always populated,
// provenance included, but is only usable when Valid reports true.
type Result struct {
	Record      *model.PersonUpdate
	Diagnostics []Diagnostic
}

// Valid reports whether every gate passed
func (r Result) Valid() bool {
	return len(r.Diagnostics) == 0
}

// ValidatorConfig holds the collaborators of a Validator
type ValidatorConfig struct {
	Registry    *exceptions.Registry
	Finder      ReferenceFinder
	Contact     lookup.Store
	Privacy     lookup.Store
	Positions   *vivo.PositionTypes
	Cleaner     *cleaner.FieldCleaner
	HarvestedAt time.Time
	HarvestedBy string
}

// Validator turns HR rows into person-update records
type Validator struct {
	cfg    ValidatorConfig
	logger *zap.Logger
	depts  map[string]string
}

// NewValidator creates a validator. Every collaborator is required.
func NewValidator(cfg ValidatorConfig, logger *zap.Logger) (*Validator, error) {
	if cfg.Registry == nil || cfg.Finder == nil || cfg.Contact == nil ||
		cfg.Privacy == nil || cfg.Positions == nil || cfg.Cleaner == nil {
		return nil, errors.New("validator is missing a collaborator")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HarvestedAt.IsZero() {
		cfg.HarvestedAt = time.Now()
	}
	return &Validator{
		cfg:    cfg,
		logger: logger,
		depts:  make(map[string]string),
	}, nil
}

// Validate runs every gate against row; a failing gate does not stop the
// ones after it. The error return is reserved for store and lookup failures.
func (v *Validator) Validate(ctx context.Context, row model.PositionRow) (Result, error) {
	ufid := row.UFID
	rec := &model.PersonUpdate{UFID: ufid, HRPosition: row.HRPosition}
	var diags []Diagnostic
	fail := func(d Diagnostic) { diags = append(diags, d) }

	if v.cfg.Registry.IsIdentifierExcluded(ufid) {
		fail(NewDiagnostic(ErrorCategoryPolicy, GateIdentifier, ufid, ufid,
			"%s in ufid_exceptions. Will be skipped.", ufid))
	}

	ref, err := v.cfg.Finder.FindReference(ctx, vivo.PredUFID, ufid)
	if err != nil {
		return Result{}, External("find person "+ufid, err)
	}
	rec.URI = ref
	if ref != "" && v.cfg.Registry.IsReferenceExcluded(ref) {
		fail(NewDiagnostic(ErrorCategoryPolicy, GateReference, ufid, ref,
			"%s in uri_exceptions. Will be skipped.", ref))
	}

	if row.HRPosition {
		v.classify(rec, row.SalaryPlan, fail)
	}

	if v.cfg.Registry.IsDepartmentAllowed(row.DeptID) {
		rec.PositionDeptID = row.DeptID
		orgURI, err := v.department(ctx, row.DeptID)
		if err != nil {
			return Result{}, err
		}
		rec.PositionOrgURI = orgURI
		if orgURI == "" {
			fail(NewDiagnostic(ErrorCategoryDataQuality, GateDepartment, ufid, row.DeptID,
				"%s has deptid %s not found.", ufid, row.DeptID))
		}
	} else {
		fail(NewDiagnostic(ErrorCategoryPolicy, GateDepartment, ufid, row.DeptID,
			"%s has position in department %s which is on the department exception list. No position will be added.",
			ufid, row.DeptID))
	}

	fields, ok, err := v.cfg.Privacy.Get(ctx, ufid)
	if err != nil {
		return Result{}, External("read "+v.cfg.Privacy.Name(), err)
	}
	if !ok {
		fail(NewDiagnostic(ErrorCategoryDataQuality, GatePrivacy, ufid, "",
			"%s not found in privacy data", ufid))
	} else if model.PrivacyFromFields(fields).Protected() {
		fail(NewDiagnostic(ErrorCategoryPolicy, GatePrivacy, ufid, "Y",
			"%s has protect flag Y", ufid))
	}

	fields, ok, err = v.cfg.Contact.Get(ctx, ufid)
	if err != nil {
		return Result{}, External("read "+v.cfg.Contact.Name(), err)
	}
	if !ok {
		fail(NewDiagnostic(ErrorCategoryDataQuality, GateContact, ufid, "",
			"%s not found in contact data", ufid))
	} else {
		contact := model.ContactFromFields(fields)
		v.copyContact(rec, contact, row)
		if err := v.homeDepartment(ctx, rec, contact.HomeDept, fail); err != nil {
			return Result{}, err
		}
	}

	if rec.StartDate, ok = parseDate(row.StartDate); !ok {
		fail(NewDiagnostic(ErrorCategoryDataQuality, GateStartDate, ufid, row.StartDate,
			"%s invalid start date %s", ufid, row.StartDate))
	}
	if rec.EndDate, ok = parseDate(row.EndDate); !ok {
		fail(NewDiagnostic(ErrorCategoryDataQuality, GateEndDate, ufid, row.EndDate,
			"%s invalid end date %s", ufid, row.EndDate))
	}

	if row.JobCodeDescription != "" {
		rec.PositionLabel = v.cfg.Cleaner.Clean(ufid, model.ColJobCodeDescription, cleaner.OpImproveTitle, row.JobCodeDescription)
		if v.cfg.Registry.IsLabelExcluded(rec.PositionLabel) {
			fail(NewDiagnostic(ErrorCategoryPolicy, GatePositionLabel, ufid, rec.PositionLabel,
				"%s has position description %s found in position exceptions. The position will not be added.",
				ufid, rec.PositionLabel))
		}
	}

	rec.DateHarvested = v.cfg.HarvestedAt
	rec.HarvestedBy = v.cfg.HarvestedBy

	v.cfg.Cleaner.Flush()
	return Result{Record: rec, Diagnostics: diags}, nil
}

func (v *Validator) classify(rec *model.PersonUpdate, plan string, fail func(Diagnostic)) {
	positionType, ok := v.cfg.Positions.Classify(plan)
	if !ok {
		fail(NewDiagnostic(ErrorCategoryDataQuality, GateSalaryPlan, rec.UFID, plan,
			"%s invalid salary plan %s", rec.UFID, plan))
		return
	}
	rec.PositionType = positionType

	personType, ok := v.cfg.Positions.PersonType(positionType)
	if !ok {
		fail(NewDiagnostic(ErrorCategoryDataQuality, GatePersonType, rec.UFID, positionType,
			"%s has position type %s not in person_type_table", rec.UFID, positionType))
		return
	}
	rec.PersonType = personType
}

func (v *Validator) copyContact(rec *model.PersonUpdate, c model.ContactRecord, row model.PositionRow) {
	clean := func(field string, op cleaner.Operation, value string) string {
		return v.cfg.Cleaner.Clean(rec.UFID, field, op, value)
	}

	rec.GivenName = clean(model.FieldFirstName, cleaner.OpTitleCase, c.FirstName)
	rec.FamilyName = clean(model.FieldLastName, cleaner.OpTitleCase, c.LastName)
	rec.AdditionalName = clean(model.FieldMiddleName, cleaner.OpTitleCase, c.MiddleName)
	rec.HonorificSuffix = clean(model.FieldNameSuffix, cleaner.OpTitleCase, c.NameSuffix)
	rec.HonorificPrefix = clean(model.FieldNamePrefix, cleaner.OpTitleCase, c.NamePrefix)
	rec.DisplayName = clean(model.FieldDisplayName, cleaner.OpDisplayName, c.DisplayName)
	rec.Gatorlink = clean(model.FieldGatorlink, cleaner.OpLowerCase, c.Gatorlink)

	// An all upper-case working title is the HR job code; use the job code
	// description instead. A blank but present title counts as upper case.
	if c.WorkingTitle != "" {
		title := strings.TrimSpace(c.WorkingTitle)
		if strings.ToUpper(title) == title {
			rec.Title = clean(model.ColJobCodeDescription, cleaner.OpImproveTitle, row.JobCodeDescription)
		} else {
			rec.PreferredTitle = title
		}
	}

	rec.PrimaryEmail = clean(model.FieldEmail, cleaner.OpRepairEmail, c.Email)
	rec.Phone = clean(model.FieldPhone, cleaner.OpRepairPhone, c.Phone)
	rec.Fax = clean(model.FieldFax, cleaner.OpRepairPhone, c.Fax)
}

func (v *Validator) homeDepartment(ctx context.Context, rec *model.PersonUpdate, deptID string, fail func(Diagnostic)) error {
	if !v.cfg.Registry.IsDepartmentAllowed(deptID) {
		fail(NewDiagnostic(ErrorCategoryPolicy, GateHomeDepartment, rec.UFID, deptID,
			"%s has home department on exception list. This person will not be added to VIVO.", rec.UFID))
		return nil
	}

	rec.HomeDeptID = deptID
	uri, err := v.department(ctx, deptID)
	if err != nil {
		return err
	}
	rec.HomeDeptURI = uri
	if uri == "" {
		fail(NewDiagnostic(ErrorCategoryDataQuality, GateHomeDepartment, rec.UFID, deptID,
			"%s has home department deptid %s not found in VIVO", rec.UFID, deptID))
	}
	return nil
}

// department resolves a department id, remembering every answer for the
// rest of the run. An empty id never resolves.
func (v *Validator) department(ctx context.Context, deptID string) (string, error) {
	if deptID == "" {
		return "", nil
	}
	if uri, ok := v.depts[deptID]; ok {
		return uri, nil
	}
	uri, err := v.cfg.Finder.FindReference(ctx, vivo.PredDeptID, deptID)
	if err != nil {
		return "", External("find department "+deptID, err)
	}
	v.depts[deptID] = uri
	return uri, nil
}

// parseDate returns nil for an empty value and false for a malformed one
func parseDate(value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, false
	}
	return &t, true
}
