package workflow

import "projmon/internal/models"

// Resolver answers whether a referenced master-data row still exists. A
// reference whose row was deleted counts as missing, never as an error.
type Resolver interface {
	Exists(model any, id uint) bool
}

const (
	ColorRed   = "red"
	ColorAmber = "amber"
	ColorGreen = "green"
)

// Completeness is the derived readiness of a pre-project. Computed at query
// time, never persisted.
type Completeness struct {
	Percent int      `json:"percent"`
	Color   string   `json:"color"`
	Missing []string `json:"missing"`
}

// Evaluate walks the fixed checklist of required fields and returns the
// floor percentage of those present. 100% is the gate for submission.
func Evaluate(p *models.PreProject, ref Resolver) Completeness {
	refOK := func(model any, id *uint) bool {
		if id == nil {
			return false
		}
		if ref == nil {
			return true
		}
		return ref.Exists(model, *id)
	}

	basicLocation := false
	if (p.ParliamentID != nil) != (p.DunID != nil) {
		if p.ParliamentID != nil {
			basicLocation = refOK(&models.Parliament{}, p.ParliamentID)
		} else {
			basicLocation = refOK(&models.Dun{}, p.DunID)
		}
	}

	siteLocation := refOK(&models.Parliament{}, p.SiteParliamentID) &&
		refOK(&models.District{}, p.SiteDistrictID) &&
		refOK(&models.Dun{}, p.SiteDunID)

	hasCost := p.ActualCost.IsPositive() ||
		p.ConsultationCost.IsPositive() ||
		p.LssInspectionCost.IsPositive() ||
		p.SstCost.IsPositive() ||
		p.OtherCost.IsPositive()

	type check struct {
		label string
		ok    bool
	}

	checks := []check{
		{"Project Name", p.Name != ""},
		{"Project Scope", p.Scope != ""},
		{"Implementation Period", p.ImplementationPeriod != ""},
		{"JKKK Name", p.JkkkName != ""},
		{"Residen Category", refOK(&models.ResidenCategory{}, p.ResidenCategoryID)},
		{"Agency Category", refOK(&models.AgencyCategory{}, p.AgencyCategoryID)},
		{"Project Category", refOK(&models.ProjectCategory{}, p.ProjectCategoryID)},
		{"Division", refOK(&models.Division{}, p.DivisionID)},
		{"District", refOK(&models.District{}, p.DistrictID)},
		{"Land Title Status", refOK(&models.LandTitleStatus{}, p.LandTitleStatusID)},
		{"Implementing Agency", refOK(&models.Agency{}, p.ImplementingAgencyID)},
		{"Implementation Method", refOK(&models.ImplementationMethod{}, p.ImplementationMethodID)},
		{"Project Ownership", refOK(&models.ProjectOwnership{}, p.ProjectOwnershipID)},
		{"Parliament / DUN", basicLocation},
		{"Site Location", siteLocation},
		{"Project Cost", hasCost},
	}

	present := 0
	missing := []string{}
	for _, c := range checks {
		if c.ok {
			present++
		} else {
			missing = append(missing, c.label)
		}
	}

	percent := present * 100 / len(checks)

	color := ColorRed
	switch {
	case percent == 100:
		color = ColorGreen
	case percent >= 50:
		color = ColorAmber
	}

	return Completeness{Percent: percent, Color: color, Missing: missing}
}
