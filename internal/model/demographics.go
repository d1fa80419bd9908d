package model

import "time"

// ExternalIdentifier links the patient to an identity in another system.
type ExternalIdentifier struct {
	System string `json:"system"`
	Value  string `json:"value"`
}

// CareTeamMembership records one staff member's role on the patient's team.
type CareTeamMembership struct {
	StaffKey string `json:"staff_key"`
	RoleCode string `json:"role_code"`
	Lead     bool   `json:"lead,omitempty"`
}

// Demographics is the non-record portion of a patient snapshot.
type Demographics struct {
	Key                 string               `json:"key"`
	FirstName           string               `json:"first_name"`
	LastName            string               `json:"last_name"`
	BirthDate           time.Time            `json:"birth_date"`
	Sex                 string               `json:"sex"`
	ExternalIdentifiers []ExternalIdentifier `json:"external_identifiers,omitempty"`
	CareTeam            []CareTeamMembership `json:"care_team,omitempty"`
	Coverages           []Coverage           `json:"coverages,omitempty"`
}

// Age returns the patient's age in whole years at the given instant.
func (d Demographics) Age(at time.Time) int {
	years := at.Year() - d.BirthDate.Year()
	anniversary := d.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}

// FullName joins the first and last name for display.
func (d Demographics) FullName() string {
	switch {
	case d.FirstName == "":
		return d.LastName
	case d.LastName == "":
		return d.FirstName
	default:
		return d.FirstName + " " + d.LastName
	}
}

// ActiveCoverages returns the coverages marked active whose effective period
// covers the given instant.
func (d Demographics) ActiveCoverages(at time.Time) []Coverage {
	var out []Coverage
	for _, c := range d.Coverages {
		if !c.IsActive {
			continue
		}
		if c.Effective != nil && !c.Effective.Active(at) {
			continue
		}
		out = append(out, c)
	}
	return out
}
