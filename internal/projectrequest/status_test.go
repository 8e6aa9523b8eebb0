package projectrequest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/enerjios/enerjios/internal/projectrequest"
)

func TestStatus_Valid(t *testing.T) {
	valid := []projectrequest.Status{
		projectrequest.StatusOpen,
		projectrequest.StatusContacted,
		projectrequest.StatusAssigned,
		projectrequest.StatusSiteVisit,
		projectrequest.StatusConverted,
		projectrequest.StatusLost,
	}

	for _, s := range valid {
		assert.True(t, s.Valid(), "expected %q to be valid", s)
	}

	assert.False(t, projectrequest.Status("").Valid())
	assert.False(t, projectrequest.Status("archived").Valid())
	assert.False(t, projectrequest.Status("OPEN").Valid())
}

func TestCanTransition(t *testing.T) {
	type testCase struct {
		name string
		from projectrequest.Status
		to   projectrequest.Status
		want bool
	}

	tests := []testCase{
		{"OpenToContacted", projectrequest.StatusOpen, projectrequest.StatusContacted, true},
		{"OpenToAssigned", projectrequest.StatusOpen, projectrequest.StatusAssigned, true},
		{"OpenToLost", projectrequest.StatusOpen, projectrequest.StatusLost, true},
		{"OpenToSiteVisit", projectrequest.StatusOpen, projectrequest.StatusSiteVisit, false},
		{"OpenToConverted", projectrequest.StatusOpen, projectrequest.StatusConverted, false},
		{"ContactedBackToOpen", projectrequest.StatusContacted, projectrequest.StatusOpen, true},
		{"ContactedToConverted", projectrequest.StatusContacted, projectrequest.StatusConverted, false},
		{"AssignedToConverted", projectrequest.StatusAssigned, projectrequest.StatusConverted, true},
		{"SiteVisitToConverted", projectrequest.StatusSiteVisit, projectrequest.StatusConverted, true},
		{"ConvertedToSiteVisit", projectrequest.StatusConverted, projectrequest.StatusSiteVisit, true},
		{"ConvertedToLost", projectrequest.StatusConverted, projectrequest.StatusLost, false},
		{"LostReopened", projectrequest.StatusLost, projectrequest.StatusOpen, true},
		{"LostToConverted", projectrequest.StatusLost, projectrequest.StatusConverted, false},
		{"SelfTransition", projectrequest.StatusOpen, projectrequest.StatusOpen, false},
		{"UnknownFrom", projectrequest.Status("archived"), projectrequest.StatusOpen, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, projectrequest.CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidTransitions(t *testing.T) {
	got := projectrequest.ValidTransitions(projectrequest.StatusConverted)
	assert.Equal(t, []projectrequest.Status{projectrequest.StatusSiteVisit}, got)

	// Every status the table offers must pass CanTransition and vice versa.
	all := []projectrequest.Status{
		projectrequest.StatusOpen,
		projectrequest.StatusContacted,
		projectrequest.StatusAssigned,
		projectrequest.StatusSiteVisit,
		projectrequest.StatusConverted,
		projectrequest.StatusLost,
	}

	for _, from := range all {
		offered := make(map[projectrequest.Status]bool)
		for _, to := range projectrequest.ValidTransitions(from) {
			offered[to] = true
		}

		for _, to := range all {
			assert.Equal(t, offered[to], projectrequest.CanTransition(from, to),
				"table and CanTransition disagree on %s -> %s", from, to)
		}
	}
}

func TestValidTransitions_ReturnsCopy(t *testing.T) {
	first := projectrequest.ValidTransitions(projectrequest.StatusOpen)
	first[0] = projectrequest.StatusConverted

	second := projectrequest.ValidTransitions(projectrequest.StatusOpen)
	assert.NotEqual(t, projectrequest.StatusConverted, second[0])
}

func TestStatus_Label(t *testing.T) {
	assert.Equal(t, "Converted to project", projectrequest.StatusConverted.Label())
	assert.Equal(t, "Assigned to engineer", projectrequest.StatusAssigned.Label())
	assert.Equal(t, "mystery", projectrequest.Status("mystery").Label())
}
