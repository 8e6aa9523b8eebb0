package projectrequest

// Status represents the lifecycle state of an inbound lead.
type Status string

const (
	StatusOpen      Status = "open"
	StatusContacted Status = "contacted"
	StatusAssigned  Status = "assigned"
	StatusSiteVisit Status = "site_visit"
	StatusConverted Status = "converted_to_project"
	StatusLost      Status = "lost"
)

// transitions is the single source of truth for the lead lifecycle. Both
// the server-side enforcement and the UI hints read it, so the two cannot
// drift. LOST is reopenable; CONVERTED only allows a follow-up site visit.
var transitions = map[Status][]Status{
	StatusOpen:      {StatusContacted, StatusAssigned, StatusLost},
	StatusContacted: {StatusAssigned, StatusSiteVisit, StatusLost, StatusOpen},
	StatusAssigned:  {StatusSiteVisit, StatusContacted, StatusLost, StatusConverted},
	StatusSiteVisit: {StatusConverted, StatusAssigned, StatusLost},
	StatusConverted: {StatusSiteVisit},
	StatusLost:      {StatusOpen, StatusContacted, StatusAssigned, StatusSiteVisit},
}

var labels = map[Status]string{
	StatusOpen:      "Open",
	StatusContacted: "Contacted",
	StatusAssigned:  "Assigned to engineer",
	StatusSiteVisit: "Site visit scheduled",
	StatusConverted: "Converted to project",
	StatusLost:      "Lost",
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Label returns the human-readable name of the status, used as the
// default history note.
func (s Status) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}

	return string(s)
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}

	return false
}

// ValidTransitions returns the statuses reachable from the current one.
func ValidTransitions(from Status) []Status {
	targets := transitions[from]

	out := make([]Status, len(targets))
	copy(out, targets)

	return out
}
