// Package nudge contains the proactive alert domain model. Nudges are
// read-only within a session; they are produced by the record store or the
// static sample data.
package nudge

// Category classifies what a nudge is about.
type Category string

const (
	CategoryRisk        Category = "Risk"
	CategoryOpportunity Category = "Opportunity"
	CategoryCompliance  Category = "Compliance"
)

// IsValid checks that the category is one of the known values.
func (c Category) IsValid() bool {
	switch c {
	case CategoryRisk, CategoryOpportunity, CategoryCompliance:
		return true
	default:
		return false
	}
}

// Severity indicates how urgent a nudge is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// IsValid checks that the severity is one of the known values.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	default:
		return false
	}
}

// Nudge is a short proactive alert surfaced to a student.
type Nudge struct {
	ID          string
	Category    Category
	Severity    Severity
	Message     string
	Timestamp   string
	ActionLabel string // optional
	ActionLink  string // optional
}
