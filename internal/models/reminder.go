package models

import "time"

// Horizon is the time window used to decide which work items are due for a reminder
type Horizon string

const (
	// HorizonToday covers items due on or before the current date
	HorizonToday Horizon = "today"
	// HorizonWeek additionally covers items due on one of the next five business days
	HorizonWeek Horizon = "week"
)

// Valid reports whether h is a known horizon value
func (h Horizon) Valid() bool {
	return h == HorizonToday || h == HorizonWeek
}

// ScanStatus is the per-key completion gate value persisted between the scan
// and dispatch stages. Absence of the key means the gate is clear.
type ScanStatus string

const (
	ScanStatusPending ScanStatus = "pending"
	ScanStatusDone    ScanStatus = "done"
	// ScanStatusAbsent is never persisted; it is the read-side value for a missing key
	ScanStatusAbsent ScanStatus = "absent"
)

// WorkItem is a single outstanding item extracted from a source row.
// Immutable once extracted.
type WorkItem struct {
	Label    string    `json:"label" bson:"label"`
	Note     string    `json:"note" bson:"note"`
	DueDate  time.Time `json:"dueDate" bson:"dueDate"`
	Assignee string    `json:"assignee" bson:"assignee"`
}

// SourceReport is the set of qualifying items contributed by one source.
// A source that contributes no qualifying items produces no SourceReport.
type SourceReport struct {
	SourceName string     `json:"sourceName" bson:"sourceName"`
	SourceURL  string     `json:"sourceUrl" bson:"sourceUrl"`
	Items      []WorkItem `json:"items" bson:"items"`
}

// AggregationState is the checkpoint payload persisted when a scan suspends.
// ResumeCursor always points at the first not-yet-fully-processed source in
// the enumeration; Accumulated holds at most one report per source, appended
// only once that source has been fully scanned.
type AggregationState struct {
	Accumulated  []SourceReport `json:"accumulated"`
	ResumeCursor int            `json:"resumeCursor"`
}

// ScanResult is what a single scan invocation produced
type ScanResult struct {
	Suspended bool           `json:"suspended"`
	Reports   []SourceReport `json:"reports,omitempty"`
}

// SourceInfo describes one tabular source in enumeration order
type SourceInfo struct {
	Name     string `json:"name" bson:"name"`
	URL      string `json:"url" bson:"url"`
	Position int    `json:"position" bson:"position"`
	Hidden   bool   `json:"hidden" bson:"hidden"`
}

// TaskRow is a single data row of a source
type TaskRow struct {
	Item      string     `json:"item" bson:"item"`
	Summary   string     `json:"summary" bson:"summary"`
	DueDate   *time.Time `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	Completed bool       `json:"completed" bson:"completed"`
	Assignee  string     `json:"assignee" bson:"assignee"`
}

// AudienceMode selects the recipient shape of an audience
type AudienceMode string

const (
	// AudienceModeBroadcast sends one report to a flat recipient group
	AudienceModeBroadcast AudienceMode = "broadcast"
	// AudienceModeIndividual sends each member their own filtered report
	AudienceModeIndividual AudienceMode = "individual"
)

// Recipient is a broadcast-group member
type Recipient struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
}

// Member is an individually-addressed recipient carrying up to two
// destination document references, one per horizon
type Member struct {
	Name       string `json:"name" bson:"name"`
	Email      string `json:"email" bson:"email"`
	TodayDocID string `json:"todayDocId" bson:"todayDocId"`
	WeekDocID  string `json:"weekDocId" bson:"weekDocId"`
}

// DocID returns the member's destination document for the given horizon
func (m Member) DocID(h Horizon) string {
	if h == HorizonToday {
		return m.TodayDocID
	}
	return m.WeekDocID
}

// ScheduleEntry is a recurring kick-off schedule for one horizon of an audience
type ScheduleEntry struct {
	Horizon Horizon `json:"horizon" bson:"horizon"`
	Cron    string  `json:"cron" bson:"cron"`
}

// AudienceConfig is the read-only configuration snapshot for one audience,
// resolved from storage at call time rather than held as ambient state.
type AudienceConfig struct {
	Name       string          `json:"name" bson:"name"`
	Mode       AudienceMode    `json:"mode" bson:"mode"`
	Recipients []Recipient     `json:"recipients,omitempty" bson:"recipients,omitempty"`
	Members    []Member        `json:"members,omitempty" bson:"members,omitempty"`
	TodayDocID string          `json:"todayDocId" bson:"todayDocId"`
	WeekDocID  string          `json:"weekDocId" bson:"weekDocId"`
	TrackerURL string          `json:"trackerUrl" bson:"trackerUrl"`
	Schedules  []ScheduleEntry `json:"schedules,omitempty" bson:"schedules,omitempty"`
}

// DocID returns the broadcast destination document for the given horizon
func (a AudienceConfig) DocID(h Horizon) string {
	if h == HorizonToday {
		return a.TodayDocID
	}
	return a.WeekDocID
}

// ReportTable is one rendered table of a report document
type ReportTable struct {
	SourceName string     `json:"sourceName"`
	SourceURL  string     `json:"sourceUrl"`
	Columns    []string   `json:"columns"`
	Rows       [][]string `json:"rows"`
}

// ReportDocument is a fully built destination document, replaced wholesale on
// every render so repeated dispatch of the same result is idempotent
type ReportDocument struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	HeadingText string        `json:"headingText"`
	HeadingURL  string        `json:"headingUrl"`
	Tables      []ReportTable `json:"tables"`
	HTML        string        `json:"html"`
}
