package models

// RunReminderRequest represents a request to run a scan/dispatch cycle for
// one audience and horizon
type RunReminderRequest struct {
	Audience string  `json:"audience" binding:"required"`
	Horizon  Horizon `json:"horizon" binding:"required"`
}

// ScanResponse represents the outcome of a synchronous scan invocation
type ScanResponse struct {
	Audience  string  `json:"audience"`
	Horizon   Horizon `json:"horizon"`
	Suspended bool    `json:"suspended"`
	Reports   int     `json:"reports"`
}

// StatusResponse represents the persisted state of one (audience, horizon) key
type StatusResponse struct {
	Audience      string     `json:"audience"`
	Horizon       Horizon    `json:"horizon"`
	Gate          ScanStatus `json:"gate"`
	Checkpoint    bool       `json:"checkpoint"`              // a resume checkpoint exists
	ResumeCursor  int        `json:"resumeCursor"`            // cursor of the pending checkpoint, if any
	ActiveTrigger string     `json:"activeTrigger,omitempty"` // id of the owned continuation trigger, if any
}
