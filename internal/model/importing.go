package model

// RawRow is one spreadsheet data row, keyed by column header.
type RawRow map[string]string

// ValidationError describes one violated rule on one field of one row.
// Row is the 1-based data row number matching the source spreadsheet
// (header row excluded) so callers can point users back at their file.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// OutcomeStatus classifies a single row's import result.
type OutcomeStatus string

const (
	OutcomeAccepted          OutcomeStatus = "accepted"
	OutcomeRejectedInvalid   OutcomeStatus = "rejected_validation"
	OutcomeRejectedStorage   OutcomeStatus = "rejected_storage"
	OutcomeRejectedCancelled OutcomeStatus = "rejected_cancelled"
)

// ImportOutcome is the per-row result of a batch import. Exactly one of
// PersistedID (accepted), Errors (validation) or StorageError is set.
type ImportOutcome struct {
	Row          int               `json:"row"`
	Status       OutcomeStatus     `json:"status"`
	PersistedID  string            `json:"persisted_id,omitempty"`
	Errors       []ValidationError `json:"errors,omitempty"`
	StorageError string            `json:"storage_error,omitempty"`
}

// ImportResult aggregates a whole batch. Outcomes preserve input order
// and always contain one entry per input row.
type ImportResult struct {
	TotalRows int             `json:"total_rows"`
	Accepted  int             `json:"accepted"`
	Rejected  int             `json:"rejected"`
	Outcomes  []ImportOutcome `json:"outcomes"`
}

// Tally recomputes the aggregate counters from the outcome list.
func (r *ImportResult) Tally() {
	r.TotalRows = len(r.Outcomes)
	r.Accepted = 0
	r.Rejected = 0
	for _, o := range r.Outcomes {
		if o.Status == OutcomeAccepted {
			r.Accepted++
		} else {
			r.Rejected++
		}
	}
}
