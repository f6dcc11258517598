package lifecycle

// Fields are the listing values a seller can edit. NewImage marks a
// submission that carries a replacement image; stored listings never set it.
type Fields struct {
	Name        string
	Description string
	Quantity    int
	Price       float64
	Category    string
	Condition   string
	NewImage    bool
}

// Differs compares field by field. A new image always counts as a change.
func (f Fields) Differs(o Fields) bool {
	return f.Name != o.Name ||
		f.Description != o.Description ||
		f.Quantity != o.Quantity ||
		f.Price != o.Price ||
		f.Category != o.Category ||
		f.Condition != o.Condition ||
		f.NewImage != o.NewImage
}

// Edit is one seller submission against a stored listing.
type Edit struct {
	Current  Status
	Original Fields
	Proposed Fields
	// Requested is only honoured when it asks for Sold on an Approved listing.
	Requested Status
}

type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeResubmitted
	OutcomeReturnedToPending
	OutcomeSold
)

type Resolution struct {
	Status  Status
	Outcome Outcome
	// FieldsChanged reports whether any proposed field differs from the stored one.
	FieldsChanged bool
}

// StatusChanged reports whether the resolved status differs from the one the
// listing had before the edit.
func (r Resolution) StatusChanged() bool {
	return r.Outcome != OutcomeUnchanged
}

func (r Resolution) Message() string {
	switch r.Outcome {
	case OutcomeResubmitted:
		return "Product resubmitted successfully and status changed to Pending"
	case OutcomeReturnedToPending:
		return "Product updated successfully and status changed to Pending"
	case OutcomeSold:
		return "Product marked as Sold"
	default:
		return "Product updated successfully"
	}
}

// Resolve computes the status to persist after a seller edit.
func Resolve(e Edit) (Resolution, error) {
	current, err := ParseStatus(string(e.Current))
	if err != nil {
		return Resolution{}, err
	}
	changed := e.Proposed.Differs(e.Original)

	switch current {
	case StatusSold:
		return Resolution{}, ErrPreconditionFailed
	case StatusPending:
		return Resolution{Status: StatusPending, Outcome: OutcomeUnchanged, FieldsChanged: changed}, nil
	case StatusRejected:
		// Any resubmission goes back to review, changed or not.
		return Resolution{Status: StatusPending, Outcome: OutcomeResubmitted, FieldsChanged: changed}, nil
	}

	if requested, err := ParseStatus(string(e.Requested)); err == nil && requested == StatusSold {
		return Resolution{Status: StatusSold, Outcome: OutcomeSold, FieldsChanged: changed}, nil
	}
	if changed {
		return Resolution{Status: StatusPending, Outcome: OutcomeReturnedToPending, FieldsChanged: true}, nil
	}
	return Resolution{Status: StatusApproved, Outcome: OutcomeUnchanged}, nil
}
