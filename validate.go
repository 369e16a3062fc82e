package revise

import "fmt"

// ValidationReason identifies why a persisted conflict does not fit the base text.
type ValidationReason string

// Validation error reasons.
const (
	ErrRangeOutOfBounds ValidationReason = "out_of_range"
	ErrOriginalMismatch ValidationReason = "original_mismatch"
	ErrInvalidChange    ValidationReason = "invalid_change"
	ErrDuplicateID      ValidationReason = "duplicate_id"
	ErrUnknownWinner    ValidationReason = "unknown_winner"
)

// ValidationError describes a single validation failure in a conflict record.
type ValidationError struct {
	Conflict string           // ID of the conflict containing the error
	Change   int              // Index of the offending member, or -1 for the conflict itself
	Reason   ValidationReason // Why the conflict does not fit
	Detail   string           // Underlying message for invalid_change errors
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	switch e.Reason {
	case ErrRangeOutOfBounds:
		if e.Change >= 0 {
			return fmt.Sprintf("conflict %s: change %d lies outside the base text", e.Conflict, e.Change)
		}
		return fmt.Sprintf("conflict %s: range lies outside the base text", e.Conflict)
	case ErrOriginalMismatch:
		if e.Change >= 0 {
			return fmt.Sprintf("conflict %s: change %d old text no longer matches the base", e.Conflict, e.Change)
		}
		return fmt.Sprintf("conflict %s: original no longer matches the base", e.Conflict)
	case ErrInvalidChange:
		return fmt.Sprintf("conflict %s: change %d: %s", e.Conflict, e.Change, e.Detail)
	case ErrDuplicateID:
		return fmt.Sprintf("conflict %s: id used more than once", e.Conflict)
	case ErrUnknownWinner:
		return fmt.Sprintf("conflict %s: resolved to a reviewer with no alternative", e.Conflict)
	default:
		return fmt.Sprintf("conflict %s: unknown error", e.Conflict)
	}
}

// ValidateRecord checks that every conflict in record still describes base.
// Returns a slice of validation errors, or nil if the record is valid.
func ValidateRecord(base string, record *ConflictRecord) []ValidationError {
	var errors []ValidationError
	seen := make(map[string]bool, len(record.Conflicts))

	for _, c := range record.Conflicts {
		if seen[c.ID] {
			errors = append(errors, ValidationError{Conflict: c.ID, Change: -1, Reason: ErrDuplicateID})
		}
		seen[c.ID] = true

		if c.Start < 0 || c.End < c.Start || c.End > len(base) {
			errors = append(errors, ValidationError{Conflict: c.ID, Change: -1, Reason: ErrRangeOutOfBounds})
			continue
		}
		if base[c.Start:c.End] != c.Original {
			errors = append(errors, ValidationError{Conflict: c.ID, Change: -1, Reason: ErrOriginalMismatch})
		}

		for i, ch := range c.Changes {
			if err := ch.Validate(); err != nil {
				errors = append(errors, ValidationError{Conflict: c.ID, Change: i, Reason: ErrInvalidChange, Detail: err.Error()})
				continue
			}
			if ch.End > len(base) {
				errors = append(errors, ValidationError{Conflict: c.ID, Change: i, Reason: ErrRangeOutOfBounds})
				continue
			}
			if base[ch.Start:ch.End] != ch.OldText {
				errors = append(errors, ValidationError{Conflict: c.ID, Change: i, Reason: ErrOriginalMismatch})
			}
		}

		if c.Resolved != nil && *c.Resolved != KeepOriginal {
			if len(c.Winners()) == 0 {
				errors = append(errors, ValidationError{Conflict: c.ID, Change: -1, Reason: ErrUnknownWinner})
			}
		}
	}

	return errors
}
