package loan

import "time"

// EffectiveStatus derives the status at now without trusting stored flags.
// Closed loans keep their terminal status.
func EffectiveStatus(now time.Time, l *Loan) Status {
	if l == nil {
		return ""
	}
	if !l.Active {
		return l.Status
	}
	if Overdue(now, l) {
		return StatusOverdue
	}
	return StatusActive
}

// Overdue reports an active loan past its deadline with money still owed.
func Overdue(now time.Time, l *Loan) bool {
	return l != nil && l.Active && now.After(l.Deadline) && l.Remaining() > 0
}

// Dirty reports whether a treasury loan blocks further treasury credit.
func Dirty(now time.Time, l *Loan) bool {
	if l == nil || l.Kind != KindTreasury || !l.Active {
		return false
	}
	return l.IsDirty || Overdue(now, l)
}

// Touch persists the lazily detected overdue state onto the record.
// It returns true when a field changed and the record must be saved.
func Touch(now time.Time, l *Loan) bool {
	if !Overdue(now, l) {
		return false
	}
	changed := false
	if l.Status != StatusOverdue {
		l.Status = StatusOverdue
		changed = true
	}
	if l.Kind == KindTreasury && !l.IsDirty {
		l.IsDirty = true
		changed = true
	}
	return changed
}
