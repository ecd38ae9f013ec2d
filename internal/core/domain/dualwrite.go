package domain

// DualWriteResult is the outcome of one primary-then-secondary write.
// PrimaryResult is set whenever the call returns without error.
type DualWriteResult struct {
	Operation              AuditAction
	PrimarySystem          System
	SecondarySystem        System
	PrimaryResult          Entity
	SecondaryResult        Entity
	SecondarySkipped       bool
	SecondaryNotConfigured bool
	SecondaryError         error
}

// IsFullySynced reports whether the secondary write was attempted and
// succeeded.
func (r *DualWriteResult) IsFullySynced() bool {
	return !r.SecondarySkipped && !r.SecondaryNotConfigured && r.SecondaryError == nil
}

// PartialSuccess reports a committed primary write whose secondary failed.
func (r *DualWriteResult) PartialSuccess() bool {
	return r.SecondaryError != nil
}

func (r *DualWriteResult) SecondaryErrorMessage() string {
	if r.SecondaryError == nil {
		return ""
	}
	return r.SecondaryError.Error()
}
