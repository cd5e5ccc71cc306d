package render

// ErrorPolicy decides what happens when one render context fails.
type ErrorPolicy int

const (
	// PolicyAbort stops the run on the first content or layout failure.
	PolicyAbort ErrorPolicy = iota
	// PolicySkip abandons the failing context, logs it and carries on.
	PolicySkip
)

// PolicyFromSkip maps the skip_file_on_error switch to a policy.
func PolicyFromSkip(skip bool) ErrorPolicy {
	if skip {
		return PolicySkip
	}
	return PolicyAbort
}

func (p ErrorPolicy) String() string {
	if p == PolicySkip {
		return "skip"
	}
	return "abort"
}
