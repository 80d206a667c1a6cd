package cli

// outcomeError carries the user-facing feedback text of a failed mutation
// while keeping the underlying client error reachable via errors.As.
type outcomeError struct {
	text string
	err  error
}

func (e outcomeError) Error() string { return e.text }

func (e outcomeError) Unwrap() error { return e.err }
