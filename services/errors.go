package services

// Error taxonomy for the banking engine. Controllers map these to HTTP codes
// with errors.As; upstream failures never reach callers (they degrade to the
// ratio fallback or are logged).

// ValidationError rejects bad input before anything is written.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError means a required row (profile, active config) does not exist.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// InvalidStateError rejects an illegal lifecycle transition.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return e.Msg }

// UpstreamServiceError wraps a collaborator failure (generative service,
// workout planner). Callers of the engine never see it.
type UpstreamServiceError struct {
	Service string
	Err     error
}

func (e *UpstreamServiceError) Error() string { return e.Service + ": " + e.Err.Error() }
func (e *UpstreamServiceError) Unwrap() error { return e.Err }

// PersistenceError surfaces a storage write failure. No partial state is
// committed when one is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return "persist " + e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
