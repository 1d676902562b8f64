package services

import "fmt"

// ValidationError reports a missing, short or otherwise invalid field.
// Validation failures are terminal and leave no partial state.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }

func (e ValidationError) Is(target error) bool {
	switch target.(type) {
	case ValidationError, *ValidationError:
		return true
	}
	return false
}

// NotFoundError reports an absent case, document or update.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Is(target error) bool {
	switch target.(type) {
	case NotFoundError, *NotFoundError:
		return true
	}
	return false
}

// AuthorizationError reports a requester who is neither the owner of the
// authorizing case nor an admin.
type AuthorizationError struct {
	Message string
}

func (e AuthorizationError) Error() string { return e.Message }

func (e AuthorizationError) Is(target error) bool {
	switch target.(type) {
	case AuthorizationError, *AuthorizationError:
		return true
	}
	return false
}

// DuplicateError reports a uniqueness violation, in practice only a case
// number collision. The sequence design makes this unreachable; it is kept
// as a guard against an out-of-band writer.
type DuplicateError struct {
	Message string
}

func (e DuplicateError) Error() string { return e.Message }

func (e DuplicateError) Is(target error) bool {
	switch target.(type) {
	case DuplicateError, *DuplicateError:
		return true
	}
	return false
}

// StoreError wraps a terminal failure of the metadata or blob store,
// including a partial failure mid-sequence.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store failure: %s", e.Op)
	}
	return fmt.Sprintf("store failure: %s: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error { return e.Err }

func (e StoreError) Is(target error) bool {
	switch target.(type) {
	case StoreError, *StoreError:
		return true
	}
	return false
}
