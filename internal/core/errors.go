package core

import "fmt"

// ErrorKind enumerates the SyncError taxonomy surfaced by the engine and
// classified by the resilience layer.
type ErrorKind string

const (
	ErrInProgress       ErrorKind = "IN_PROGRESS"
	ErrNotAuthenticated ErrorKind = "NOT_AUTHENTICATED"
	ErrCancelled        ErrorKind = "CANCELLED"
	ErrNetwork          ErrorKind = "NETWORK"
	ErrServer           ErrorKind = "SERVER"
	ErrObjectProcessing ErrorKind = "OBJECT_PROCESSING"
	ErrTransformation   ErrorKind = "TRANSFORMATION"
	ErrStore            ErrorKind = "STORE"
	ErrInternal         ErrorKind = "INTERNAL"
)

// SyncError is the single sum-type error surfaced by every component in
// this module. Components never return bare errors across package
// boundaries; they wrap the underlying cause in a SyncError so callers
// can switch on Kind without string matching.
type SyncError struct {
	Kind ErrorKind

	// ObjectID and Code are populated for the kinds that carry them
	// (ObjectProcessing/Transformation carry ObjectID, Server carries Code).
	ObjectID string
	Code     int
	Message  string
	Inner    error
}

func (e *SyncError) Error() string {
	switch e.Kind {
	case ErrInProgress:
		return "sync already in progress"
	case ErrNotAuthenticated:
		return "not authenticated"
	case ErrCancelled:
		return "sync cancelled"
	case ErrNetwork:
		if e.Inner != nil {
			return fmt.Sprintf("network error: %v", e.Inner)
		}
		return "network error"
	case ErrServer:
		return fmt.Sprintf("server error (%d)", e.Code)
	case ErrObjectProcessing:
		if e.Inner != nil {
			return fmt.Sprintf("object %s: %v", e.ObjectID, e.Inner)
		}
		return fmt.Sprintf("object %s: processing failed", e.ObjectID)
	case ErrTransformation:
		if e.Inner != nil {
			return fmt.Sprintf("object %s: transform failed: %v", e.ObjectID, e.Inner)
		}
		return fmt.Sprintf("object %s: transform failed", e.ObjectID)
	case ErrStore:
		if e.Inner != nil {
			return fmt.Sprintf("store error: %v", e.Inner)
		}
		return "store error"
	case ErrInternal:
		return fmt.Sprintf("internal error: %s", e.Message)
	default:
		return fmt.Sprintf("sync error (%s): %s", e.Kind, e.Message)
	}
}

func (e *SyncError) Unwrap() error { return e.Inner }

func NewInProgress() *SyncError { return &SyncError{Kind: ErrInProgress} }

func NewNotAuthenticated() *SyncError { return &SyncError{Kind: ErrNotAuthenticated} }

func NewCancelled() *SyncError { return &SyncError{Kind: ErrCancelled} }

func NewNetwork(inner error) *SyncError { return &SyncError{Kind: ErrNetwork, Inner: inner} }

func NewServer(code int) *SyncError { return &SyncError{Kind: ErrServer, Code: code} }

func NewObjectProcessing(id string, inner error) *SyncError {
	return &SyncError{Kind: ErrObjectProcessing, ObjectID: id, Inner: inner}
}

func NewTransformation(id string, inner error) *SyncError {
	return &SyncError{Kind: ErrTransformation, ObjectID: id, Inner: inner}
}

func NewStore(inner error) *SyncError { return &SyncError{Kind: ErrStore, Inner: inner} }

func NewInternal(message string) *SyncError {
	return &SyncError{Kind: ErrInternal, Message: message}
}

// AsSyncError returns err itself when it is a *SyncError, or wraps it as
// Internal otherwise. It does not unwrap: a *SyncError nested inside
// another error is wrapped as Internal like any other error.
func AsSyncError(err error) *SyncError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*SyncError); ok {
		return se
	}
	return NewInternal(err.Error())
}
