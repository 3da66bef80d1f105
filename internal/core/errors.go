package core

import "fmt"

// Error taxonomy. All asynchronous failures are captured and returned as
// one of these typed errors; nothing is left to escape a goroutine
// unhandled.

type EncryptionErrorKind string

const (
	DeviceUnsupported EncryptionErrorKind = "device_unsupported"
	InstallFailed     EncryptionErrorKind = "install_failed"
)

// EncryptionError is fatal to the current join attempt; the user must
// retry with a brand-new attempt.
type EncryptionError struct {
	Kind EncryptionErrorKind
	Err  error
}

func (e *EncryptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encryption: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("encryption: %s", e.Kind)
}

func (e *EncryptionError) Unwrap() error { return e.Err }

type ConnectionErrorKind string

const (
	CredentialFetchFailed ConnectionErrorKind = "credential_fetch_failed"
	HandshakeFailed       ConnectionErrorKind = "handshake_failed"
	DeviceError           ConnectionErrorKind = "device_error"
)

// ConnectionError is surfaced to the caller. DeviceError is non-fatal to
// the overall connection and reported per device.
type ConnectionError struct {
	Kind ConnectionErrorKind
	// Status carries the issuer's status text for CredentialFetchFailed.
	Status string
	Err    error
}

func (e *ConnectionError) Error() string {
	switch {
	case e.Status != "":
		return fmt.Sprintf("connection: %s: %s", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("connection: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("connection: %s", e.Kind)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

type ExecutionErrorKind string

const (
	UnsupportedLanguage ExecutionErrorKind = "unsupported_language"
	MissingCredential   ExecutionErrorKind = "missing_credential"
	SubmissionFailed    ExecutionErrorKind = "submission_failed"
	ProtocolViolation   ExecutionErrorKind = "protocol_violation"
	ExecutionTimeout    ExecutionErrorKind = "timeout"
)

// ExecutionError is always terminal for its job; the relay never retries
// past the fixed poll budget.
type ExecutionError struct {
	Kind ExecutionErrorKind
	// Status carries the provider's transport status text when present.
	Status string
	Err    error
}

func (e *ExecutionError) Error() string {
	switch {
	case e.Status != "":
		return fmt.Sprintf("execution: %s: %s", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("execution: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("execution: %s", e.Kind)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

type SyncErrorKind string

const AttachConflict SyncErrorKind = "attach_conflict"

// SyncError is local-only and non-fatal to the session.
type SyncError struct {
	Kind SyncErrorKind
}

func (e *SyncError) Error() string { return fmt.Sprintf("docsync: %s", e.Kind) }
