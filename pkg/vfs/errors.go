// Package vfs defines the record types, path rules, and error codes for the
// Cabinet metadata engine. This is a leaf package with no internal
// dependencies, designed to be imported by store implementations and the
// registries without causing circular imports.
//
// Import graph: vfs <- store implementations <- registry <- api
package vfs

import (
	"errors"
	"fmt"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound ErrorCode = iota + 1

	// ErrFolderNotFound indicates the referenced folder path does not exist
	// for the owner.
	ErrFolderNotFound

	// ErrFolderExists indicates a sibling folder with the same name already
	// exists under the same parent for the owner.
	ErrFolderExists

	// ErrFolderNotEmpty indicates a folder still contains files or subfolders.
	ErrFolderNotEmpty

	// ErrAlreadyExists indicates the record's uniqueness key is already taken.
	ErrAlreadyExists

	// ErrInvalidPath indicates a path failed normalization or validation.
	ErrInvalidPath

	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument

	// ErrStorageUnavailable indicates the durable store failed at the I/O
	// level. This is the only code callers may retry with backoff.
	ErrStorageUnavailable
)

// String returns a human-readable name for the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrNotFound:
		return "NotFound"
	case ErrFolderNotFound:
		return "FolderNotFound"
	case ErrFolderExists:
		return "FolderExists"
	case ErrFolderNotEmpty:
		return "FolderNotEmpty"
	case ErrAlreadyExists:
		return "AlreadyExists"
	case ErrInvalidPath:
		return "InvalidPath"
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrStorageUnavailable:
		return "StorageUnavailable"
	default:
		return fmt.Sprintf("Unknown(%d)", e)
	}
}

// StoreError represents a metadata engine error with an error code.
type StoreError struct {
	Code    ErrorCode
	Message string
	Path    string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path: %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNotFoundError creates a NotFound error.
func NewNotFoundError(path, resourceType string) *StoreError {
	return &StoreError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resourceType),
		Path:    path,
	}
}

// NewFolderNotFoundError creates a FolderNotFound error.
func NewFolderNotFoundError(path string) *StoreError {
	return &StoreError{
		Code:    ErrFolderNotFound,
		Message: "folder not found",
		Path:    path,
	}
}

// NewFolderExistsError creates a FolderExists error.
func NewFolderExistsError(path string) *StoreError {
	return &StoreError{
		Code:    ErrFolderExists,
		Message: "folder already exists",
		Path:    path,
	}
}

// NewFolderNotEmptyError creates a FolderNotEmpty error.
func NewFolderNotEmptyError(path string) *StoreError {
	return &StoreError{
		Code:    ErrFolderNotEmpty,
		Message: "folder not empty",
		Path:    path,
	}
}

// NewAlreadyExistsError creates an AlreadyExists error.
func NewAlreadyExistsError(path string) *StoreError {
	return &StoreError{
		Code:    ErrAlreadyExists,
		Message: "already exists",
		Path:    path,
	}
}

// NewInvalidPathError creates an InvalidPath error.
func NewInvalidPathError(path, reason string) *StoreError {
	return &StoreError{
		Code:    ErrInvalidPath,
		Message: reason,
		Path:    path,
	}
}

// NewInvalidArgumentError creates an InvalidArgument error.
func NewInvalidArgumentError(message string) *StoreError {
	return &StoreError{
		Code:    ErrInvalidArgument,
		Message: message,
	}
}

// NewStorageUnavailableError wraps a backend I/O failure.
func NewStorageUnavailableError(err error) *StoreError {
	return &StoreError{
		Code:    ErrStorageUnavailable,
		Message: fmt.Sprintf("storage unavailable: %v", err),
	}
}

// CodeOf returns the error code of err, or 0 if err is not a StoreError.
func CodeOf(err error) ErrorCode {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code
	}
	return 0
}

// IsNotFoundError returns true if the error is a NotFound or FolderNotFound error.
func IsNotFoundError(err error) bool {
	code := CodeOf(err)
	return code == ErrNotFound || code == ErrFolderNotFound
}

// IsConflictError returns true if the error is a uniqueness violation.
func IsConflictError(err error) bool {
	code := CodeOf(err)
	return code == ErrFolderExists || code == ErrAlreadyExists
}

// IsInvalidPathError returns true if the error is an InvalidPath error.
func IsInvalidPathError(err error) bool {
	return CodeOf(err) == ErrInvalidPath
}

// IsRetryable returns true if the caller may retry the operation with
// backoff. Only storage-level failures qualify; validation and conflict
// errors are terminal for the request.
func IsRetryable(err error) bool {
	return CodeOf(err) == ErrStorageUnavailable
}
