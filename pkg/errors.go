package jungfrau

import (
	"errors"
	"fmt"
)

var (
	ErrTruncatedStream = errors.New("truncated stream")
	ErrBufferSize      = errors.New("buffer size mismatch")
)

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// IOError represents a failed read or write on a data stream or output file.
type IOError struct {
	Op       string
	Filename string
	Err      error
}

func (e *IOError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Filename, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// CalibrationError represents a gain map file that can not be used.
type CalibrationError struct {
	Filename string
	Err      error
}

func (e *CalibrationError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("calibration error: %v", e.Err)
	}
	return fmt.Sprintf("calibration error in %q: %v", e.Filename, e.Err)
}

func (e *CalibrationError) Unwrap() error {
	return e.Err
}

// ConfigError represents missing or malformed arguments or configuration.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %q: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error {
	return e.Err
}

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error {
	return e.Err
}
