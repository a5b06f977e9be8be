// Package history provides storage interfaces and implementations for the
// device action log kept by the PhoneMCP service.
package history

import (
	"time"
)

// Entry is one recorded device action.
type Entry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	Serial    string    `json:"serial,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Store defines the interface for recording and retrieving device actions.
type Store interface {
	// Initialize initializes the store with configuration options.
	Initialize(dbPath string) error

	// Close closes the store and releases any resources.
	Close() error

	// Record stores one action entry in the database.
	Record(entry Entry) error

	// Recent returns the most recent entries, newest first.
	Recent(limit int) ([]Entry, error)

	// Clear removes all recorded entries.
	Clear() error
}
