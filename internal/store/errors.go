package store

import "errors"

var (
	// ErrNotLoaded is returned when reading from a store before Load.
	ErrNotLoaded = errors.New("store not loaded")

	// ErrClosed is returned when operating on a closed store.
	ErrClosed = errors.New("store is closed")

	// ErrEmptyKey is returned when a settings key is empty.
	ErrEmptyKey = errors.New("settings key is empty")

	// ErrSettingNotFound is returned when no layer holds a requested key.
	ErrSettingNotFound = errors.New("setting not found")
)
