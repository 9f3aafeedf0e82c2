package store

import "errors"

var (
	// ErrStoreClosed indicates that the store was used after Close.
	ErrStoreClosed = errors.New("store is closed")

	// ErrSerializationFailed indicates a snapshot could not be encoded or decoded.
	ErrSerializationFailed = errors.New("serialization failed")
)
