// Package services defines the shared error taxonomy used by the metadata
// client, the library store, and the batch pipeline. Errors are tagged with
// sentinel markers so callers can classify a failure without inspecting
// message text.
package services
