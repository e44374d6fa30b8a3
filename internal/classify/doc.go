// Package classify derives categorical labels (genre bucket, rating tier,
// era bucket) from movie metadata. All functions are pure: the same record
// always yields the same labels, so behavior is auditable without network
// access.
package classify
