// Package library persists movie records and their derived labels in a
// local SQLite database and serves the listing, statistics, and watchlist
// queries built on top of it.
package library
