// Package omdb implements the metadata client for the Open Movie Database
// API. Lookups are live requests by design; there is no caching layer.
package omdb
