// Package webapi exposes the archive over HTTP: transcript search, quote
// lookup, clip and snap generation, artifact serving with lazy rebuild, and
// the episode management endpoints. Responses share one JSON envelope with
// the request's processing time; artifact bytes are served raw.
package webapi
