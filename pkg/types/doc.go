// Package types defines the database value taxonomy, schema metadata,
// query specs, and standard error types shared between the database
// worker and its callers.
package types
