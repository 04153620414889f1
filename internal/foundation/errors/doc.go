// Package errors provides the classified error primitives used across notionsync.
//
// A ClassifiedError carries a category (config, notion, filesystem, ...), a severity,
// a retry strategy and structured context. Errors are created with the fluent builder:
//
//	err := errors.NotionError("query database failed").
//		WithCause(cause).
//		WithContext("database_id", id).
//		Retryable().
//		Build()
//
// The CLI and HTTP adapters translate classified errors into exit codes and HTTP
// status codes respectively.
package errors
