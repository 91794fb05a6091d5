// Package httpapi exposes a RuleStore over HTTP with gin.
//
// Reads are served from snapshots; every write goes through
// RuleStore.TryWrite with the caller's base_version and client_id, and the
// WriteResult status picks the HTTP status:
//
//	StatusOK        200
//	StatusInvalid   400
//	StatusConflict  409
//	StatusRejected  422
//	StatusFault     500
package httpapi
