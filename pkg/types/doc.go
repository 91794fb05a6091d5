// Package types defines the RuleStore interface, the rule entities (groups,
// keywords, hierarchy edges, versions), the write commands accepted by the
// store, and the standard errors shared by every backend.
package types
