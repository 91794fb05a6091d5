// Package rulestore carries the release version of the rule store.
package rulestore

// Version is the semantic version reported by the CLI and /healthz.
const Version = "0.1.0"
