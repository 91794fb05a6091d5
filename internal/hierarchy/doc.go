// Package hierarchy implements the graph algorithms behind group nesting:
// cycle detection, descendant closure, and the read-side helpers that turn a
// flat rule snapshot into a tree or expand search terms against it.
//
// The algorithms run over the Edges interface so the same code serves the
// SQLite write path (lookups inside an open transaction) and in-memory
// snapshots (Graph).
package hierarchy
