// Package domain holds the core value types of the application:
// operations, task units, parameter bundles, result payloads and
// history records. It has no dependencies on the execution layer.
package domain
