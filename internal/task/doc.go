// Package task implements the shared execution pool and the worker
// wrapper that runs steganography operations off the calling goroutine,
// with cooperative cancellation and per-task event streams.
package task
