// Package cli provides shared helpers for the dccbridge command line:
// command error wrapping, output formatting, and signal-aware contexts.
package cli
