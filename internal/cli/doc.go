// Package cli turns command-line arguments into an app.Config. It owns the
// usage text, validates log options, and reports bad input as an ExitError
// carrying the process exit code.
package cli
