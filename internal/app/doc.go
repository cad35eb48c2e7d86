// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle, decoupled
// from any specific entrypoint like a CLI or server.
//
// An App registers the compiled part modules, reconciles them with the HCL
// part manifests, and then describes the resulting catalog. Optionally it
// probes the catalog by activating every part that can be composed without
// other parts, and serves the catalog over HTTP next to a health check.
package app
