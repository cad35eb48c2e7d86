// Package part drives the lifecycle of a single composable part.
//
// A Part wraps a registry.Definition and, optionally, a pre-existing
// instance. The container resolves exports for each import and hands them
// over with SetImport; the part checks cardinality, converts the exports
// into the values its members expect, and holds them until Activate
// delivers them to the instance.
//
// Instances are created lazily and exactly once: the first caller that
// needs one (Activate or GetExportedValue on an export that requires an
// instance) runs the constructor with the values of its parameter imports.
// Concurrent callers wait for the same construction and observe the same
// instance.
//
// Imports are delivered in two passes. Prerequisite imports are set right
// after the instance is created, before any of its exports can be read.
// The remaining imports are set by Activate, after which the instance is
// notified through ImportsSatisfiedNotifier. Recomposable imports may be
// set again later; calling Activate again delivers the new values and
// notifies the instance once more.
package part
