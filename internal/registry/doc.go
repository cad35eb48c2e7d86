// Package registry provides the central "glue" between Go code and the
// composition engine.
//
// A part is registered as a Definition: the contracts it imports, the
// contracts it exports, and the compiled Go functions that construct an
// instance and move values in and out of it. Definitions are assembled with
// the typed builder helpers (Import, ImportMany, Param, Export, ...) so the
// reflection-free accessors stay checked by the compiler.
//
// During application startup the registry is populated by modules and then
// reconciled with the HCL part manifests, which ensures that the Go code and
// the public-facing manifests are in sync before anything is composed.
package registry
