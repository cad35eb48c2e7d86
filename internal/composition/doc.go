// Package composition defines the failures a part can report while it is
// being composed, and the Result type used to collect several of them before
// they are surfaced as a single report.
//
// Every failure carries a kind (one of the Err* sentinels) so callers can
// branch with errors.Is, plus the part, element and operation it happened on.
// User code (constructors, setters, collection operations, notification
// handlers) is always run through Guard, so a panic never escapes raw.
package composition
