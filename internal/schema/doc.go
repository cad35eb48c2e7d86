// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package schema holds the immutable descriptors composition works with.
//
// # Core Concepts
//
//   - ImportDefinition: a requirement a part declares. It names a contract,
//     a Cardinality, whether it is a prerequisite (must be satisfied before
//     the part can produce instance exports) and whether it is recomposable
//     (may be satisfied again after the part has been composed). An import
//     also carries a constraint that decides which exports can satisfy it.
//
//   - ExportDefinition: a capability a part offers, a contract name plus a
//     metadata map.
//
//   - Export: a resolved offer, an ExportDefinition together with a deferred
//     accessor for the value. The value is produced on first use and cached.
//
// Definitions are compared by identity. The same *ImportDefinition pointer
// that a part was built with must be used when satisfying it.
package schema
