// Package catalog loads part manifests written in HCL or YAML.
//
// A manifest describes the public face of a part: the contracts it imports
// and exports, the cardinality and policy of each import, optional
// constraint expressions, and the metadata attached to each export. The
// registry reconciles manifests with the Go definitions at startup.
//
//	part "print" {
//	  description = "Prints the lines and values composed into it."
//
//	  import "lines" {
//	    contract     = "print.line"
//	    cardinality  = "zero_or_more"
//	    prerequisite = false
//	    recomposable = true
//	    constraint   = metadata.lang == "en"
//	  }
//
//	  export "self" {
//	    contract = "print.printer"
//	    metadata = { format = "text" }
//	  }
//	}
//
// The same part in YAML; the constraint is an HCL expression string:
//
//	parts:
//	  - name: print
//	    imports:
//	      - member: lines
//	        contract: print.line
//	        cardinality: zero_or_more
//	        prerequisite: false
//	        recomposable: true
//	        constraint: metadata.lang == "en"
//	    exports:
//	      - member: self
//	        contract: print.printer
//	        metadata: {format: text}
//
// Metadata values are kept as cty.Value in both formats.
package catalog
