package composition

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. Wrap them in an *Error to attach context.
var (
	ErrNoExports                 = errors.New("no exports were supplied for an import that requires one")
	ErrTooManyExports            = errors.New("more than one export was supplied for an import that accepts at most one")
	ErrRecompositionNotAllowed   = errors.New("import is not recomposable and the part has already been composed")
	ErrNotOnThisPart             = errors.New("definition does not belong to this part")
	ErrConstructorMissing        = errors.New("part has no constructor")
	ErrConstructorFailed         = errors.New("part constructor failed")
	ErrImportsSatisfiedFailed    = errors.New("imports satisfied notification failed")
	ErrImportNotSet              = errors.New("required import was not set")
	ErrPrerequisiteNotSet        = errors.New("prerequisite import has not been set")
	ErrMemberNotWritable         = errors.New("import member is not writable")
	ErrMemberSetFailed           = errors.New("setting import member failed")
	ErrExportFailed              = errors.New("getting exported value failed")
	ErrCollectionNull            = errors.New("collection could not be obtained")
	ErrCollectionReadOnly        = errors.New("collection is read-only")
	ErrCollectionOperationFailed = errors.New("collection operation failed")
	ErrContractMismatch          = errors.New("value does not satisfy the required contract")
	ErrInvalidCardinality        = errors.New("invalid cardinality")
	ErrInvalidConfiguration      = errors.New("invalid part configuration")
)

// Error is a single composition failure with the context it occurred in.
type Error struct {
	Kind    error
	Part    string
	Element string
	Op      string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Part != "" {
		fmt.Fprintf(&b, "part '%s': ", e.Part)
	}
	if e.Element != "" {
		fmt.Fprintf(&b, "element '%s': ", e.Element)
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("composition failed")
	}
	if e.Op != "" {
		fmt.Fprintf(&b, " (during %s)", e.Op)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Wrap builds an *Error of the given kind.
func Wrap(kind error, part, element string, cause error) *Error {
	return &Error{Kind: kind, Part: part, Element: element, Cause: cause}
}

// WrapOp is Wrap with the failing operation recorded.
func WrapOp(kind error, part, element, op string, cause error) *Error {
	return &Error{Kind: kind, Part: part, Element: element, Op: op, Cause: cause}
}

// CompositionError is the aggregated report surfaced at the end of a batch.
type CompositionError struct {
	Errors []error
}

// Error implements the error interface.
func (e *CompositionError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("composition produced a single error: %v", e.Errors[0])
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("composition produced %d errors:\n- %s", len(e.Errors), strings.Join(msgs, "\n- "))
}

// Unwrap returns the collected errors.
func (e *CompositionError) Unwrap() []error {
	return e.Errors
}
