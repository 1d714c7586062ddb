package criteria

import "fmt"

// ValidationError reports a malformed request value: bad skip/limit, a broken
// order_by token or an operand that does not fit its operator.
type ValidationError struct {
	Field    string
	Operator Operator
	Reason   string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Field != "" && e.Operator != "":
		return fmt.Sprintf("invalid criterion %s.%s: %s", e.Field, e.Operator, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("invalid value for %s: %s", e.Field, e.Reason)
	default:
		return "invalid request: " + e.Reason
	}
}

type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field: %s", e.Field)
}

// UnsupportedOperatorError is raised when an operator does not apply to the
// field's value type, or the active backend cannot express it.
type UnsupportedOperatorError struct {
	Field     string
	Operator  Operator
	ValueType ValueType
	Backend   string
}

func (e *UnsupportedOperatorError) Error() string {
	if e.Backend != "" {
		return fmt.Sprintf("operator %s is not supported on %s field %s by %s backend", e.Operator, e.ValueType, e.Field, e.Backend)
	}
	return fmt.Sprintf("operator %s is not supported on %s field %s", e.Operator, e.ValueType, e.Field)
}

type UnsupportedSortError struct {
	Field string
}

func (e *UnsupportedSortError) Error() string {
	return fmt.Sprintf("field %s is not sortable", e.Field)
}

func invalid(field string, op Operator, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Operator: op, Reason: fmt.Sprintf(format, args...)}
}
