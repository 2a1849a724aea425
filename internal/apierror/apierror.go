// Package apierror defines the envelope every 4xx/5xx response uses. Handlers
// return only these shapes so the wizard and the consola render errors
// uniformly, and GORM/driver errors never reach the client verbatim.
package apierror

// APIError carries one human-readable message, in the same Spanish the rest
// of the UI speaks.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError adds the per-field breakdown the wizard uses to highlight
// inputs. Built by bindAndValidate from validator tag failures.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
