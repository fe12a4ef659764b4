package errors

import (
	"fmt"
	"strings"
)

// UserFriendlyError provides user-friendly error messages with context and hints
type UserFriendlyError struct {
	Message string
	Reason  string
	Hint    string
	Try     string
	Err     error
}

func (e UserFriendlyError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Message)
	if e.Reason != "" {
		buf.WriteString("\n  Reason: " + e.Reason)
	}
	if e.Hint != "" {
		buf.WriteString("\n  Hint: " + e.Hint)
	}
	if e.Try != "" {
		buf.WriteString("\n  Try: " + e.Try)
	}
	if e.Err != nil {
		buf.WriteString("\n  Details: " + e.Err.Error())
	}
	return buf.String()
}

func (e UserFriendlyError) Unwrap() error {
	return e.Err
}

// WrapNetworkError wraps NETCONF/SSH connection errors with user-friendly context
func WrapNetworkError(err error, host string, port int) error {
	if err == nil {
		return nil
	}

	return UserFriendlyError{
		Message: fmt.Sprintf("Failed to open a NETCONF session with %s:%d", host, port),
		Reason:  extractNetworkReason(err),
		Hint:    "The target may not expose the netconf SSH subsystem on this port, or the credentials were rejected",
		Try:     fmt.Sprintf("ssh -p %d -s <user>@%s netconf", port, host),
		Err:     err,
	}
}

// WrapSchemaError wraps YANG loading and skeleton assembly errors
func WrapSchemaError(err error, module string) error {
	if err == nil {
		return nil
	}

	return UserFriendlyError{
		Message: fmt.Sprintf("Cannot build a message skeleton for module %s", module),
		Reason:  extractSchemaReason(err),
		Hint:    "Check that the module and all of its imports are present in the search directories",
		Try:     "yangfuzz skeleton --module <name> --search-dir <dir> --debug",
		Err:     err,
	}
}

// WrapResolutionError wraps feature resolution failures. These are fatal:
// without the target's feature state the schema shape cannot be trusted.
func WrapResolutionError(err error, module string) error {
	if err == nil {
		return nil
	}

	reason := "Feature state of the target could not be determined"
	switch {
	case Is(err, ErrModuleNotFound):
		reason = "The target does not report this module in its YANG library"
	case Is(err, ErrUnsupported):
		reason = "The structured (YANG 1.1) feature query is not available in this mode"
	}

	return UserFriendlyError{
		Message: fmt.Sprintf("Feature resolution failed for module %s", module),
		Reason:  reason,
		Hint:    "The target cannot be fuzzed against this module until its feature set is known",
		Try:     "yangfuzz features --module <name> --yang-library-file <saved reply>",
		Err:     err,
	}
}

// WrapConfigError wraps configuration errors with user-friendly context
func WrapConfigError(err error, configPath string) error {
	if err == nil {
		return nil
	}

	return UserFriendlyError{
		Message: fmt.Sprintf("Configuration error in %s", configPath),
		Reason:  err.Error(),
		Hint:    "Run 'yangfuzz config init' to write an annotated default campaign file",
		Try:     fmt.Sprintf("yangfuzz skeleton --config %s", configPath),
		Err:     err,
	}
}

func extractNetworkReason(err error) string {
	errStr := err.Error()

	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return "Connection timeout - target may be offline or unreachable"
	}
	if strings.Contains(errStr, "connection refused") {
		return "Connection refused - nothing is listening on this port"
	}
	if strings.Contains(errStr, "no route to host") {
		return "No route to host - network routing issue or target unreachable"
	}
	if strings.Contains(errStr, "unable to authenticate") {
		return "Authentication failed - check user, password or key file"
	}
	if strings.Contains(errStr, "subsystem") {
		return "The SSH server refused the netconf subsystem"
	}

	return "Network communication failed"
}

func extractSchemaReason(err error) string {
	switch {
	case Is(err, ErrOutOfRange):
		return "A leaf restriction lies outside the representable range of its type"
	case Is(err, ErrInvalidBounds):
		return "A leaf restriction has a lower bound above its upper bound"
	case Is(err, ErrUnsatisfiable):
		return "A pattern restriction cannot be satisfied within its length bounds"
	}
	if strings.Contains(err.Error(), "no such file") || strings.Contains(err.Error(), "not found") {
		return "The module or one of its imports was not found"
	}
	return "The module could not be processed"
}
