package diag

import "fmt"

// WrapError attaches context to an error from a host collaborator (the
// page provider, most commonly) without discarding it.
func WrapError(err error, msg string) error {
	if err == nil {
		return fmt.Errorf("%s", msg)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
