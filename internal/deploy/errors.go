package deploy

import (
	"errors"
	"fmt"
)

// ErrDeleteUnsupported is returned by providers that cannot remove deployments
var ErrDeleteUnsupported = errors.New("delete is not supported by this provider")

// DeployError is a failure of one provider operation in one region
type DeployError struct {
	Provider  string
	Region    string
	Operation string
	Cause     error
}

func (e *DeployError) Error() string {
	if e.Region == "" {
		return fmt.Sprintf("%s %s failed: %v", e.Provider, e.Operation, e.Cause)
	}
	return fmt.Sprintf("%s %s failed in %s: %v", e.Provider, e.Operation, e.Region, e.Cause)
}

func (e *DeployError) Unwrap() error {
	return e.Cause
}

func newDeployError(provider, region, operation string, cause error) *DeployError {
	return &DeployError{
		Provider:  provider,
		Region:    region,
		Operation: operation,
		Cause:     cause,
	}
}

// deleteErrors joins per-record delete failures
func deleteErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%d deletion(s) failed: %w", len(errs), errors.Join(errs...))
}
