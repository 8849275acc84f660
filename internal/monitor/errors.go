package monitor

import "fmt"

// #region invalid-input

// InvalidInputError reports a malformed or empty batch/reference. The caller
// must fix the input; the evaluator cannot recover.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// #endregion invalid-input

// #region configuration-error

// ConfigurationError reports a bad threshold configuration. It is raised
// eagerly, before any metric computation.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration: " + e.Reason
	}
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// #endregion configuration-error
