package config

import "fmt"

// NotFoundError represents a missing config file.
type NotFoundError struct {
	Path string
	Hint string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s\n\n💡 %s", e.Path, e.Hint)
}

// InvalidError represents a malformed config.
type InvalidError struct {
	Path    string
	Message string
	Hint    string
}

func (e *InvalidError) Error() string {
	msg := fmt.Sprintf("invalid config: %s\n", e.Path)
	if e.Message != "" {
		msg += e.Message + "\n"
	}
	if e.Hint != "" {
		msg += "💡 " + e.Hint
	}
	return msg
}
