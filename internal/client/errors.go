package client

import "fmt"

// TransientNetworkError is a failed status or data request that may succeed
// on the next attempt
type TransientNetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransientNetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: server returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientNetworkError) Unwrap() error {
	return e.Err
}

// CommandError is a command, upload or parse request the controller rejected
type CommandError struct {
	Command string
	Reason  string
}

func (e *CommandError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s rejected", e.Command)
	}
	return fmt.Sprintf("%s rejected: %s", e.Command, e.Reason)
}
