package config

import "fmt"

// ConfigInitError reports a failure to prepare the config directory.
type ConfigInitError struct {
	Path string
	Err  error
}

func (e *ConfigInitError) Error() string {
	return fmt.Sprintf("failed to initialize config at %s: %v", e.Path, e.Err)
}

func (e *ConfigInitError) Unwrap() error { return e.Err }
