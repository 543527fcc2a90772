package config

import "fmt"

// KeyMissingError is returned when a required config item is absent
// and no default was supplied.
type KeyMissingError struct {
	Path Path
	Name string
}

func (e *KeyMissingError) Error() string {
	return fmt.Sprintf("config: key %v.%s missing", []string(e.Path), e.Name)
}

// BadOptionFormatError is returned when a command-line override
// argument does not match "[SECTION[.SUB]....]OPTION=VALUE".
type BadOptionFormatError struct {
	Arg string
}

func (e *BadOptionFormatError) Error() string {
	return fmt.Sprintf("config: malformed option %q", e.Arg)
}
