// Package file provides file-based implementations of driven port
// interfaces. Configuration lives in a TOML file under the orderlens
// config directory, including the mail source definitions.
package file
