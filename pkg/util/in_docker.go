// Package util contains any functions used across the application that don't match
// any other package
package util

import "os"

var dockerEnvPath = "/.dockerenv"

func IsRunningInDocker() bool {
	if _, err := os.Stat(dockerEnvPath); err == nil {
		return true
	}

	return false
}
