//go:build unix

package validate

import "golang.org/x/sys/unix"

func writable(dir string) bool {
	return unix.Access(dir, unix.W_OK|unix.X_OK) == nil
}

func readable(path string) bool {
	return unix.Access(path, unix.R_OK) == nil
}
