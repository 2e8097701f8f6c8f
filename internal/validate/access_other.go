//go:build !unix

package validate

// Permission bits are not meaningful here; failures surface when the
// operation opens the file.
func writable(string) bool { return true }

func readable(string) bool { return true }
