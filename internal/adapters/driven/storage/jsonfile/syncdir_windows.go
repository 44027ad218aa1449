//go:build windows

package jsonfile

// syncDir is a no-op on Windows, where directories cannot be opened for syncing.
func syncDir(string) error {
	return nil
}
