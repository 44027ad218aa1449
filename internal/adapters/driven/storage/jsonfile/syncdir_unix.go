//go:build !windows

package jsonfile

import "os"

// syncDir flushes directory metadata so a completed rename survives a crash.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
