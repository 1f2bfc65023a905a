package osutil

import (
	"fmt"
	"os"
	"path"
)

// EnsureFilePresent initializes a file and all parent directories for
// filepath if they do not exist, using perm for anything created. If the
// file exists, no-ops.
func EnsureFilePresent(filepath string, perm os.FileMode) error {
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		if err := os.MkdirAll(path.Dir(filepath), perm); err != nil {
			return fmt.Errorf("mkdir: %s", err)
		}
		f, err := os.OpenFile(filepath, os.O_CREATE|os.O_WRONLY, perm)
		if err != nil {
			return fmt.Errorf("create: %s", err)
		}
		f.Close()
	} else if err != nil {
		return fmt.Errorf("stat: %s", err)
	}
	return nil
}
