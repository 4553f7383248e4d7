package fileutils

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// CopyFile copies the file at src to dest. When dest already holds a file
// with identical contents the copy is skipped; a differing file at dest is an
// error, never overwritten.
func CopyFile(src string, dest string) error {
	srcHash, err := ComputeFileHash(src)
	if err != nil {
		return fmt.Errorf("could not hash %s: %w", src, err)
	}

	if _, err := os.Stat(dest); err == nil {
		destHash, err := ComputeFileHash(dest)
		if err != nil {
			return fmt.Errorf("could not hash %s: %w", dest, err)
		}
		if destHash == srcHash {
			return nil
		}
		return fmt.Errorf("%s already exists with different contents", dest)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not stat %s: %w", dest, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", src, err)
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", dest, err)
	}

	_, err = io.Copy(out, in)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("could not copy to %s: %w", dest, err)
	}

	return nil
}
