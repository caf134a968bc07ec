package merge

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// OutputPerm is the permission used for merged documents.
const OutputPerm = 0o644

// WriteOutput copies r into a new file at path. The file must not already
// exist. If copying fails the partial file is removed.
func WriteOutput(path string, r io.Reader) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, OutputPerm)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("output file %s already exists: %w", path, err)
		}
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	_, err = io.Copy(f, r)
	return err
}
