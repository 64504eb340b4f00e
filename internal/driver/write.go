package driver

import (
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"annogen/internal/diag"
	"annogen/internal/source"
)

// writeAtomic replaces path with data. The bytes go to a temporary file in
// the same directory which is renamed over path only once fully written, so
// readers see either the old or the new output.
func writeAtomic(path string, data []byte, mode fs.FileMode) (err error) {
	pos := source.Pos{File: path}
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return diag.Wrap(diag.IOWriteFileError, pos, err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if _, err = f.Write(data); err != nil {
		return diag.Wrap(diag.IOWriteFileError, pos, err)
	}
	if err = f.Sync(); err != nil {
		return diag.Wrap(diag.IOWriteFileError, pos, err)
	}
	if err = f.Chmod(mode); err != nil {
		return diag.Wrap(diag.IOWriteFileError, pos, err)
	}
	if err = f.Close(); err != nil {
		return diag.Wrap(diag.IOWriteFileError, pos, err)
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return diag.Wrap(diag.IOWriteFileError, pos, err)
	}
	return nil
}

func itoa(n int) string { return strconv.Itoa(n) }
