package store

import (
        "os"
)

// atomicWriteFile writes b to path via a unique temp file + rename so a crashed
// or concurrent writer never leaves a half-written document behind.
func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
        f, err := os.CreateTemp(dir, tmpPattern)
        if err != nil {
                return err
        }
        tmp := f.Name()
        defer func() { _ = os.Remove(tmp) }()
        if _, err := f.Write(b); err != nil {
                _ = f.Close()
                return err
        }
        if err := f.Close(); err != nil {
                return err
        }
        _ = os.Chmod(tmp, perm)
        return os.Rename(tmp, path)
}
