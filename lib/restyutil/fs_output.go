package restyutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// FilesystemOutput writes every exchange into its own file under a directory.
type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput clears and recreates dir.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) error {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0600)
	if err != nil {
		return fmt.Errorf("write exchange %s: %w", id, err)
	}
	return nil
}
