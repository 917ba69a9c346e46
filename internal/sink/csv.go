package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"plugin-harvester/internal/fieldmap"
)

// CSV writes a header row of column names followed by one row per record.
type CSV struct {
	path string
}

func NewCSV(path string) CSV {
	return CSV{path: path}
}

func (c CSV) Name() string {
	return fmt.Sprintf("csv(%s)", c.path)
}

func (c CSV) Write(ctx context.Context, columns []string, rows []fieldmap.FlatRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	if dir != "." {
		err := os.MkdirAll(dir, 0777)
		if err != nil {
			return fmt.Errorf("csv: %w", err)
		}
	}

	tmp := c.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("csv: %w", err)
	}

	err = writeCSV(f, columns, rows)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("csv: %w", err)
	}

	err = os.Rename(tmp, c.path)
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("csv: %w", err)
	}
	return nil
}

func writeCSV(f *os.File, columns []string, rows []fieldmap.FlatRecord) error {
	w := csv.NewWriter(f)
	err := w.Write(columns)
	if err != nil {
		return err
	}
	for _, row := range rows {
		err = w.Write(row)
		if err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
