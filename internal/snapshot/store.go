package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"plugin-harvester/internal/assert"
	"plugin-harvester/internal/components/telemetry"
	"plugin-harvester/internal/marketplace"
)

const (
	report_store_list  = "store.list"
	report_store_load  = "store.load"
	report_store_write = "store.write"
)

// ErrDecode is wrapped by failures to read a snapshot file back.
var ErrDecode = errors.New("snapshot decode")

// Page is one listing page as fetched, Index starts at 1.
type Page struct {
	Index   int
	Records []marketplace.Record
}

// FileName returns the snapshot file name for a page index.
func FileName(index int) string {
	return fmt.Sprintf("page_%d.json", index)
}

var pageFileRegex = regexp.MustCompile(`^page_(\d+)\.json$`)

// Store is a directory of page snapshots.
type Store struct {
	dir string
	tel telemetry.API
}

func NewStore(dir string, tel telemetry.API) Store {
	assert.NotEmptyStr(dir)
	assert.NotNil(tel)

	return Store{
		dir: dir,
		tel: telemetry.NewScopedAPI("snapshot", tel),
	}
}

func (s Store) Dir() string {
	return s.dir
}

// Prepare creates the snapshot directory if it does not exist yet.
func (s Store) Prepare() error {
	return os.MkdirAll(s.dir, 0777)
}

type pageFile struct {
	Plugins []marketplace.Record `json:"plugins"`
}

// WritePage writes the page as `{"plugins": [...]}` indented with 4 spaces and
// returns the path written. An existing snapshot of the same index is replaced.
func (s Store) WritePage(page Page) (string, error) {
	records := page.Records
	if records == nil {
		records = []marketplace.Record{}
	}

	var buff bytes.Buffer
	encoder := json.NewEncoder(&buff)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	err := encoder.Encode(pageFile{Plugins: records})
	if err != nil {
		s.tel.ReportBroken(report_store_write, err, page.Index)
		return "", fmt.Errorf("encode page %d: %w", page.Index, err)
	}

	path := filepath.Join(s.dir, FileName(page.Index))
	tmp := path + ".tmp"
	err = os.WriteFile(tmp, buff.Bytes(), 0666)
	if err != nil {
		s.tel.ReportBroken(report_store_write, err, path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	err = os.Rename(tmp, path)
	if err != nil {
		os.Remove(tmp)
		s.tel.ReportBroken(report_store_write, err, path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	s.tel.ReportDebug("wrote snapshot", path, len(page.Records))
	return path, nil
}

type listedFile struct {
	name  string
	index int
	page  bool
}

// ListFiles returns every snapshot in the directory: page files ordered by their
// index, then any other .json files ordered by name. A missing directory has no files.
func (s Store) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		s.tel.ReportWarning(report_store_list, "snapshot directory does not exist", s.dir)
		return nil, nil
	}
	if err != nil {
		s.tel.ReportBroken(report_store_list, err, s.dir)
		return nil, err
	}

	var files []listedFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		f := listedFile{name: e.Name()}
		groups := pageFileRegex.FindStringSubmatch(e.Name())
		if len(groups) == 2 {
			index, err := strconv.Atoi(groups[1])
			if err == nil {
				f.index = index
				f.page = true
			}
		}
		files = append(files, f)
	}

	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if a.page != b.page {
			return a.page
		}
		if a.page && a.index != b.index {
			return a.index < b.index
		}
		return a.name < b.name
	})

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = filepath.Join(s.dir, f.name)
	}
	return paths, nil
}

// ReadFile decodes a single snapshot file into generic records, numbers are kept
// as json.Number so large ids and timestamps are not rounded.
func ReadFile(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	raw, err := marketplace.DecodeListing(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}

	records := make([]map[string]any, 0, len(raw))
	for i, r := range raw {
		decoder := json.NewDecoder(bytes.NewReader(r))
		decoder.UseNumber()
		var record map[string]any
		err = decoder.Decode(&record)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: record %d: %w", ErrDecode, path, i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// LoadAll reads every snapshot in ListFiles order and concatenates their records.
// Any unreadable file aborts the load.
func (s Store) LoadAll(ctx context.Context) ([]map[string]any, error) {
	files, err := s.ListFiles()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := ReadFile(path)
		if err != nil {
			s.tel.ReportBroken(report_store_load, err)
			return nil, err
		}
		out = append(out, records...)
	}

	s.tel.ReportInfo(fmt.Sprintf("loaded %d records from %d files", len(out), len(files)))
	return out, nil
}
