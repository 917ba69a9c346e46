package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"plugin-harvester/internal/components/telemetry"
	"plugin-harvester/internal/marketplace"

	"github.com/stretchr/testify/require"
)

func records(t *testing.T, ids ...int) []marketplace.Record {
	t.Helper()
	out := make([]marketplace.Record, len(ids))
	for i, id := range ids {
		out[i] = marketplace.Record(fmt.Sprintf(`{"id": %d, "name": "plugin %d"}`, id, id))
	}
	return out
}

func ids(t *testing.T, loaded []map[string]any) []string {
	t.Helper()
	out := make([]string, len(loaded))
	for i, r := range loaded {
		out[i] = r["id"].(json.Number).String()
	}
	return out
}

func TestWritePage(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, telemetry.NewRecorder())

	path, err := store.WritePage(Page{Index: 3, Records: records(t, 1, 2)})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "page_3.json"), path)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(contents), "{\n    \"plugins\": [\n        {"))

	loaded, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, ids(t, loaded))
	require.Equal(t, "plugin 2", loaded[1]["name"])
}

func TestWritePageKeepsMarkup(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, telemetry.NewRecorder())

	path, err := store.WritePage(Page{Index: 1, Records: []marketplace.Record{
		marketplace.Record(`{"preview": "<b>fast</b> & small"}`),
	}})
	require.NoError(t, err)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), `"<b>fast</b> & small"`)
}

func TestLoadAllOrder(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, telemetry.NewRecorder())

	// written out of order and past page 9 so lexical and numeric order differ
	for _, index := range []int{10, 2, 1} {
		_, err := store.WritePage(Page{Index: index, Records: records(t, index*10, index*10+1)})
		require.NoError(t, err)
	}
	err := os.WriteFile(filepath.Join(dir, "extra.json"), []byte(`[{"id": 999}]`), 0666)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`ignored`), 0666)
	require.NoError(t, err)

	files, err := store.ListFiles()
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "page_1.json"),
		filepath.Join(dir, "page_2.json"),
		filepath.Join(dir, "page_10.json"),
		filepath.Join(dir, "extra.json"),
	}, files)

	loaded, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"10", "11", "20", "21", "100", "101", "999"}, ids(t, loaded))
}

func TestLoadAllBothShapes(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "page_1.json"), []byte(`{"plugins": [{"id": 1}, {"id": 2}]}`), 0666)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "page_2.json"), []byte(`[{"id": 3}, {"id": 4}]`), 0666)
	require.NoError(t, err)

	store := NewStore(dir, telemetry.NewRecorder())
	loaded, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3", "4"}, ids(t, loaded))
}

func TestLoadAllMissingDirectory(t *testing.T) {
	rec := telemetry.NewRecorder()
	store := NewStore(filepath.Join(t.TempDir(), "missing"), rec)

	loaded, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, loaded)
	require.Equal(t, []string{"snapshot: " + report_store_list}, rec.IDs(telemetry.LevelWarning))
}

func TestLoadAllDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "page_1.json"), []byte(`[{"id": 1}]`), 0666)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "page_2.json"), []byte(`[{"id": `), 0666)
	require.NoError(t, err)

	rec := telemetry.NewRecorder()
	store := NewStore(dir, rec)
	_, err = store.LoadAll(context.Background())
	require.ErrorIs(t, err, ErrDecode)
	require.Contains(t, err.Error(), "page_2.json")
	require.Equal(t, []string{"snapshot: " + report_store_load}, rec.IDs(telemetry.LevelBroken))
}

func TestLoadAllLargeNumbers(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(
		filepath.Join(dir, "page_1.json"),
		[]byte(`[{"id": 9007199254740993, "cdate": 1700000000000}]`),
		0666,
	)
	require.NoError(t, err)

	loaded, err := NewStore(dir, telemetry.NewRecorder()).LoadAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, json.Number("9007199254740993"), loaded[0]["id"])
	require.Equal(t, json.Number("1700000000000"), loaded[0]["cdate"])
}
