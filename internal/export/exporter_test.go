package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyssms/internal/models"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []string{"id", "note"}, [][]string{
		{"1", "plain"},
		{"2", "has;semicolon"},
		{"3", `quote "x"`},
	})
	require.NoError(t, err)

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, utf8BOM))
	assert.Equal(t,
		"id;note\n1;plain\n2;\"has;semicolon\"\n3;\"quote \"\"x\"\"\"\n",
		string(out[len(utf8BOM):]))
}

func TestWriteJSON_KeepsColumnOrderAndNulls(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []string{"z", "a"}, [][]string{{"1", "NULL"}}))

	var compact bytes.Buffer
	require.NoError(t, json.Compact(&compact, buf.Bytes()))
	assert.Equal(t, `[{"z":"1","a":null}]`, compact.String())
}

func TestWrite_DispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	result := models.NewRowsResult([]string{"id"}, [][]string{{"7"}})

	csvPath := filepath.Join(dir, "out", "r.csv")
	require.NoError(t, Write(csvPath, result))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "id\n7\n", string(bytes.TrimPrefix(data, utf8BOM)))

	jsonPath := filepath.Join(dir, "r.JSON")
	require.NoError(t, Write(jsonPath, result))
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"7"}]`, string(data))
}

func TestWrite_RejectsNonTabular(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.csv")

	assert.ErrorIs(t, Write(path, nil), ErrNothingToExport)
	assert.ErrorIs(t, Write(path, models.NewAffectedResult(3)), ErrNothingToExport)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDefaultPath(t *testing.T) {
	now := time.Date(2026, 5, 4, 13, 2, 9, 0, time.Local)

	home := t.TempDir()
	assert.Equal(t, filepath.Join(home, "sales_results_20260504_130209.csv"), DefaultPath(home, "sales", now))

	require.NoError(t, os.Mkdir(filepath.Join(home, "Downloads"), 0755))
	assert.Equal(t, filepath.Join(home, "Downloads", "query_results_20260504_130209.csv"), DefaultPath(home, "", now))
	assert.Equal(t, filepath.Join(home, "Downloads", "a_b_results_20260504_130209.csv"), DefaultPath(home, "a/b", now))
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/home/u", ExpandHome("~", "/home/u"))
	assert.Equal(t, filepath.Join("/home/u", "x.csv"), ExpandHome("~/x.csv", "/home/u"))
	assert.Equal(t, "/tmp/x.csv", ExpandHome("/tmp/x.csv", "/home/u"))
}
