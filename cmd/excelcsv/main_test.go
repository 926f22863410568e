package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert"
	"github.com/minio/minio-go/v7"

	"github.com/kjk/excelcsv/excelcsv"
	"github.com/kjk/excelcsv/minioutil"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writePets(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "pets.csv")
	records := []*excelcsv.Record{
		excelcsv.NewRecord("name", "Ann", "pet", "Cat, Dog"),
		excelcsv.NewRecord("name", "Bob", "pet", "No data"),
		excelcsv.NewRecord("name", "Cy", "pet", ""),
	}
	err := excelcsv.Encode(path, excelcsv.Schema{"name", "pet"}, records)
	assert.NoError(t, err)
	return path
}

func TestFieldsAndAddFields(t *testing.T) {
	path := writePets(t)
	out, err := runCmd(t, "fields", "--file", path)
	assert.NoError(t, err)
	assert.Equal(t, "name\npet\n", out)

	out, err = runCmd(t, "add-fields", "-f", path, "--after", "name", "age")
	assert.NoError(t, err)
	assert.Equal(t, "name,age,pet\n", out)

	out, err = runCmd(t, "add-fields", "-f", path, "--prepend", "id")
	assert.NoError(t, err)
	assert.Equal(t, "id,name,age,pet\n", out)

	_, err = runCmd(t, "add-fields", "-f", path, "--prepend", "--after", "name", "x")
	assert.Error(t, err)

	out, err = runCmd(t, "rename-field", "-f", path, "id", "ID")
	assert.NoError(t, err)
	assert.Equal(t, "ID,name,age,pet\n", out)

	_, err = runCmd(t, "fields")
	assert.Error(t, err)
}

func TestCat(t *testing.T) {
	path := writePets(t)
	out, err := runCmd(t, "cat", "-f", path)
	assert.NoError(t, err)
	d, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, string(d), out)

	out, err = runCmd(t, "cat", "-f", path, "--toon")
	assert.NoError(t, err)
	assert.True(t, strings.Contains(out, "Ann"))
	assert.True(t, strings.Contains(out, "fields"))
}

func TestConvertChoiceAndFilter(t *testing.T) {
	path := writePets(t)
	out, err := runCmd(t, "convert-choice", "-f", path, "pet")
	assert.NoError(t, err)
	assert.Equal(t, "name,pet,Cat?,Dog?\n", out)

	filtered := filepath.Join(filepath.Dir(path), "cats.csv")
	_, err = runCmd(t, "filter", "-f", path, "--where", "Cat?=Y", "-o", filtered)
	assert.NoError(t, err)
	s, err := excelcsv.Open(filtered)
	assert.NoError(t, err)
	records, err := s.Read()
	assert.NoError(t, err)
	assert.Equal(t, 1, len(records))
	assert.Equal(t, "Ann", records[0].Value("name"))

	_, err = runCmd(t, "filter", "-f", path, "--where", "color=red")
	assert.Error(t, err)
	_, err = runCmd(t, "filter", "-f", path, "--where", "color")
	assert.Error(t, err)
}

func TestRemoveAndReorder(t *testing.T) {
	path := writePets(t)
	out, err := runCmd(t, "reorder", "-f", path, "pet", "name")
	assert.NoError(t, err)
	assert.Equal(t, "pet,name\n", out)

	out, err = runCmd(t, "remove-field", "-f", path, "pet")
	assert.NoError(t, err)
	assert.Equal(t, "name\n", out)
}

func TestSnapshotFetchRoundTrip(t *testing.T) {
	path := writePets(t)
	snap := filepath.Join(filepath.Dir(path), "pets.csv.zst")
	_, err := runCmd(t, "snapshot", "-f", path, snap)
	assert.NoError(t, err)

	restored := filepath.Join(filepath.Dir(path), "restored.csv")
	err = replaceFromSnapshot(restored, snap)
	assert.NoError(t, err)
	a, err := os.ReadFile(path)
	assert.NoError(t, err)
	b, err := os.ReadFile(restored)
	assert.NoError(t, err)
	assert.True(t, bytes.Equal(a, b))
}

func TestHistory(t *testing.T) {
	path := writePets(t)
	logDir := t.TempDir()
	_, err := runCmd(t, "add-fields", "-f", path, "--log-dir", logDir, "age")
	assert.NoError(t, err)
	out, err := runCmd(t, "history", "--log-dir", logDir)
	assert.NoError(t, err)
	assert.True(t, strings.Contains(out, "excelcsv.header"), out)

	_, err = runCmd(t, "history")
	if os.Getenv("EXCELCSV_LOG_DIR") == "" {
		assert.Error(t, err)
	}
}

func TestPrintObjects(t *testing.T) {
	ch := make(chan minio.ObjectInfo, 3)
	ch <- minio.ObjectInfo{
		Key:          "data/pets.csv.br",
		Size:         2048,
		LastModified: time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC),
	}
	close(ch)
	var buf bytes.Buffer
	err := printObjects(&buf, ch)
	assert.NoError(t, err)
	assert.Equal(t, "2026-03-04 05:06       2 kB data/pets.csv.br\n", buf.String())

	ch = make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Err: errors.New("access denied")}
	close(ch)
	assert.Error(t, printObjects(&buf, ch))
}

func TestRemoteCommandsNeedConfig(t *testing.T) {
	for _, name := range []string{minioutil.EnvAccess, minioutil.EnvSecret, minioutil.EnvBucket, minioutil.EnvEndpoint} {
		t.Setenv(name, "")
	}
	for _, args := range [][]string{{"remote-ls"}, {"remote-rm", "a.csv"}, {"fetch", "-f", "a.csv", "a.csv"}} {
		_, err := runCmd(t, args...)
		assert.Error(t, err)
	}
}

func TestParseWhere(t *testing.T) {
	got, err := parseWhere([]string{"pet=Cat|Dog", "name=Ann", "pet=Fish"})
	assert.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"pet":  {"Cat", "Dog", "Fish"},
		"name": {"Ann"},
	}, got)
	_, err = parseWhere([]string{"=x"})
	assert.Error(t, err)
}
