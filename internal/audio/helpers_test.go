package audio

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeScript writes an executable shell script into a temp dir and returns its path.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

// fakeFFmpeg concatenates the files named in the concat list into the last argument.
const fakeFFmpeg = `list=""
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-i" ]; then list="$2"; fi
  out="$1"
  shift
done
: > "$out"
sed -n "s/^file '\(.*\)'$/\1/p" "$list" | while IFS= read -r f; do cat "$f" >> "$out"; done
`

// fakePiper writes "<model>|<stdin>" to --output_file and fails for text containing FAIL.
const fakePiper = `model=""
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    --model) model="$2"; shift ;;
    --output_file) out="$2"; shift ;;
  esac
  shift
done
text=$(cat)
case "$text" in
  *FAIL*) echo "synthesis exploded" >&2; exit 3 ;;
esac
printf '%s|%s' "$(basename "$model")" "$text" > "$out"
`

// listDir returns the names of the entries in dir.
func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
