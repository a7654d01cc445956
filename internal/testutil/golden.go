package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// UpdateGoldenEnv names the variable that rewrites golden files instead of
// comparing against them.
const UpdateGoldenEnv = "DAYPLAN_UPDATE_GOLDEN"

// Golden compares got against testdata/<name>.golden.
// Line endings are normalized on both sides so a CRLF checkout still matches.
func Golden(t testing.TB, name, got string) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")
	if os.Getenv(UpdateGoldenEnv) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("golden: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			t.Fatalf("golden: %v", err)
		}
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("golden: %v (run with %s=1 to create it)\ngot:\n%s", err, UpdateGoldenEnv, got)
	}
	want := strings.ReplaceAll(string(raw), "\r\n", "\n")
	if diff := FirstDiff(want, strings.ReplaceAll(got, "\r\n", "\n")); diff != "" {
		t.Errorf("%s.golden: %s", name, diff)
	}
}

// FirstDiff describes the first line where want and got disagree, or
// returns "" when they are equal.
func FirstDiff(want, got string) string {
	if want == got {
		return ""
	}
	wl := strings.Split(want, "\n")
	gl := strings.Split(got, "\n")
	for i := 0; i < len(wl) || i < len(gl); i++ {
		var w, g string
		if i < len(wl) {
			w = wl[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if i >= len(wl) || i >= len(gl) || w != g {
			return fmt.Sprintf("line %d: want %q, got %q", i+1, w, g)
		}
	}
	return ""
}
