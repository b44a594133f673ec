package entities_test

import (
	"strings"
	"testing"

	"github.com/reglet-dev/skillguard/domain/entities"
)

func FuzzParsePermission(f *testing.F) {
	f.Add("fs:read:/app/data")
	f.Add("api:brave:https://api.search.brave.com")
	f.Add("kv:write:cache:")
	f.Add("nocolon")

	f.Fuzz(func(t *testing.T, s string) {
		parsed, err := entities.ParsePermission(s)
		if strings.Count(s, ":") == 0 {
			if err == nil {
				t.Fatalf("expected error for %q", s)
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", s, err)
		}

		again, err := entities.ParsePermission(parsed.String())
		if err != nil {
			t.Fatalf("reparse of %q failed: %v", parsed.String(), err)
		}
		if again != parsed {
			t.Fatalf("round trip mismatch: %+v != %+v", again, parsed)
		}
		// Never panics.
		entities.BuildPermissionSet([]string{s})
		entities.DescribePermission(s)
	})
}
