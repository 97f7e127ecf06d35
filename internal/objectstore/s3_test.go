package objectstore

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"car.jpg":              "car.jpg",
		"my car.jpg":           "my-car.jpg",
		"../../etc/passwd":     "passwd",
		`C:\photos\dent.png`:   "dent.png",
		"":                     "upload",
		".":                    "upload",
	}
	for in, want := range cases {
		if got := sanitizeFileName(in); got != want {
			t.Fatalf("sanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
