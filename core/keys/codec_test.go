package keys

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSanitizeReplacesDisallowedCharacters(t *testing.T) {
	got := Sanitize("my video [final]#2%.mp4")
	want := "my video -final--2-.mp4"
	if got != want {
		t.Fatalf("Sanitize() = %q, want %q", got, want)
	}
}

func TestSanitizeKeepsAllowListedCharacters(t *testing.T) {
	allowed := "abcXYZ019 -_.!*'()/&$@=;:+,?"
	if got := Sanitize(allowed); got != allowed {
		t.Fatalf("Sanitize(%q) = %q, want unchanged", allowed, got)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"plain.mp4",
		"weird\tname\n#%^.mov",
		strings.Repeat("日本語", 600),
		"",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: %q != %q", in, once, twice)
		}
		if len(once) > MaxSanitizedLength {
			t.Errorf("Sanitize(%q) length %d exceeds cap %d", in, len(once), MaxSanitizedLength)
		}
		if disallowedChars.MatchString(once) {
			t.Errorf("Sanitize(%q) = %q still contains disallowed characters", in, once)
		}
	}
}

func TestSanitizeTruncates(t *testing.T) {
	long := strings.Repeat("a", 2000)
	if got := Sanitize(long); len(got) != MaxSanitizedLength {
		t.Fatalf("Sanitize(long) length = %d, want %d", len(got), MaxSanitizedLength)
	}
}

func TestBuildKeyParseKeyRoundTrip(t *testing.T) {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		key  string
		want ParsedKey
	}{
		{
			name: "tagged source key",
			key:  BuildKey("input-videos", ts, "ab12cd34", "demo.mp4"),
			want: ParsedKey{
				Namespace:     "input-videos",
				Timestamp:     "20240101120000",
				Disambiguator: "ab12cd34",
				Name:          "demo.mp4",
				Form:          FormTagged,
			},
		},
		{
			name: "simple key without disambiguator",
			key:  BuildKey("transcriptions", ts, "", "sample"),
			want: ParsedKey{
				Namespace: "transcriptions",
				Timestamp: "20240101120000",
				Name:      "sample",
				Form:      FormSimple,
			},
		},
		{
			name: "rich derived key",
			key:  BuildDerivedKey("transcriptions", ts.Add(5*time.Second), "20240101120000-ab12cd34-demo"),
			want: ParsedKey{
				Namespace:       "transcriptions",
				Timestamp:       "20240101120005",
				SourceTimestamp: "20240101120000",
				Disambiguator:   "ab12cd34",
				Name:            "demo",
				Form:            FormRich,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseKey(tt.key)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseKey(%q) mismatch (-want +got):\n%s", tt.key, diff)
			}
		})
	}
}

func TestParseBaseUnmatched(t *testing.T) {
	for _, base := range []string{"no-timestamp-here.mp4", "123-short.mp4", ""} {
		got := ParseBase(base)
		if got.Form != FormNone {
			t.Errorf("ParseBase(%q).Form = %v, want FormNone", base, got.Form)
		}
	}
}

func TestParseBasePrefersRicherForm(t *testing.T) {
	// A rich base also matches the simple pattern; the rich one must win.
	got := ParseBase("20240101120005-20240101120000-ab12cd34-demo")
	if got.Form != FormRich {
		t.Fatalf("Form = %v, want FormRich", got.Form)
	}
	if got.SourceTimestamp != "20240101120000" {
		t.Fatalf("SourceTimestamp = %q, want 20240101120000", got.SourceTimestamp)
	}
}

func TestExtractTimestamps(t *testing.T) {
	got := ExtractTimestamps("20240101120005-20240101120000-ab12cd34-demo")
	want := []string{"20240101120005", "20240101120000"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExtractTimestamps mismatch (-want +got):\n%s", diff)
	}

	if got := ExtractTimestamps("no digits"); got != nil {
		t.Errorf("ExtractTimestamps(no digits) = %v, want nil", got)
	}
}

func TestNewDisambiguator(t *testing.T) {
	d := NewDisambiguator()
	if len(d) != 8 {
		t.Fatalf("disambiguator length = %d, want 8", len(d))
	}
	if !taggedPattern.MatchString("20240101120000-" + d + "-x") {
		t.Fatalf("disambiguator %q is not lowercase hex", d)
	}
}
