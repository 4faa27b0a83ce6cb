package keys

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the fixed-width timestamp format embedded in object keys.
// Keys built with it sort chronologically as plain strings.
const TimestampLayout = "20060102150405"

// MaxSanitizedLength caps sanitized names well below the transcription
// service's 1024-character output key limit.
const MaxSanitizedLength = 900

var (
	disallowedChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.!*'()/&$@=;:+,? ]`)
	timestampRun    = regexp.MustCompile(`\d{14}`)

	// Key base patterns, richest first. The three forms coexist across
	// pipeline versions, so parsing must tolerate all of them.
	richPattern   = regexp.MustCompile(`^(\d{14})-(\d{14})-([a-f0-9]{8})-(.+)$`)
	taggedPattern = regexp.MustCompile(`^(\d{14})-([a-f0-9]{8})-(.+)$`)
	simplePattern = regexp.MustCompile(`^(\d{14})-(.+)$`)
)

// Form identifies which naming scheme a key base matched.
type Form int

const (
	// FormNone means no known pattern matched. Callers treat this as
	// "proceed to fallback search", not as an error.
	FormNone Form = iota
	// FormSimple is {timestamp}-{name}.
	FormSimple
	// FormTagged is {timestamp}-{disambiguator}-{name}, the shape of an
	// uploaded source artifact.
	FormTagged
	// FormRich is {timestamp}-{sourceTimestamp}-{disambiguator}-{name}, the
	// shape of a derived artifact carrying its source's full base name.
	FormRich
)

// ParsedKey holds the components recovered from an object key.
type ParsedKey struct {
	Namespace       string
	Timestamp       string // creation timestamp of the artifact itself
	SourceTimestamp string // rich form only: timestamp of the source artifact
	Disambiguator   string // rich and tagged forms: 8 lowercase hex chars
	Name            string
	Form            Form
}

// Sanitize replaces every character outside the transcription service's
// allow-list with a hyphen and truncates the result to MaxSanitizedLength.
// It is total and idempotent.
func Sanitize(name string) string {
	sanitized := disallowedChars.ReplaceAllString(name, "-")
	if len(sanitized) > MaxSanitizedLength {
		sanitized = sanitized[:MaxSanitizedLength]
	}
	return sanitized
}

// FormatTimestamp renders t in the fixed-width key timestamp format.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// NewDisambiguator returns a short random hex token used to keep
// same-timestamp uploads from colliding.
func NewDisambiguator() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// BuildKey assembles an object key from its components. The disambiguator is
// optional; an empty one yields the simple form.
func BuildKey(namespace string, ts time.Time, disambiguator, name string) string {
	parts := []string{FormatTimestamp(ts)}
	if disambiguator != "" {
		parts = append(parts, disambiguator)
	}
	parts = append(parts, name)
	return namespace + "/" + strings.Join(parts, "-")
}

// BuildDerivedKey assembles the key for an artifact derived from a source
// artifact, prefixing a fresh timestamp to the source's full base name. When
// the source base carries its own timestamp and disambiguator, the result is
// a rich-form key from which the source key can be reconstructed.
func BuildDerivedKey(namespace string, ts time.Time, sourceBase string) string {
	return namespace + "/" + FormatTimestamp(ts) + "-" + sourceBase
}

// ParseKey splits a full object key into namespace and base, then parses the
// base. Keys without a namespace segment parse with an empty Namespace.
func ParseKey(key string) ParsedKey {
	namespace, base := "", key
	if i := strings.Index(key, "/"); i >= 0 {
		namespace, base = key[:i], key[i+1:]
	}
	parsed := ParseBase(base)
	parsed.Namespace = namespace
	return parsed
}

// ParseBase parses a namespace-free key base against the known naming
// schemes, richest first. A base matching none of them returns a ParsedKey
// with Form == FormNone rather than an error.
func ParseBase(base string) ParsedKey {
	if m := richPattern.FindStringSubmatch(base); m != nil {
		return ParsedKey{
			Timestamp:       m[1],
			SourceTimestamp: m[2],
			Disambiguator:   m[3],
			Name:            m[4],
			Form:            FormRich,
		}
	}
	if m := taggedPattern.FindStringSubmatch(base); m != nil {
		return ParsedKey{
			Timestamp:     m[1],
			Disambiguator: m[2],
			Name:          m[3],
			Form:          FormTagged,
		}
	}
	if m := simplePattern.FindStringSubmatch(base); m != nil {
		return ParsedKey{
			Timestamp: m[1],
			Name:      m[2],
			Form:      FormSimple,
		}
	}
	return ParsedKey{Name: base, Form: FormNone}
}

// ExtractTimestamps returns every embedded 14-digit run in s, in order of
// appearance. Nested naming can embed several candidates.
func ExtractTimestamps(s string) []string {
	return timestampRun.FindAllString(s, -1)
}
