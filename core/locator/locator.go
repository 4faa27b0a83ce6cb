package locator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"video-pipeline/core/keys"
	"video-pipeline/storage"
)

// DefaultMediaExtensions is the allow-list used by the most-recent fallback
// to filter source listings down to media files.
var DefaultMediaExtensions = []string{".mp4", ".mov", ".avi", ".wmv", ".flac", ".wav", ".mp3"}

// Locator finds the source artifact a derived artifact was produced from.
// Three naming schemes coexist across pipeline versions and list operations
// may lag recent writes, so it works through a cascade of heuristics instead
// of a single authoritative lookup.
type Locator struct {
	store      storage.ObjectStore
	prefix     string
	extensions []string
}

// New creates a locator searching under the given source prefix
func New(store storage.ObjectStore, sourcePrefix string) *Locator {
	return &Locator{
		store:      store,
		prefix:     sourcePrefix,
		extensions: DefaultMediaExtensions,
	}
}

// FindSource resolves the source artifact key for a derived artifact whose
// parsed key and raw base name are given. Strategies run in order, first hit
// wins. It fails with storage.ErrNotFound only when every strategy misses.
func (l *Locator) FindSource(ctx context.Context, parsed keys.ParsedKey, base string) (string, error) {
	if parsed.Form == keys.FormRich {
		if key, ok := l.exactReconstruction(ctx, parsed); ok {
			return key, nil
		}
		if key, ok := l.prefixSearch(ctx, parsed.SourceTimestamp); ok {
			return key, nil
		}
	}

	if parsed.Form == keys.FormSimple || parsed.Form == keys.FormTagged {
		if key, ok := l.nameSearch(ctx, parsed.Name); ok {
			return key, nil
		}
	}

	if key, ok := l.timestampFallback(ctx, base); ok {
		return key, nil
	}

	if key, ok := l.mostRecentFallback(ctx); ok {
		return key, nil
	}

	return "", fmt.Errorf("no source artifact under %s for %q: %w", l.prefix, base, storage.ErrNotFound)
}

// exactReconstruction rebuilds the expected source key from the rich form and
// probes for it directly. The derived name may have dropped the source's
// extension, so the bare name and each known media extension are tried.
func (l *Locator) exactReconstruction(ctx context.Context, parsed keys.ParsedKey) (string, bool) {
	base := parsed.SourceTimestamp + "-" + parsed.Disambiguator + "-" + parsed.Name
	candidates := []string{l.prefix + base}
	if !hasMediaExtension(base, l.extensions) {
		for _, ext := range l.extensions {
			candidates = append(candidates, l.prefix+base+ext)
		}
	}

	for _, key := range candidates {
		if _, err := l.store.Head(ctx, key); err == nil {
			return key, true
		}
	}
	return "", false
}

// prefixSearch lists source objects starting with the given timestamp and
// takes the first result.
func (l *Locator) prefixSearch(ctx context.Context, timestamp string) (string, bool) {
	return l.firstUnderPrefix(ctx, l.prefix+timestamp)
}

// nameSearch lists source objects starting with the derived artifact's
// original name and takes the first result.
func (l *Locator) nameSearch(ctx context.Context, name string) (string, bool) {
	return l.firstUnderPrefix(ctx, l.prefix+name)
}

// timestampFallback scans the derived base for any embedded 14-digit
// timestamp and prefix-searches each candidate in order of appearance.
func (l *Locator) timestampFallback(ctx context.Context, base string) (string, bool) {
	for _, ts := range keys.ExtractTimestamps(base) {
		if key, ok := l.prefixSearch(ctx, ts); ok {
			return key, true
		}
	}
	return "", false
}

// mostRecentFallback lists every source object, filters to known media
// extensions, and returns the most recently modified one.
func (l *Locator) mostRecentFallback(ctx context.Context) (string, bool) {
	infos, err := l.store.List(ctx, l.prefix)
	if err != nil {
		log.Printf("Locator: listing %s failed: %v", l.prefix, err)
		return "", false
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].LastModified.After(infos[j].LastModified)
	})
	for _, info := range infos {
		if hasMediaExtension(info.Key, l.extensions) {
			return info.Key, true
		}
	}
	return "", false
}

func (l *Locator) firstUnderPrefix(ctx context.Context, prefix string) (string, bool) {
	infos, err := l.store.List(ctx, prefix)
	if err != nil {
		log.Printf("Locator: listing %s failed: %v", prefix, err)
		return "", false
	}
	if len(infos) == 0 {
		return "", false
	}
	return infos[0].Key, true
}

func hasMediaExtension(key string, extensions []string) bool {
	lower := strings.ToLower(key)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
