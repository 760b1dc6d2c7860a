package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Loader struct {
	configDir string
}

func NewLoader(configDir string) *Loader {
	return &Loader{configDir: configDir}
}

// List returns the names of all configuration documents in the config
// directory (file base names without the .yml extension).
func (l *Loader) List() ([]string, error) {
	if _, err := os.Stat(l.configDir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(l.configDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, strings.TrimSuffix(filepath.Base(file), ".yml"))
	}
	return names, nil
}

// Resolve loads the named document, applies any "extends" inheritance
// declared by its meta entries, and returns the validated data entries.
func (l *Loader) Resolve(name string) ([]Entry, error) {
	raw, err := l.loadRaw(name)
	if err != nil {
		return nil, err
	}

	for _, m := range raw {
		if !isMeta(m) {
			continue
		}
		extName, _ := m["extends"].(string)
		if extName == "" {
			continue
		}

		base, err := l.loadRaw(extName)
		if err != nil {
			policy, _ := m["extendFail"].(string)
			if policy == "" || policy == "fail" {
				return nil, fmt.Errorf("resolving extends %q: %w", extName, ErrNotFound)
			}
			slog.Warn("Base configuration unavailable, extension skipped", "config", name, "extends", extName, "error", err)
			continue
		}

		raw = mergeEntries(base, raw)
	}

	entries := make([]Entry, 0, len(raw))
	seen := make(map[string]bool)
	for _, m := range raw {
		if isMeta(m) {
			continue
		}

		entry, err := decodeEntry(name, m)
		if err != nil {
			return nil, err
		}
		if entry.URL == "" {
			return nil, &ConfigError{Document: name, Reason: fmt.Sprintf("entry %q: url is required", entry.Name)}
		}
		if entry.Name == "" {
			return nil, &ConfigError{Document: name, Reason: fmt.Sprintf("entry with url %q: name is required", entry.URL)}
		}
		if seen[entry.Name] {
			return nil, &ConfigError{Document: name, Reason: fmt.Sprintf("duplicate entry name %q", entry.Name)}
		}
		seen[entry.Name] = true

		if err := validateFilters(name, entry); err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// loadRaw reads a document as an ordered sequence of raw mappings. The raw
// form is what the merge algorithm operates on; typed decoding happens after
// inheritance has been resolved.
func (l *Loader) loadRaw(name string) ([]map[string]any, error) {
	path := filepath.Join(l.configDir, filepath.Base(name)+".yml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Document: name, Reason: fmt.Sprintf("failed to parse YAML: %v", err)}
	}

	return raw, nil
}

func isMeta(m map[string]any) bool {
	_, ok := m["conf"]
	return ok
}

// mergeEntries merges an extending document over a base document. Base
// entries are matched by name: a matching extension entry is merged over
// the base entry, a base entry without a match is kept unchanged. Entries
// present only in the extension are not added by this pass, and meta
// entries of the base are dropped.
func mergeEntries(base, ext []map[string]any) []map[string]any {
	merged := make([]map[string]any, 0, len(base))

	for _, b := range base {
		if isMeta(b) {
			continue
		}
		name, _ := b["name"].(string)

		var match map[string]any
		for _, e := range ext {
			if isMeta(e) {
				continue
			}
			if n, _ := e["name"].(string); n != "" && n == name {
				match = e
				break
			}
		}

		if match != nil {
			merged = append(merged, mergeEntry(b, match))
		} else {
			merged = append(merged, b)
		}
	}

	return merged
}

// mergeEntry overwrites base keys with extension keys, recursing where both
// sides hold a nested mapping and replacing outright everywhere else. The
// "conf" key itself is never carried over.
func mergeEntry(base, ext map[string]any) map[string]any {
	for k, v := range ext {
		if k == "conf" {
			continue
		}
		if bm, ok := base[k].(map[string]any); ok {
			if em, ok := v.(map[string]any); ok {
				base[k] = mergeEntry(bm, em)
				continue
			}
		}
		base[k] = v
	}
	return base
}

func decodeEntry(document string, m map[string]any) (Entry, error) {
	var entry Entry

	data, err := yaml.Marshal(m)
	if err != nil {
		return entry, &ConfigError{Document: document, Reason: fmt.Sprintf("failed to re-encode entry: %v", err)}
	}
	if err := yaml.Unmarshal(data, &entry); err != nil {
		return entry, &ConfigError{Document: document, Reason: fmt.Sprintf("failed to decode entry: %v", err)}
	}

	return entry, nil
}

func validateFilters(document string, entry Entry) error {
	if entry.Filters == nil {
		return nil
	}

	fields := map[string]*FieldFilter{
		"name":        entry.Filters.Name,
		"description": entry.Filters.Description,
	}

	for field, ff := range fields {
		if ff == nil {
			continue
		}
		if ff.Exclude != nil && ff.IncludeOnly != nil {
			return &ConfigError{
				Document: document,
				Reason:   fmt.Sprintf("entry %q: cannot specify both exclude and includeOnly for %s", entry.Name, field),
			}
		}
	}

	return nil
}
