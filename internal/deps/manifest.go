package deps

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/roach88/tryeach/internal/scenario"
)

type document = orderedmap.OrderedMap[string, json.RawMessage]

// RewriteManifest returns data with every overridden section entry set to
// its scenario version. Existing keys keep their position; new packages and
// new sections are appended in sorted order.
func RewriteManifest(data []byte, overrides *scenario.NpmOverrides) ([]byte, error) {
	doc := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	sections := overrides.Sections()
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := overrideSection(doc, name, sections[name]); err != nil {
			return nil, err
		}
	}

	compact, err := encodeObject(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func overrideSection(doc *document, name string, versions map[string]string) error {
	section := orderedmap.New[string, json.RawMessage]()
	if raw, ok := doc.Get(name); ok {
		if err := json.Unmarshal(raw, section); err != nil {
			return fmt.Errorf("manifest section %q is not an object: %w", name, err)
		}
	}

	pkgs := make([]string, 0, len(versions))
	for pkg := range versions {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	for _, pkg := range pkgs {
		encoded, err := encodeValue(versions[pkg])
		if err != nil {
			return err
		}
		section.Set(pkg, encoded)
	}

	encoded, err := encodeObject(section)
	if err != nil {
		return fmt.Errorf("failed to encode section %q: %w", name, err)
	}
	doc.Set(name, encoded)
	return nil
}

// encodeObject writes doc in insertion order. Values are copied as stored, so
// untouched entries keep their original escaping.
func encodeObject(doc *document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for pair := doc.Oldest(); pair != nil; pair = pair.Next() {
		if pair != doc.Oldest() {
			buf.WriteByte(',')
		}
		key, err := encodeValue(pair.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(pair.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeValue marshals v without escaping <, > and &.
func encodeValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
