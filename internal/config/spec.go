package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EnvSource identifies where an environment item's value comes from.
type EnvSource string

const (
	// SourceStatic means the value is used verbatim.
	SourceStatic EnvSource = "static"
	// SourceVault means the value is a "mount/path/key" secret reference.
	SourceVault EnvSource = "vault"
)

// EnvItem is a single environment entry in the item-array spec shape.
type EnvItem struct {
	Key    string    `json:"key"`
	Value  string    `json:"value"`
	Source EnvSource `json:"source,omitempty"`
}

// RefEntry is a legacy reference-map entry: a secret reference plus an
// optional flag that downgrades a missing secret from an error to a skip.
type RefEntry struct {
	Ref      string `json:"ref"`
	Optional bool   `json:"optional,omitempty"`
}

// EnvKind discriminates the supported env spec shapes.
type EnvKind int

const (
	// EnvKindNone means no environment was specified.
	EnvKindNone EnvKind = iota
	// EnvKindItems is the item-array shape.
	EnvKindItems
	// EnvKindStatic is the legacy flat key/value map shape.
	EnvKindStatic
	// EnvKindRefs is the legacy reference-map shape.
	EnvKindRefs
)

// EnvSpec is a tagged union over the three accepted env shapes. Exactly
// the field matching Kind is populated.
type EnvSpec struct {
	Kind   EnvKind
	Items  []EnvItem
	Static map[string]string
	Refs   map[string]RefEntry
}

// EnvItems builds an item-array EnvSpec.
func EnvItems(items ...EnvItem) EnvSpec {
	return EnvSpec{Kind: EnvKindItems, Items: items}
}

// EnvStatic builds a legacy flat-map EnvSpec.
func EnvStatic(m map[string]string) EnvSpec {
	return EnvSpec{Kind: EnvKindStatic, Static: m}
}

// EnvRefs builds a legacy reference-map EnvSpec.
func EnvRefs(m map[string]RefEntry) EnvSpec {
	return EnvSpec{Kind: EnvKindRefs, Refs: m}
}

// UnmarshalJSON decodes any of the accepted env shapes. The discriminator
// is structural: an array is the item shape; an object whose values are
// strings is the legacy flat map; an object whose values are objects is
// the legacy reference map.
func (e *EnvSpec) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*e = EnvSpec{}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var items []EnvItem
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("env items: %w", err)
		}
		*e = EnvSpec{Kind: EnvKindItems, Items: items}
		return nil

	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("env map: %w", err)
		}
		if len(raw) == 0 {
			*e = EnvSpec{Kind: EnvKindStatic, Static: map[string]string{}}
			return nil
		}

		// Inspect one value to pick the legacy shape, then decode all
		// entries uniformly so mixed shapes are rejected.
		var isRefMap bool
		for _, v := range raw {
			isRefMap = len(bytes.TrimSpace(v)) > 0 && bytes.TrimSpace(v)[0] == '{'
			break
		}

		if isRefMap {
			refs := make(map[string]RefEntry, len(raw))
			for k, v := range raw {
				var entry RefEntry
				dec := json.NewDecoder(bytes.NewReader(v))
				dec.DisallowUnknownFields()
				if err := dec.Decode(&entry); err != nil {
					return fmt.Errorf("env ref %q: %w", k, err)
				}
				refs[k] = entry
			}
			*e = EnvSpec{Kind: EnvKindRefs, Refs: refs}
			return nil
		}

		static := make(map[string]string, len(raw))
		for k, v := range raw {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("env value for %q must be a string: %w", k, err)
			}
			static[k] = s
		}
		*e = EnvSpec{Kind: EnvKindStatic, Static: static}
		return nil
	}

	return fmt.Errorf("env must be an array of items or a map")
}

// MarshalJSON renders the populated shape.
func (e EnvSpec) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case EnvKindItems:
		return json.Marshal(e.Items)
	case EnvKindStatic:
		return json.Marshal(e.Static)
	case EnvKindRefs:
		return json.Marshal(e.Refs)
	default:
		return []byte("null"), nil
	}
}

// validate checks the shape-level invariants. Key uniqueness is enforced
// by the environment resolver, not here: duplicate keys are a resolution
// error raised from Provide, before any I/O.
func (e EnvSpec) validate() error {
	switch e.Kind {
	case EnvKindNone, EnvKindStatic, EnvKindRefs:
		return nil
	case EnvKindItems:
		for i, item := range e.Items {
			if item.Key == "" {
				return fmt.Errorf("env item %d: key cannot be empty", i)
			}
			switch item.Source {
			case "", SourceStatic, SourceVault:
			default:
				return fmt.Errorf("env item %q: unknown source %q", item.Key, item.Source)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown env kind %d", e.Kind)
}

// WorkspaceSpec describes the workspace container requested for a thread.
// It is immutable once passed to the provisioner.
type WorkspaceSpec struct {
	Image         string  `json:"image,omitempty"`
	Platform      string  `json:"platform,omitempty"`
	Env           EnvSpec `json:"env,omitempty"`
	EnableDinD    bool    `json:"enableDinD,omitempty"`
	InitialScript string  `json:"initialScript,omitempty"`
}

// ParseWorkspaceSpec decodes a spec from JSON, rejecting unknown fields.
func ParseWorkspaceSpec(data []byte) (*WorkspaceSpec, error) {
	var spec WorkspaceSpec
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("invalid workspace spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks the spec's synchronous invariants.
func (s *WorkspaceSpec) Validate() error {
	if s.Platform != "" {
		// A platform string must at least carry an os segment.
		if s.Platform[0] == '/' {
			return fmt.Errorf("invalid platform %q: missing os", s.Platform)
		}
	}
	return s.Env.validate()
}
