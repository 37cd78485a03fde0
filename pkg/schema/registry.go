package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrTargetNotAuthorized is returned when an import is requested against an
// identifier absent from the registry. The registry is the allow-list:
// target identifiers from requests are never resolved to types directly.
var ErrTargetNotAuthorized = errors.New("import target not authorized")

// Target is one importable entity: its identifier, ordered field
// descriptors, backing store, and optional duplicate merge hook.
type Target struct {
	id     string
	fields []FieldDescriptor
	store  Store
	merge  MergeHook
}

type TargetOption func(*Target)

// WithMergeHook installs the duplicate merge behavior for the target.
func WithMergeHook(hook MergeHook) TargetOption {
	return func(t *Target) {
		t.merge = hook
	}
}

func NewTarget(id string, fields []FieldDescriptor, store Store, opts ...TargetOption) (*Target, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("target id is required")
	}
	if store == nil {
		return nil, fmt.Errorf("target %q: store is required", id)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("target %q: at least one field descriptor is required", id)
	}

	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if err := f.validate(); err != nil {
			return nil, fmt.Errorf("target %q: %w", id, err)
		}
		if _, ok := seen[f.Name]; ok {
			return nil, fmt.Errorf("target %q: duplicate field %q", id, f.Name)
		}
		seen[f.Name] = struct{}{}
	}

	t := &Target{
		id:     id,
		fields: append([]FieldDescriptor(nil), fields...),
		store:  store,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *Target) ID() string { return t.id }

// Fields returns the descriptor list in declaration order. The slice is a
// copy; descriptors are immutable for the duration of a session.
func (t *Target) Fields() []FieldDescriptor {
	return append([]FieldDescriptor(nil), t.fields...)
}

func (t *Target) Field(name string) (FieldDescriptor, bool) {
	for _, f := range t.fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

func (t *Target) RequiredFields() []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(t.fields))
	for _, f := range t.fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

func (t *Target) UniqueFields() []FieldDescriptor {
	out := make([]FieldDescriptor, 0, len(t.fields))
	for _, f := range t.fields {
		if f.Unique {
			out = append(out, f)
		}
	}
	return out
}

func (t *Target) Store() Store { return t.store }
func (t *Target) MergeHook() MergeHook { return t.merge }

// Registry is the out-of-band allow-list of importable entities. Modules
// register their targets at startup; requests can only resolve what was
// registered.
type Registry struct {
	mu      sync.RWMutex
	targets map[string]*Target
}

func NewRegistry() *Registry {
	return &Registry{targets: map[string]*Target{}}
}

func (r *Registry) Register(targets ...*Target) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range targets {
		if _, ok := r.targets[t.id]; ok {
			return fmt.Errorf("target %q already registered", t.id)
		}
		r.targets[t.id] = t
	}
	return nil
}

// Resolve returns the target for an identifier, failing closed for anything
// not explicitly registered.
func (r *Registry) Resolve(id string) (*Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.targets[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTargetNotAuthorized, id)
	}
	return t, nil
}

// IDs lists registered target identifiers, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.targets))
	for id := range r.targets {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
