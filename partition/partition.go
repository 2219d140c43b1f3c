package partition

import (
	"encoding/json"
	"errors"
	"fmt"
)

type (
	// Partition describes one independently schedulable unit of scan work.
	// Implementations are pure values: immutable once constructed and
	// freely shared across workers.
	Partition interface {
		// Kind is the type tag carried in the serialized envelope.
		Kind() string
		// Equals is value equality, defined only between two partitions
		// of the same kind. Cross-kind comparison is always false.
		Equals(other Partition) bool
		// Hash is a stable 64-bit identity digest used for deduplication
		// and cache keys. It must be deterministic across processes and
		// is deliberately not a full-equality proxy.
		Hash() uint64
	}

	// envelope is the tagged wire form: the kind string first, then the
	// variant's own field set. A decoder without a matching kind
	// registration fails instead of misinterpreting bytes.
	envelope struct {
		Type string          `json:"type"`
		Part json.RawMessage `json:"part"`
	}
)

var (
	ErrWrongPartitionKind = errors.New("wrong partition kind")
	ErrUnknownKind        = errors.New("unknown partition kind")

	kinds = map[string]func() Partition{}
)

// registerKind adds a decodable partition variant. Called only from init
// funcs, the kind set is closed after package initialization.
func registerKind(kind string, fn func() Partition) {
	kinds[kind] = fn
}

// Encode serializes a partition into its tagged envelope so it can cross a
// process or network boundary to a worker.
func Encode(p Partition) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("error in json.Marshal of %q partition: %w", p.Kind(), err)
	}
	b, err := json.Marshal(envelope{Type: p.Kind(), Part: raw})
	if err != nil {
		return nil, fmt.Errorf("error in json.Marshal of envelope: %w", err)
	}
	return b, nil
}

// Decode reconstructs the concrete partition variant named by the envelope's
// type tag.
func Decode(b []byte) (Partition, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("error in json.Unmarshal of envelope: %w", err)
	}
	fn, ok := kinds[env.Type]
	if !ok {
		return nil, fmt.Errorf("cannot decode partition with type tag %q: %w", env.Type, ErrUnknownKind)
	}
	p := fn()
	if err := json.Unmarshal(env.Part, p); err != nil {
		return nil, fmt.Errorf("error in json.Unmarshal of %q partition: %w", env.Type, err)
	}
	return p, nil
}
