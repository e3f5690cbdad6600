package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/confluentinc/confluent-kafka-go/v2/schemaregistry"
	"go.uber.org/zap"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
)

// ConfluentRegistry provides integration with Confluent Schema Registry.
// It registers schemas under a subject and resolves schema IDs back to
// parsed schemas, caching both directions.
type ConfluentRegistry interface {
	// Register registers the canonical form of s under subject and returns
	// the schema ID. Transient failures are retried with exponential backoff.
	Register(subject string, s schema.Schema) (int, error)
	// Schema returns the parsed schema of id.
	Schema(id int) (schema.Schema, error)
	// Close releases the underlying client.
	Close() error
}

// ConfluentOption configures a ConfluentRegistry.
type ConfluentOption func(*confluentRegistry)

// WithMaxRetries bounds how many times a failed registration is retried.
func WithMaxRetries(n int) ConfluentOption {
	return func(r *confluentRegistry) {
		if n >= 0 {
			r.maxRetries = n
		}
	}
}

// WithInitialInterval sets the first retry delay.
func WithInitialInterval(d time.Duration) ConfluentOption {
	return func(r *confluentRegistry) {
		if d > 0 {
			r.initialInterval = d
		}
	}
}

// WithLogger sets the logger used for registrations and retries.
func WithLogger(l *zap.Logger) ConfluentOption {
	return func(r *confluentRegistry) {
		if l != nil {
			r.log = l
		}
	}
}

type idKey struct {
	subject   string
	canonical string
}

type confluentRegistry struct {
	client          schemaregistry.Client
	mu              sync.RWMutex
	idCache         map[idKey]int
	schemaCache     map[int]schema.Schema
	maxRetries      int
	initialInterval time.Duration
	log             *zap.Logger
}

// NewConfluentRegistry wraps a Schema Registry client.
func NewConfluentRegistry(client schemaregistry.Client, opts ...ConfluentOption) ConfluentRegistry {
	r := &confluentRegistry{
		client:          client,
		idCache:         make(map[idKey]int),
		schemaCache:     make(map[int]schema.Schema),
		maxRetries:      3,
		initialInterval: 100 * time.Millisecond,
		log:             zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *confluentRegistry) Register(subject string, s schema.Schema) (int, error) {
	canonical, err := schema.Canonical(s)
	if err != nil {
		return 0, fmt.Errorf("failed to canonicalize schema for subject %s: %w", subject, err)
	}
	key := idKey{subject: subject, canonical: string(canonical)}

	r.mu.RLock()
	cachedID, exists := r.idCache[key]
	r.mu.RUnlock()
	if exists {
		return cachedID, nil
	}

	info := schemaregistry.SchemaInfo{
		Schema:     string(canonical),
		SchemaType: "AVRO",
	}

	var id int
	op := func() error {
		var err error
		id, err = r.client.Register(subject, info, false)
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.log.Warn("schema registration failed, retrying",
			zap.String("subject", subject),
			zap.Duration("wait", wait),
			zap.Error(err))
	}
	if err := backoff.RetryNotify(op, r.policy(), notify); err != nil {
		return 0, fmt.Errorf("failed to register schema %s in Confluent Schema Registry: %w", schema.FullNameOf(s), err)
	}

	r.mu.Lock()
	r.idCache[key] = id
	r.schemaCache[id] = s
	r.mu.Unlock()

	r.log.Debug("schema registered in Confluent Schema Registry",
		zap.String("subject", subject),
		zap.Int("id", id))
	return id, nil
}

func (r *confluentRegistry) policy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	return backoff.WithMaxRetries(b, uint64(r.maxRetries))
}

func (r *confluentRegistry) Schema(id int) (schema.Schema, error) {
	r.mu.RLock()
	cached, exists := r.schemaCache[id]
	r.mu.RUnlock()
	if exists {
		return cached, nil
	}

	s, err := r.fetchSchema(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.schemaCache[id] = s
	r.mu.Unlock()
	return s, nil
}

func (r *confluentRegistry) fetchSchema(id int) (schema.Schema, error) {
	subjectVersions, err := r.client.GetSubjectsAndVersionsByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get subjects for schema ID %d: %w", id, err)
	}
	if len(subjectVersions) == 0 {
		return nil, fmt.Errorf("%w: no subjects found for schema ID %d", ErrNotFound, id)
	}

	info, err := r.client.GetBySubjectAndID(subjectVersions[0].Subject, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema %d from registry: %w", id, err)
	}

	s, err := schema.Parse(info.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to parse avro schema %d: %w", id, err)
	}
	return s, nil
}

func (r *confluentRegistry) Close() error {
	return r.client.Close()
}
