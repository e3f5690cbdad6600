// Package registry stores schemas by fingerprint and by subject.
//
// Store is an in-memory registry suited to single-object encoding, where a
// reader looks writer schemas up by their CRC-64-AVRO fingerprint.
// ConfluentRegistry adapts a Confluent Schema Registry client for the
// Confluent wire format.
package registry

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/compatibility"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/fingerprint"
	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
)

// Entry is a registered schema with its fingerprints. Entries returned by a
// Store carry their own copy of the canonical bytes.
type Entry struct {
	Fingerprint uint64
	SHA256      [32]byte
	Canonical   []byte
	Schema      schema.Schema
}

func (e Entry) detached() Entry {
	e.Canonical = bytes.Clone(e.Canonical)
	return e
}

// Version is one version of a subject. Versions start at 1.
type Version struct {
	Subject string
	Version int
	Entry   Entry
}

// Store is a concurrency-safe schema store.
type Store interface {
	// Register stores s and returns its entry. Registering a schema whose
	// canonical form is already stored returns the existing entry.
	Register(s schema.Schema) (Entry, error)
	// Lookup finds an entry by CRC-64-AVRO fingerprint.
	Lookup(fp uint64) (Entry, bool)
	// LookupSHA256 finds an entry by SHA-256 fingerprint.
	LookupSHA256(sum [32]byte) (Entry, bool)
	// RegisterSubject adds s as the next version of subject after checking it
	// against the subject compatibility level. A schema equal to an existing
	// version returns that version.
	RegisterSubject(subject string, s schema.Schema) (Version, error)
	// Latest returns the newest version of subject.
	Latest(subject string) (Version, error)
	// Version returns a specific version of subject.
	Version(subject string, version int) (Version, error)
	// Versions returns the version numbers of subject in order.
	Versions(subject string) ([]int, error)
	// Subjects returns the registered subjects in sorted order.
	Subjects() []string
	// SetLevel overrides the compatibility level of subject.
	SetLevel(subject string, level compatibility.Level)
	// Level returns the compatibility level of subject.
	Level(subject string) compatibility.Level
}

// StoreOption configures a Store.
type StoreOption func(*store)

// WithDefaultLevel sets the level used by subjects without an override.
func WithDefaultLevel(level compatibility.Level) StoreOption {
	return func(s *store) {
		s.defaultLevel = level
	}
}

// WithFingerprintCache shares a fingerprint cache with other components.
func WithFingerprintCache(c fingerprint.Cache) StoreOption {
	return func(s *store) {
		if c != nil {
			s.fingerprints = c
		}
	}
}

// WithStoreLogger sets the logger used for registration events.
func WithStoreLogger(l *zap.Logger) StoreOption {
	return func(s *store) {
		if l != nil {
			s.log = l
		}
	}
}

type store struct {
	mu           sync.RWMutex
	byFP         map[uint64]Entry
	bySHA        map[[32]byte]uint64
	subjects     map[string][]uint64
	levels       map[string]compatibility.Level
	defaultLevel compatibility.Level
	fingerprints fingerprint.Cache
	checker      *compatibility.Checker
	log          *zap.Logger
}

// NewStore creates an empty store. The default level is Backward.
func NewStore(opts ...StoreOption) Store {
	s := &store{
		byFP:         make(map[uint64]Entry),
		bySHA:        make(map[[32]byte]uint64),
		subjects:     make(map[string][]uint64),
		levels:       make(map[string]compatibility.Level),
		defaultLevel: compatibility.Backward,
		fingerprints: fingerprint.NewCache(),
		checker:      compatibility.NewChecker(),
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *store) Register(sch schema.Schema) (Entry, error) {
	if err := schema.Validate(sch); err != nil {
		return Entry{}, fmt.Errorf("failed to register schema: %w", err)
	}
	p, err := s.fingerprints.Get(sch)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to fingerprint schema: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerLocked(sch, p)
}

func (s *store) registerLocked(sch schema.Schema, p fingerprint.Pair) (Entry, error) {
	if existing, ok := s.byFP[p.Fingerprint64]; ok {
		if !bytes.Equal(existing.Canonical, p.Canonical) {
			return Entry{}, fmt.Errorf("%w: %016x is taken by %s", ErrFingerprintCollision, p.Fingerprint64, existing.Canonical)
		}
		return existing.detached(), nil
	}
	e := Entry{
		Fingerprint: p.Fingerprint64,
		SHA256:      p.SHA256,
		Canonical:   p.Canonical,
		Schema:      sch,
	}
	s.byFP[e.Fingerprint] = e
	s.bySHA[e.SHA256] = e.Fingerprint
	s.log.Debug("schema registered",
		zap.String("fingerprint", fmt.Sprintf("%016x", e.Fingerprint)),
		zap.String("schema", schema.FullNameOf(sch)))
	return e.detached(), nil
}

func (s *store) Lookup(fp uint64) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byFP[fp]
	return e.detached(), ok
}

func (s *store) LookupSHA256(sum [32]byte) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fp, ok := s.bySHA[sum]
	if !ok {
		return Entry{}, false
	}
	return s.byFP[fp].detached(), true
}

func (s *store) RegisterSubject(subject string, sch schema.Schema) (Version, error) {
	if subject == "" {
		return Version{}, fmt.Errorf("failed to register schema: subject is required")
	}
	if err := schema.Validate(sch); err != nil {
		return Version{}, fmt.Errorf("failed to register schema for subject %s: %w", subject, err)
	}
	p, err := s.fingerprints.Get(sch)
	if err != nil {
		return Version{}, fmt.Errorf("failed to fingerprint schema: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	versions := s.subjects[subject]
	if i := lo.IndexOf(versions, p.Fingerprint64); i >= 0 {
		return Version{Subject: subject, Version: i + 1, Entry: s.byFP[p.Fingerprint64].detached()}, nil
	}

	level := s.levelLocked(subject)
	history := lo.Map(versions, func(fp uint64, _ int) schema.Schema { return s.byFP[fp].Schema })
	result, err := s.checker.CheckLevel(level, sch, history)
	if err != nil {
		return Version{}, fmt.Errorf("failed to check schema for subject %s: %w", subject, err)
	}
	if !result.IsCompatible() {
		return Version{}, &IncompatibleError{Subject: subject, Level: level, Result: result}
	}

	e, err := s.registerLocked(sch, p)
	if err != nil {
		return Version{}, err
	}
	s.subjects[subject] = append(versions, e.Fingerprint)
	v := Version{Subject: subject, Version: len(s.subjects[subject]), Entry: e}
	s.log.Debug("subject version registered",
		zap.String("subject", subject),
		zap.Int("version", v.Version),
		zap.String("level", level.String()))
	return v, nil
}

func (s *store) Latest(subject string) (Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions, ok := s.subjects[subject]
	if !ok || len(versions) == 0 {
		return Version{}, fmt.Errorf("%w: subject %s", ErrNotFound, subject)
	}
	n := len(versions)
	return Version{Subject: subject, Version: n, Entry: s.byFP[versions[n-1]].detached()}, nil
}

func (s *store) Version(subject string, version int) (Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.subjects[subject]
	if version < 1 || version > len(versions) {
		return Version{}, fmt.Errorf("%w: subject %s version %d", ErrNotFound, subject, version)
	}
	return Version{Subject: subject, Version: version, Entry: s.byFP[versions[version-1]].detached()}, nil
}

func (s *store) Versions(subject string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions, ok := s.subjects[subject]
	if !ok {
		return nil, fmt.Errorf("%w: subject %s", ErrNotFound, subject)
	}
	return lo.Map(versions, func(_ uint64, i int) int { return i + 1 }), nil
}

func (s *store) Subjects() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := lo.Keys(s.subjects)
	sort.Strings(out)
	return out
}

func (s *store) SetLevel(subject string, level compatibility.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[subject] = level
}

func (s *store) Level(subject string) compatibility.Level {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.levelLocked(subject)
}

func (s *store) levelLocked(subject string) compatibility.Level {
	if l, ok := s.levels[subject]; ok {
		return l
	}
	return s.defaultLevel
}
