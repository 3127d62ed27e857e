// Package storage keeps decoded records in a local pebble database so a
// client can work offline and resume pending edits.
//
// Entries hold the record's wire snapshot encoded as CBOR, the keys that
// were dirty when it was stored and a BLAKE3 digest of the snapshot. A
// restored record has the same fields, metadata and dirty keys as the one
// that was stored.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/fxamacker/cbor/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"

	"github.com/ssargent/cloudrecord/pkg/codec"
	"github.com/ssargent/cloudrecord/pkg/record"
	"github.com/ssargent/cloudrecord/pkg/wire"
)

// Errors
var (
	ErrNotFound     = errors.New("record not found in cache")
	ErrCorruptEntry = errors.New("corrupt cache entry")
	ErrClosed       = errors.New("cache is closed")
)

const entryVersion = 1

// entry is the stored form of one record.
type entry struct {
	Version  int             `cbor:"1,keyasint"`
	Digest   []byte          `cbor:"2,keyasint"`
	Snapshot cbor.RawMessage `cbor:"3,keyasint"`
	Dirty    []string        `cbor:"4,keyasint,omitempty"`
	Deleted  []string        `cbor:"5,keyasint,omitempty"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("storage: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("storage: CBOR decoder initialization failed: " + err.Error())
	}
}

// Options configures a Cache
type Options struct {
	// FS overrides the filesystem, vfs.NewMem() in tests.
	FS vfs.FS
	// Codec decodes stored snapshots. Defaults to the strict codec.
	Codec *codec.Codec
	// Registerer receives the cache metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer
	Logger     *zerolog.Logger
	// Sync forces every write to be durable before returning.
	Sync bool
}

// Cache is a persistent record cache keyed by record identifier. Put, Get
// and Delete may be called concurrently; Close must not race with them.
// Every Get returns a fresh record.
type Cache struct {
	db      *pebble.DB
	codec   *codec.Codec
	metrics *Metrics
	logger  zerolog.Logger
	writeOp *pebble.WriteOptions
}

// Open opens or creates the cache at path.
func Open(path string, opts Options) (*Cache, error) {
	popts := &pebble.Options{}
	if opts.FS != nil {
		popts.FS = opts.FS
	}
	db, err := pebble.Open(path, popts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache at %s: %w", path, err)
	}

	c := &Cache{
		db:      db,
		codec:   opts.Codec,
		metrics: NewMetrics(opts.Registerer),
		logger:  zerolog.Nop(),
		writeOp: pebble.NoSync,
	}
	if c.codec == nil {
		c.codec = codec.New(codec.Options{})
	}
	if opts.Logger != nil {
		c.logger = opts.Logger.With().Str("component", "cache").Logger()
	}
	if opts.Sync {
		c.writeOp = pebble.Sync
	}
	return c, nil
}

// Key returns the database key for id. Owner, zone and name are joined
// with NUL so that no two identifiers share a key.
func Key(id record.RecordID) []byte {
	var b bytes.Buffer
	b.WriteString("rec\x00")
	b.WriteString(id.Zone.Owner)
	b.WriteByte(0)
	b.WriteString(id.Zone.Name)
	b.WriteByte(0)
	b.WriteString(id.Name)
	return b.Bytes()
}

// Put stores r, replacing any previous entry with the same identifier.
func (c *Cache) Put(r *record.Record) (err error) {
	start := time.Now()
	defer func() { c.metrics.RecordOperation("put", err, time.Since(start)) }()

	if c.db == nil {
		return ErrClosed
	}

	data, err := encodeEntry(r)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", r.ID(), err)
	}
	if err := c.db.Set(Key(r.ID()), data, c.writeOp); err != nil {
		return fmt.Errorf("failed to store record %s: %w", r.ID(), err)
	}
	c.metrics.ObserveEntrySize(len(data))
	c.logger.Debug().Str("record", r.ID().String()).Int("bytes", len(data)).Msg("stored record")
	return nil
}

// Get restores the record stored under id.
func (c *Cache) Get(id record.RecordID) (r *record.Record, err error) {
	start := time.Now()
	defer func() { c.metrics.RecordOperation("get", err, time.Since(start)) }()

	if c.db == nil {
		return nil, ErrClosed
	}

	value, closer, err := c.db.Get(Key(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", id, err)
	}
	data := append([]byte(nil), value...)
	if err := closer.Close(); err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", id, err)
	}

	r, err = c.decodeEntry(data, id)
	if err != nil {
		if errors.Is(err, ErrCorruptEntry) {
			c.metrics.RecordCorruption()
			c.logger.Warn().Str("record", id.String()).Err(err).Msg("cache entry failed verification")
		}
		return nil, err
	}
	return r, nil
}

// Delete removes the entry for id. Deleting an absent entry is not an
// error.
func (c *Cache) Delete(id record.RecordID) (err error) {
	start := time.Now()
	defer func() { c.metrics.RecordOperation("delete", err, time.Since(start)) }()

	if c.db == nil {
		return ErrClosed
	}
	if err := c.db.Delete(Key(id), c.writeOp); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	return nil
}

// Close releases the database. Further calls return ErrClosed.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

func encodeEntry(r *record.Record) ([]byte, error) {
	snapshot, err := encMode.Marshal(codec.EncodeSnapshot(r))
	if err != nil {
		return nil, err
	}
	sum := blake3.Sum256(snapshot)

	e := entry{
		Version:  entryVersion,
		Digest:   sum[:],
		Snapshot: snapshot,
	}
	for _, key := range r.DirtyKeys() {
		if r.Deleted(key) {
			e.Deleted = append(e.Deleted, key)
		} else {
			e.Dirty = append(e.Dirty, key)
		}
	}
	return encMode.Marshal(e)
}

func (c *Cache) decodeEntry(data []byte, id record.RecordID) (*record.Record, error) {
	var e entry
	if err := decMode.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, id, err)
	}
	if e.Version != entryVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrCorruptEntry, id, e.Version)
	}
	sum := blake3.Sum256(e.Snapshot)
	if !bytes.Equal(sum[:], e.Digest) {
		return nil, fmt.Errorf("%w: %s: digest mismatch", ErrCorruptEntry, id)
	}

	var snapshot wire.Dict
	if err := decMode.Unmarshal(e.Snapshot, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, id, err)
	}
	r, err := c.codec.DecodeRecord(snapshot, &id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, id, err)
	}

	for _, key := range e.Dirty {
		r.Set(key, r.Get(key))
	}
	for _, key := range e.Deleted {
		r.Delete(key)
	}
	return r, nil
}
