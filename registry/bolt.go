// Package registry implements a durable name→pid registry surviving
// process restart, the concrete backing for the node's Registry
// collaborator.
package registry

import (
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/Comcast/sheens/codec"
	"github.com/Comcast/sheens/term"
)

var namesBucket = []byte("names")

// BoltRegistry persists name→pid bindings in a single bbolt bucket,
// keyed by atom bytes and valued by the codec-encoded pid term.
type BoltRegistry struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) a BoltRegistry backed by the
// file at path.
func Open(path string) (*BoltRegistry, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("registry: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(namesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltRegistry{db: db}, nil
}

// Close releases the underlying bbolt file.
func (r *BoltRegistry) Close() error {
	return r.db.Close()
}

// Register binds name to pid, overwriting any previous binding.
func (r *BoltRegistry) Register(name string, pid term.Term) error {
	if pid.Type() != term.KindPid {
		return fmt.Errorf("registry: Register: value is not a pid")
	}
	encoded, err := codec.Encode(pid)
	if err != nil {
		return fmt.Errorf("registry: encode pid for %q: %w", name, err)
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(namesBucket).Put([]byte(name), encoded)
	})
}

// Unregister removes any binding for name. Unregistering an absent
// name is not an error.
func (r *BoltRegistry) Unregister(name string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(namesBucket).Delete([]byte(name))
	})
}

// Lookup returns the pid bound to name. An absent name yields
// (Term{}, false, nil), never an error.
func (r *BoltRegistry) Lookup(name string) (term.Term, bool, error) {
	var raw []byte
	err := r.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(namesBucket).Get([]byte(name))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return term.Term{}, false, err
	}
	if raw == nil {
		return term.Term{}, false, nil
	}
	pid, err := codec.Decode(raw)
	if err != nil {
		return term.Term{}, false, fmt.Errorf("registry: decode pid for %q: %w", name, err)
	}
	return pid, true, nil
}
