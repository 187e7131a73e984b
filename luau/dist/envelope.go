// Package dist defines the wire format for distributing compiled bytecode
// chunks: a CBOR envelope carrying the module bytes under a content hash.
package dist

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// FormatVersion is bumped whenever the envelope layout changes.
const FormatVersion = 1

var (
	// ErrHashMismatch indicates the bytecode does not match the sealed hash.
	ErrHashMismatch = errors.New("dist: bytecode hash mismatch")

	// ErrBadFormat indicates an envelope from an unknown format version.
	ErrBadFormat = errors.New("dist: unknown envelope format")
)

// Envelope is a sealed bytecode chunk. Hash is the SHA-256 of Bytecode and
// doubles as the chunk's identity in storage.
type Envelope struct {
	Format   uint16   `cbor:"1,keyasint"`
	Name     string   `cbor:"2,keyasint"`
	Hash     [32]byte `cbor:"3,keyasint"`
	Bytecode []byte   `cbor:"4,keyasint"`
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dist: cbor encoder init: %v", err))
	}
}

// Seal wraps bytecode in a named envelope, computing its content hash.
func Seal(name string, bytecode []byte) *Envelope {
	return &Envelope{
		Format:   FormatVersion,
		Name:     name,
		Hash:     sha256.Sum256(bytecode),
		Bytecode: bytecode,
	}
}

// Verify recomputes the content hash and checks the format version.
func (e *Envelope) Verify() error {
	if e.Format != FormatVersion {
		return fmt.Errorf("%w: version %d", ErrBadFormat, e.Format)
	}
	sum := sha256.Sum256(e.Bytecode)
	if !bytes.Equal(sum[:], e.Hash[:]) {
		return ErrHashMismatch
	}
	return nil
}

// HashString returns the envelope's hash in hex, the storage key form.
func (e *Envelope) HashString() string {
	return fmt.Sprintf("%x", e.Hash)
}

// Marshal serializes the envelope canonically.
func Marshal(e *Envelope) ([]byte, error) {
	data, err := encMode.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("dist: marshal envelope: %w", err)
	}
	return data, nil
}

// Unmarshal parses and verifies an envelope.
func Unmarshal(data []byte) (*Envelope, error) {
	var e Envelope
	if err := cbor.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("dist: unmarshal envelope: %w", err)
	}
	if err := e.Verify(); err != nil {
		return nil, err
	}
	return &e, nil
}
