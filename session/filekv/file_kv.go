// Package filekv persists the session to a local file so it survives restarts.
// With a passphrase the file is sealed with NaCl secretbox under an argon2id key.
package filekv

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	apperrors "github.com/jrsteele09/procure-client/internal/errors"
	"github.com/jrsteele09/procure-client/session"
)

var _ session.BatchKV = (*Store)(nil)

var sealedMagic = []byte("PCS1")

const (
	saltLen  = 16
	nonceLen = 24
	keyLen   = 32

	argonTime    = 2
	argonMemory  = 19 * 1024
	argonThreads = 1
)

// Store is a file-backed session.KV.
type Store struct {
	path       string
	passphrase []byte

	lock      sync.Mutex
	salt      []byte
	cachedKey *[keyLen]byte
}

// New creates a Store writing to path. An empty passphrase stores plain JSON.
func New(path, passphrase string) *Store {
	return &Store{
		path:       path,
		passphrase: []byte(passphrase),
	}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	if value == "" {
		delete(values, key)
	} else {
		values[key] = value
	}
	return s.write(values)
}

// SetMany applies all values with a single file replace. A file that cannot be
// opened (corrupt, or sealed under another passphrase) is replaced.
func (s *Store) SetMany(_ context.Context, values map[string]string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	current, err := s.read()
	if errors.Is(err, apperrors.ErrSessionCorrupt) {
		log.Warn().Err(err).Str("path", s.path).Msg("filekv: replacing unreadable session file")
		current, s.salt, s.cachedKey = map[string]string{}, nil, nil
	} else if err != nil {
		return err
	}
	for key, value := range values {
		if value == "" {
			delete(current, key)
			continue
		}
		current[key] = value
	}
	return s.write(current)
}

func (s *Store) Clear(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return apperrors.Wrapf(apperrors.ErrStorage, "[filekv Clear] %v", err)
	}
	return nil
}

func (s *Store) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, apperrors.Wrapf(apperrors.ErrStorage, "[filekv read] %v", err)
	}

	if bytes.HasPrefix(data, sealedMagic) {
		if data, err = s.open(data); err != nil {
			return nil, err
		}
	} else if len(s.passphrase) > 0 {
		return nil, apperrors.Wrapf(apperrors.ErrSessionCorrupt, "[filekv read] expected a sealed session file")
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrSessionCorrupt, "[filekv read] %v", err)
	}
	return values, nil
}

func (s *Store) write(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrStorage, "[filekv write] %v", err)
	}
	if len(s.passphrase) > 0 {
		if data, err = s.seal(data); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return apperrors.Wrapf(apperrors.ErrStorage, "[filekv write] %v", err)
	}

	// Write then rename so a crash never leaves a half-written session.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*")
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrStorage, "[filekv write] %v", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.Wrapf(apperrors.ErrStorage, "[filekv write] %v", err)
	}
	if err := tmp.Chmod(fs.FileMode(0o600)); err != nil {
		tmp.Close()
		return apperrors.Wrapf(apperrors.ErrStorage, "[filekv write] %v", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Wrapf(apperrors.ErrStorage, "[filekv write] %v", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return apperrors.Wrapf(apperrors.ErrStorage, "[filekv write] %v", err)
	}
	return nil
}

// seal layout: magic | salt | nonce | secretbox(plaintext)
func (s *Store) seal(plaintext []byte) ([]byte, error) {
	if s.salt == nil {
		salt := make([]byte, saltLen)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
		s.salt = salt
		s.cachedKey = nil
	}
	key := s.key(s.salt)

	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(sealedMagic)+saltLen+nonceLen+len(plaintext)+secretbox.Overhead)
	out = append(out, sealedMagic...)
	out = append(out, s.salt...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &nonce, key), nil
}

func (s *Store) open(data []byte) ([]byte, error) {
	if len(s.passphrase) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrSessionCorrupt, "[filekv open] session file is sealed but no key is configured")
	}
	body := data[len(sealedMagic):]
	if len(body) < saltLen+nonceLen+secretbox.Overhead {
		return nil, apperrors.Wrapf(apperrors.ErrSessionCorrupt, "[filekv open] sealed file too short")
	}

	salt := body[:saltLen]
	var nonce [nonceLen]byte
	copy(nonce[:], body[saltLen:saltLen+nonceLen])

	if !bytes.Equal(salt, s.salt) {
		s.salt = append([]byte(nil), salt...)
		s.cachedKey = nil
	}

	plaintext, ok := secretbox.Open(nil, body[saltLen+nonceLen:], &nonce, s.key(s.salt))
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrSessionCorrupt, "[filekv open] wrong key or tampered file")
	}
	return plaintext, nil
}

func (s *Store) key(salt []byte) *[keyLen]byte {
	if s.cachedKey != nil {
		return s.cachedKey
	}
	var key [keyLen]byte
	copy(key[:], argon2.IDKey(s.passphrase, salt, argonTime, argonMemory, argonThreads, keyLen))
	s.cachedKey = &key
	return s.cachedKey
}
