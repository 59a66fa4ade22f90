// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"hash"
	"os"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/term"

	"github.com/tfctl/tfdelta/internal/log"
)

// ErrNoPassphrase is returned by Decode when the document is encrypted and no
// passphrase source was supplied.
var ErrNoPassphrase = errors.New("state is encrypted and no passphrase is available")

// PassphraseFunc supplies the passphrase for encrypted state. It is only
// called for encrypted documents.
type PassphraseFunc func() (string, error)

// Encrypted reports whether doc is an OpenTofu encrypted state envelope.
func Encrypted(doc []byte) bool {
	return gjson.GetBytes(doc, "encrypted_data").Exists()
}

// Decode returns the plaintext state document, decrypting it first when it is
// an OpenTofu encrypted envelope.
func Decode(doc []byte, passphrase PassphraseFunc) ([]byte, error) {
	if !Encrypted(doc) {
		return doc, nil
	}
	if passphrase == nil {
		return nil, ErrNoPassphrase
	}

	pass, err := passphrase()
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}

	plain, err := DecryptOpenTofuState(doc, pass)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plain, nil
}

// PassphraseFrom resolves the passphrase once, trying flagValue, then
// TFDELTA_PASSPHRASE, then TF_VAR_passphrase, and finally an interactive
// prompt. The result is memoized so a history of encrypted versions prompts
// at most once.
func PassphraseFrom(flagValue string) PassphraseFunc {
	return sync.OnceValues(func() (string, error) {
		if flagValue != "" {
			return flagValue, nil
		}
		for _, env := range []string{"TFDELTA_PASSPHRASE", "TF_VAR_passphrase"} {
			if p := os.Getenv(env); p != "" {
				log.Debugf("passphrase taken from %s", env)
				return p, nil
			}
		}
		return Prompt()
	})
}

// hashes are the pbkdf2 hash functions OpenTofu offers. An empty name is its
// default.
var hashes = map[string]func() hash.Hash{
	"":       sha512.New,
	"sha512": sha512.New,
	"sha256": sha256.New,
}

// keyProvider is the pbkdf2 key provider block OpenTofu stores, base64
// encoded, under meta."key_provider.pbkdf2.<name>".
type keyProvider struct {
	salt       []byte
	iterations int
	keyLength  int
	hash       func() hash.Hash
}

// DecryptOpenTofuState opens an OpenTofu pbkdf2 + AES-GCM envelope with
// passphrase and returns the plaintext state.
func DecryptOpenTofuState(doc []byte, passphrase string) ([]byte, error) {
	if !gjson.ValidBytes(doc) {
		return nil, errors.New("failed to parse state: not a JSON document")
	}

	kp, err := findKeyProvider(gjson.GetBytes(doc, "meta"))
	if err != nil {
		return nil, err
	}

	key := pbkdf2.Key([]byte(passphrase), kp.salt, kp.iterations, kp.keyLength, kp.hash)
	return open(gjson.GetBytes(doc, "encrypted_data").String(), key)
}

func findKeyProvider(meta gjson.Result) (keyProvider, error) {
	var encoded string
	meta.ForEach(func(k, v gjson.Result) bool {
		if strings.HasPrefix(k.String(), "key_provider.pbkdf2.") {
			encoded = v.String()
			return false
		}
		return true
	})
	if encoded == "" {
		return keyProvider{}, errors.New("state meta has no pbkdf2 key provider")
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return keyProvider{}, fmt.Errorf("failed to decode key provider config: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return keyProvider{}, errors.New("failed to parse key provider config: not a JSON document")
	}
	cfg := gjson.ParseBytes(raw)

	name := cfg.Get("hash_function").String()
	hashFunc, ok := hashes[name]
	if !ok {
		return keyProvider{}, fmt.Errorf("unsupported key provider hash function %q", name)
	}

	salt, err := base64.StdEncoding.DecodeString(cfg.Get("salt").String())
	if err != nil {
		return keyProvider{}, fmt.Errorf("failed to decode salt: %w", err)
	}

	return keyProvider{
		salt:       salt,
		iterations: int(cfg.Get("iterations").Int()),
		keyLength:  int(cfg.Get("key_length").Int()),
		hash:       hashFunc,
	}, nil
}

func open(data string, key []byte) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	n := gcm.NonceSize()
	if len(sealed) < n {
		return nil, fmt.Errorf("ciphertext too short: expected at least %d bytes, got %d", n, len(sealed))
	}

	plain, err := gcm.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plain, nil
}

// Prompt reads a passphrase from the terminal without echo. It fails with
// ErrNoPassphrase when stdin is not a terminal.
func Prompt() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNoPassphrase
	}

	fmt.Fprint(os.Stderr, "Enter passphrase: ")
	defer fmt.Fprintln(os.Stderr)

	pass, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	return string(pass), nil
}
