package updater

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"aead.dev/minisign"
)

// ErrBadSignature is returned when an artifact does not match its signature
var ErrBadSignature = errors.New("signature verification failed")

const (
	untrustedPrefix = "untrusted comment:"
	trustedPrefix   = "trusted comment:"
)

// Signature is a parsed minisign signature together with the canonical text
// it was decoded from.
type Signature struct {
	minisign.Signature
	text []byte
}

// unwrap accepts either minisign text or that text base64 encoded, which is
// how keys and signatures travel through manifests and config.
func unwrap(encoded string) string {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, untrustedPrefix) {
		return encoded
	}
	if text, err := base64.StdEncoding.DecodeString(encoded); err == nil && bytes.HasPrefix(text, []byte(untrustedPrefix)) {
		return string(text)
	}
	return encoded
}

func lines(text string) []string {
	var out []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// ParsePublicKey decodes a minisign public key, with or without its comment line
func ParsePublicKey(encoded string) (minisign.PublicKey, error) {
	var pk minisign.PublicKey
	for _, l := range lines(unwrap(encoded)) {
		if strings.HasPrefix(l, untrustedPrefix) {
			continue
		}
		if err := pk.UnmarshalText([]byte(l)); err != nil {
			return pk, fmt.Errorf("decode public key: %w", err)
		}
		return pk, nil
	}
	return pk, errors.New("decode public key: no key line")
}

// ParseSignature decodes a minisign signature file
func ParseSignature(encoded string) (Signature, error) {
	var sig Signature
	ls := lines(unwrap(encoded))
	if len(ls) != 4 || !strings.HasPrefix(ls[0], untrustedPrefix) || !strings.HasPrefix(ls[2], trustedPrefix) {
		return sig, errors.New("malformed signature")
	}

	sig.text = []byte(strings.Join(ls, "\n") + "\n")
	if err := sig.Signature.UnmarshalText(sig.text); err != nil {
		return sig, fmt.Errorf("decode signature: %w", err)
	}
	return sig, nil
}

// verify checks data against sig. Prehashed and legacy signatures are both
// accepted; the trusted comment must carry a valid global signature.
func verify(pk minisign.PublicKey, data []byte, sig Signature) error {
	if sig.KeyID != pk.ID() {
		return fmt.Errorf("%w: signed with key %016X, expected %016X", ErrBadSignature, sig.KeyID, pk.ID())
	}
	if !minisign.Verify(pk, data, sig.text) {
		return ErrBadSignature
	}
	return nil
}
