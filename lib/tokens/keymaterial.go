package tokens

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"math/big"
)

// KeyMaterial is the locally generated RSA keypair every issued token is
// signed with, exposed over the JWKS endpoint for clients to verify
// against.
type KeyMaterial struct {
	key *rsa.PrivateKey
	kid string
}

// NewKeyMaterial generates a fresh 2048-bit RSA keypair and derives a kid
// from its public key, so repeated calls never collide.
func NewKeyMaterial() (*KeyMaterial, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	pubBytes, err := json.Marshal(key.PublicKey)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(pubBytes)
	kid := base64.RawURLEncoding.EncodeToString(sum[:8])
	return &KeyMaterial{key: key, kid: kid}, nil
}

// Kid returns the key id advertised in signed token headers and the JWKS.
func (k *KeyMaterial) Kid() string { return k.kid }

// PrivateKey returns the signing key.
func (k *KeyMaterial) PrivateKey() *rsa.PrivateKey { return k.key }

// JWKS renders the public half of the keypair as a JSON Web Key Set.
func (k *KeyMaterial) JWKS() map[string]interface{} {
	pub := k.key.PublicKey
	n := base64.RawURLEncoding.EncodeToString(pub.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(new(big.Int).SetInt64(int64(pub.E)).Bytes())
	return map[string]interface{}{
		"keys": []interface{}{
			map[string]interface{}{
				"kty": "RSA",
				"use": "sig",
				"alg": "RS256",
				"kid": k.kid,
				"n":   n,
				"e":   e,
			},
		},
	}
}
