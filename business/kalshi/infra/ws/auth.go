// Package ws adapts the shared WebSocket connection machinery to venue K's
// signed-header authentication and subscribe/unsubscribe command protocol.
package ws

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Signer produces the KALSHI-ACCESS-* headers venue K requires on the
// WebSocket upgrade request, signing `timestamp+method+path` with RSA-PSS
// over SHA-256 using the configured private key.
type Signer struct {
	keyID      string
	privateKey *rsa.PrivateKey
}

// NewSigner loads the PEM-encoded RSA private key at privateKeyPath and
// returns a Signer for keyID.
func NewSigner(keyID, privateKeyPath string) (*Signer, error) {
	data, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %s", privateKeyPath)
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		pk, err2 := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err2 != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		rsaKey, ok := pk.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("private key at %s is not RSA", privateKeyPath)
		}
		key = rsaKey
	}

	return &Signer{keyID: keyID, privateKey: key}, nil
}

// Headers returns the auth headers for an HTTP method and path, timestamped
// at the moment of the call.
func (s *Signer) Headers(method, path string) (http.Header, error) {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	msg := timestamp + method + path

	digest := sha256.Sum256([]byte(msg))
	sig, err := rsa.SignPSS(rand.Reader, s.privateKey, crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
	})
	if err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	h := http.Header{}
	h.Set("KALSHI-ACCESS-KEY", s.keyID)
	h.Set("KALSHI-ACCESS-SIGNATURE", base64.StdEncoding.EncodeToString(sig))
	h.Set("KALSHI-ACCESS-TIMESTAMP", timestamp)
	return h, nil
}
