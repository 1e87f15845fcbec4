package venuea

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Signer produces the three KALSHI-ACCESS-* headers venue A requires on
// every authenticated request.
//
// There is no third-party RSASSA-PSS/PS256 library in use anywhere in
// the examples pack; RSA-PSS is a primitive the standard library
// implements directly (crypto/rsa.SignPSS with MGF1-SHA256), and no
// pack dependency wraps it at a higher level, so this is implemented
// directly against crypto/rsa rather than introduced as a new
// dependency.
type Signer struct {
	keyID string
	priv  *rsa.PrivateKey
}

// NewSigner parses a PEM-encoded RSA private key. Literal "\n"
// sequences (as produced by shell-escaped environment variables) are
// unescaped before parsing.
func NewSigner(keyID, pemKey string) (*Signer, error) {
	unescaped := strings.ReplaceAll(pemKey, `\n`, "\n")
	block, _ := pem.Decode([]byte(unescaped))
	if block == nil {
		return nil, fmt.Errorf("venuea: no PEM block found in secret")
	}

	var priv *rsa.PrivateKey
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		priv = key
	} else if keyAny, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := keyAny.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("venuea: PKCS8 key is not RSA")
		}
		priv = rsaKey
	} else {
		return nil, fmt.Errorf("venuea: parse private key: %w", err)
	}

	return &Signer{keyID: keyID, priv: priv}, nil
}

// Headers signs method+path at the current time and returns the three
// KALSHI-ACCESS-* headers. The signed message is always
// timestamp+METHOD+path; the request body, even on POST, is signed as
// a literal empty string.
func (s *Signer) Headers(method, path string) (map[string]string, error) {
	tsMillis := strconv.FormatInt(time.Now().UnixMilli(), 10)
	message := tsMillis + strings.ToUpper(method) + path

	digest := sha256.Sum256([]byte(message))
	sig, err := rsa.SignPSS(rand.Reader, s.priv, crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
		Hash:       crypto.SHA256,
	})
	if err != nil {
		return nil, fmt.Errorf("venuea: sign request: %w", err)
	}

	return map[string]string{
		"KALSHI-ACCESS-KEY":       s.keyID,
		"KALSHI-ACCESS-SIGNATURE": base64.StdEncoding.EncodeToString(sig),
		"KALSHI-ACCESS-TIMESTAMP": tsMillis,
	}, nil
}
