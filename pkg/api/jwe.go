package api

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/go-jose/go-jose/v3"
)

// DefaultKeyAlgorithm is used by keygen and for keys that do not name one.
const DefaultKeyAlgorithm = jose.A256KW

var (
	ErrEncrypt      = errors.New("Could not encrypt payload")
	ErrDecrypt      = errors.New("Could not decrypt payload")
	ErrKeyAlgorithm = errors.New("unsupported key algorithm")
)

// AES key wrap algorithms and the size of the key each one wraps with.
var keySizes = map[jose.KeyAlgorithm]int{
	jose.A128KW: 16,
	jose.A192KW: 24,
	jose.A256KW: 32,
}

// MakeKey generates a random shared key for alg, one of the AES key wrap
// algorithms.
func MakeKey(kid string, alg jose.KeyAlgorithm) (*jose.JSONWebKey, error) {
	size, ok := keySizes[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyAlgorithm, alg)
	}

	key := make([]byte, size)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}

	return &jose.JSONWebKey{Key: key, KeyID: kid, Algorithm: string(alg)}, nil
}

// keyAlgorithm reads the wrap algorithm from the key itself and checks the key
// material is the right size for it.
func keyAlgorithm(authKey *jose.JSONWebKey) (jose.KeyAlgorithm, error) {
	if authKey == nil {
		return "", errors.New("no auth key")
	}

	alg := jose.KeyAlgorithm(authKey.Algorithm)
	if alg == "" {
		alg = DefaultKeyAlgorithm
	}

	size, ok := keySizes[alg]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrKeyAlgorithm, alg)
	}

	material, ok := authKey.Key.([]byte)
	if !ok || len(material) != size {
		return "", fmt.Errorf("%w: %s needs a %d byte symmetric key", ErrKeyAlgorithm, alg, size)
	}

	return alg, nil
}

// Encrypt marshals the message and wraps it in a compact JWE under authKey.
func Encrypt(authKey *jose.JSONWebKey, msg Message) ([]byte, error) {
	byt, err := msg.Marshal()
	if err != nil {
		return nil, fmt.Errorf("Could not marshal message: %w", err)
	}

	return EncryptBytes(authKey, byt)
}

func EncryptBytes(authKey *jose.JSONWebKey, byt []byte) ([]byte, error) {
	alg, err := keyAlgorithm(authKey)
	if err != nil {
		return nil, errors.Join(ErrEncrypt, err)
	}

	e, err := jose.NewEncrypter(jose.A256GCM, jose.Recipient{Algorithm: alg, Key: authKey}, nil)
	if err != nil {
		return nil, errors.Join(ErrEncrypt, err)
	}

	cipherText, err := e.Encrypt(byt)
	if err != nil {
		return nil, errors.Join(ErrEncrypt, err)
	}

	serialized, err := cipherText.CompactSerialize()
	if err != nil {
		return nil, errors.Join(ErrEncrypt, err)
	}

	return []byte(serialized), nil
}

// Decrypt unwraps a compact JWE produced by Encrypt. The JWE must use the
// algorithm the key names.
func Decrypt(authKey *jose.JSONWebKey, byt []byte) ([]byte, error) {
	alg, err := keyAlgorithm(authKey)
	if err != nil {
		return nil, errors.Join(ErrDecrypt, err)
	}

	o, err := jose.ParseEncrypted(string(byt))
	if err != nil {
		return nil, errors.Join(ErrDecrypt, err)
	}

	if got := jose.KeyAlgorithm(o.Header.Algorithm); got != alg {
		return nil, errors.Join(ErrDecrypt, fmt.Errorf("%w: message wrapped with %q, key is %q", ErrKeyAlgorithm, got, alg))
	}

	out, err := o.Decrypt(authKey)
	if err != nil {
		return nil, errors.Join(ErrDecrypt, err)
	}

	return out, nil
}
