package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
)

// Encryptor cifra segredos em repouso (senha do certificado, credencial do
// gateway) com AES-256-GCM. O nonce é prefixado ao ciphertext e o conjunto
// codificado em base64 para caber em coluna de texto.
type Encryptor struct {
	aead cipher.AEAD
}

// New cria um Encryptor a partir de uma chave hex de 32 bytes.
func New(hexKey string) (*Encryptor, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: chave não é hex válido: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("crypto: chave deve ter 32 bytes, recebidos %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: %w", err)
	}
	return &Encryptor{aead: aead}, nil
}

// Encrypt cifra o texto plano e devolve base64(nonce || ciphertext).
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypto: nonce: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverte Encrypt. Falha se o ciphertext foi adulterado ou a chave
// não corresponde.
func (e *Encryptor) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("crypto: base64 inválido: %w", err)
	}
	ns := e.aead.NonceSize()
	if len(raw) < ns {
		return "", fmt.Errorf("crypto: ciphertext curto demais")
	}
	plaintext, err := e.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("crypto: falha ao decifrar: %w", err)
	}
	return string(plaintext), nil
}
