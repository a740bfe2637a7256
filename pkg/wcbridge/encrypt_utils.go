package wcbridge

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"moff.io/dapp-demo/pkg/errors"
)

// Payload is the encrypted envelope carried by bridge "pub" messages.
type Payload struct {
	Data string `json:"data"`
	Hmac string `json:"hmac"`
	IV   string `json:"iv"`
}

// Seal encrypts plain with key under a fresh IV and signs cipher||iv.
func Seal(plain, key []byte) (*Payload, error) {
	iv, err := GenerateRandomBytes(aes.BlockSize)
	if err != nil {
		return nil, errors.Wrap(err, "generate iv")
	}
	data, err := Aes256Encrypt(plain, key, iv)
	if err != nil {
		return nil, err
	}
	return &Payload{
		Data: hex.EncodeToString(data),
		IV:   hex.EncodeToString(iv),
		Hmac: hex.EncodeToString(HmacSha256(append(append([]byte{}, data...), iv...), key)),
	}, nil
}

// Open verifies and decrypts p with key.
func Open(p *Payload, key []byte) ([]byte, error) {
	iv, err := hex.DecodeString(p.IV)
	if err != nil {
		return nil, errors.Wrap(err, "decode iv hex")
	}
	data, err := hex.DecodeString(p.Data)
	if err != nil {
		return nil, errors.Wrap(err, "decode cipher hex")
	}
	sig, err := hex.DecodeString(p.Hmac)
	if err != nil {
		return nil, errors.Wrap(err, "decode hmac hex")
	}
	if !hmac.Equal(sig, HmacSha256(append(append([]byte{}, data...), iv...), key)) {
		return nil, errors.New("inconsistent session message hmac")
	}
	return Aes256Decrypt(data, key, iv)
}

func Aes256Encrypt(content, encryptionKey, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, errors.Wrap(err, "create new cipher block")
	}
	plain := pkcs7Padding(content, aes.BlockSize)
	ciphertext := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plain)
	return ciphertext, nil
}

func Aes256Decrypt(cipherText, encryptionKey, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, errors.Wrap(err, "create new cipher block")
	}
	if len(cipherText) == 0 || len(cipherText)%aes.BlockSize != 0 {
		return nil, errors.New("cipher text is not a multiple of the block size")
	}
	plain := make([]byte, len(cipherText))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, cipherText)
	return pkcs7Unpadding(plain, aes.BlockSize)
}

func pkcs7Padding(content []byte, blockSize int) []byte {
	padding := blockSize - len(content)%blockSize
	return append(append([]byte{}, content...), bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpadding(content []byte, blockSize int) ([]byte, error) {
	n := len(content)
	padding := int(content[n-1])
	if padding == 0 || padding > blockSize || padding > n {
		return nil, errors.New("invalid padding")
	}
	for _, b := range content[n-padding:] {
		if int(b) != padding {
			return nil, errors.New("invalid padding")
		}
	}
	return content[:n-padding], nil
}

func GenerateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

func HmacSha256(data, secret []byte) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write(data)
	return h.Sum(nil)
}
