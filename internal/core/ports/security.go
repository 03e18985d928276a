package ports

// SecurityPort encrypts and decrypts sensitive data at rest (user phone
// numbers). Keeping it behind an interface lets the cipher be swapped
// without touching the repositories.
type SecurityPort interface {
	Encrypt(plaintext []byte) (ciphertext []byte, err error)
	Decrypt(ciphertext []byte) (plaintext []byte, err error)
}
