package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// DefaultKeyBits RS256签名密钥长度
const DefaultKeyBits = 2048

// LoadRSAKeys 从文件加载RS256签名用的RSA密钥对
func LoadRSAKeys(privateKeyPath, publicKeyPath string) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privateKeyBytes, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	privateKey, err := ParsePrivateKeyPEM(privateKeyBytes)
	if err != nil {
		return nil, nil, err
	}

	publicKeyBytes, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	publicKey, err := ParsePublicKeyPEM(publicKeyBytes)
	if err != nil {
		return nil, nil, err
	}

	if privateKey.PublicKey.N.Cmp(publicKey.N) != 0 {
		return nil, nil, fmt.Errorf("public key does not match private key")
	}
	return privateKey, publicKey, nil
}

// ParsePrivateKeyPEM 解析PKCS1或PKCS8格式的RSA私钥
func ParsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode private key PEM")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA private key")
	}
	return key, nil
}

// ParsePublicKeyPEM 解析PKIX格式的RSA公钥
func ParsePublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode public key PEM")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA public key")
	}
	return key, nil
}

// EncodeKeyPair 生成RSA密钥对并编码为PEM
func EncodeKeyPair(bits int) (privatePEM, publicPEM []byte, err error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	privatePEM = pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	publicKeyBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	publicPEM = pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicKeyBytes,
	})
	return privatePEM, publicPEM, nil
}

// GenerateRSAKeyPair 生成新的RSA密钥对并保存到文件，私钥仅所有者可读
func GenerateRSAKeyPair(privateKeyPath, publicKeyPath string) error {
	privatePEM, publicPEM, err := EncodeKeyPair(DefaultKeyBits)
	if err != nil {
		return err
	}
	if err := os.WriteFile(privateKeyPath, privatePEM, 0600); err != nil {
		return fmt.Errorf("failed to write private key file: %w", err)
	}
	if err := os.WriteFile(publicKeyPath, publicPEM, 0644); err != nil {
		return fmt.Errorf("failed to write public key file: %w", err)
	}
	return nil
}
