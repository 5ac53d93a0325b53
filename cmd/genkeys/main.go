package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/Joker-Pro-Max/Pineapple/pkg/crypto"
	"github.com/Joker-Pro-Max/Pineapple/pkg/logger"
)

// 生成RS256令牌签名密钥，配合 jwt.algorithm=RS256 使用
func main() {
	var (
		keyDir = flag.String("dir", "config/keys", "密钥存储目录")
		name   = flag.String("name", "jwt", "密钥文件名前缀")
		force  = flag.Bool("force", false, "覆盖已存在的密钥")
	)
	flag.Parse()

	if err := os.MkdirAll(*keyDir, 0700); err != nil {
		logger.Fatal("Failed to create key directory: %v", err)
	}

	privateKeyPath := filepath.Join(*keyDir, *name+".key")
	publicKeyPath := filepath.Join(*keyDir, *name+".pub")

	if !*force {
		if _, err := os.Stat(privateKeyPath); err == nil {
			logger.Fatal("Key %s already exists, use -force to overwrite", privateKeyPath)
		}
	}

	if err := crypto.GenerateRSAKeyPair(privateKeyPath, publicKeyPath); err != nil {
		logger.Fatal("Failed to generate RSA key pair: %v", err)
	}

	logger.Info("Successfully generated RSA key pair")
	logger.Info("jwt.private_key_path=%s", privateKeyPath)
	logger.Info("jwt.public_key_path=%s", publicKeyPath)
}
