package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
)

// HashChain 单个分区的哈希链
type HashChain struct {
	mu       sync.RWMutex
	lastHash string
}

// NewHashChain 创建哈希链，lastHash为已落盘的最后一条日志的哈希，空表示新链
func NewHashChain(lastHash string) *HashChain {
	return &HashChain{lastHash: lastHash}
}

// computeHash 计算日志的哈希值，Hash字段不参与计算
func computeHash(log *AuditLog) (string, error) {
	logCopy := *log
	logCopy.Hash = ""

	data, err := json.Marshal(logCopy)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Append 把日志接到链尾
func (hc *HashChain) Append(log *AuditLog) error {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	log.PrevHash = hc.lastHash
	hash, err := computeHash(log)
	if err != nil {
		return fmt.Errorf("failed to calculate hash: %w", err)
	}
	log.Hash = hash
	hc.lastHash = hash
	return nil
}

// LastHash 获取最后一个哈希值
func (hc *HashChain) LastHash() string {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.lastHash
}

// VerifyLog 验证单条日志的完整性
func VerifyLog(log *AuditLog) bool {
	hash, err := computeHash(log)
	if err != nil {
		return false
	}
	return hash == log.Hash
}

// VerifyChain 验证日志链，返回第一条被篡改或断链的日志下标，-1表示完整
func VerifyChain(logs []*AuditLog) int {
	for i, log := range logs {
		if !VerifyLog(log) {
			return i
		}
		if i > 0 && log.PrevHash != logs[i-1].Hash {
			return i
		}
	}
	return -1
}
