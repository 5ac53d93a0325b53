package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/pkg/logger"

	"github.com/google/uuid"
)

// Writer 审计日志写入器，每个分区一条独立的哈希链
type Writer struct {
	mu           sync.Mutex
	baseDir      string
	rotateSize   int64
	currentFiles map[string]*os.File
	currentPaths map[string]string
	currentSizes map[string]int64
	chains       map[string]*HashChain
	indexes      map[string]*LogIndex
}

// WriterConfig 写入器配置
type WriterConfig struct {
	BaseDir    string // 基础目录
	RotateSize int64  // 日志文件轮转大小（字节），默认100MB
}

// NewWriter 创建新的日志写入器
func NewWriter(config WriterConfig) (*Writer, error) {
	if config.RotateSize <= 0 {
		config.RotateSize = 100 * 1024 * 1024
	}
	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory %s: %w", config.BaseDir, err)
	}
	logger.Info("[AUDIT] writing audit logs to %s", config.BaseDir)

	return &Writer{
		baseDir:      config.BaseDir,
		rotateSize:   config.RotateSize,
		currentFiles: make(map[string]*os.File),
		currentPaths: make(map[string]string),
		currentSizes: make(map[string]int64),
		chains:       make(map[string]*HashChain),
		indexes:      make(map[string]*LogIndex),
	}, nil
}

// Write 写入审计日志，写入后log的ID、PrevHash、Hash已填充
func (w *Writer) Write(log *AuditLog) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}
	partition := log.Partition()

	chain, err := w.chain(partition)
	if err != nil {
		return err
	}
	if err := chain.Append(log); err != nil {
		return err
	}

	file, err := w.currentFile(partition, log.Timestamp)
	if err != nil {
		return err
	}

	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}
	data = append(data, '\n')

	n, err := file.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	w.currentSizes[partition] += int64(n)

	if err := w.updateIndex(partition, log); err != nil {
		return fmt.Errorf("failed to update index: %w", err)
	}

	if w.currentSizes[partition] >= w.rotateSize {
		w.rotate(partition)
	}
	return nil
}

// chain 获取分区的哈希链，首次使用时从磁盘上最后一条日志接续
func (w *Writer) chain(partition string) (*HashChain, error) {
	if chain, ok := w.chains[partition]; ok {
		return chain, nil
	}
	last, err := lastLog(w.baseDir, partition)
	if err != nil {
		return nil, fmt.Errorf("failed to resume hash chain: %w", err)
	}
	lastHash := ""
	if last != nil {
		lastHash = last.Hash
	}
	chain := NewHashChain(lastHash)
	w.chains[partition] = chain
	return chain, nil
}

// currentFile 获取分区当前的日志文件，没有则新建
func (w *Writer) currentFile(partition string, t time.Time) (*os.File, error) {
	if file, ok := w.currentFiles[partition]; ok {
		return file, nil
	}

	rel := NewLogPath(partition, t).String()
	fullPath := filepath.Join(w.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", fullPath, err)
	}

	w.currentFiles[partition] = file
	w.currentPaths[partition] = rel
	w.currentSizes[partition] = 0
	return file, nil
}

// rotate 关闭当前文件，下一次写入时新建
func (w *Writer) rotate(partition string) {
	if file, ok := w.currentFiles[partition]; ok {
		if err := file.Close(); err != nil {
			logger.Warn("[AUDIT] failed to close %s: %v", file.Name(), err)
		}
	}
	delete(w.currentFiles, partition)
	delete(w.currentPaths, partition)
	delete(w.currentSizes, partition)
}

// updateIndex 更新分区索引并落盘
func (w *Writer) updateIndex(partition string, log *AuditLog) error {
	index, ok := w.indexes[partition]
	if !ok {
		loaded, err := loadIndex(w.baseDir, partition)
		if err != nil {
			return err
		}
		index = loaded
		if index == nil {
			index = &LogIndex{StartTime: log.Timestamp, EndTime: log.Timestamp}
		}
		w.indexes[partition] = index
	}
	if index.Stats == nil {
		index.Stats = make(map[EventType]int)
	}
	if index.Outcomes == nil {
		index.Outcomes = make(map[string]int)
	}

	if log.Timestamp.Before(index.StartTime) {
		index.StartTime = log.Timestamp
	}
	if log.Timestamp.After(index.EndTime) {
		index.EndTime = log.Timestamp
	}
	index.TotalLogs++
	index.Stats[log.EventType]++
	if log.Outcome != "" {
		index.Outcomes[log.Outcome]++
	}

	rel := w.currentPaths[partition]
	pos := -1
	for i := range index.Files {
		if index.Files[i].Path == rel {
			pos = i
			break
		}
	}
	if pos < 0 {
		index.Files = append(index.Files, LogFileInfo{
			Path:      rel,
			StartTime: log.Timestamp,
			Events:    make(map[EventType]int),
		})
		pos = len(index.Files) - 1
	}
	info := &index.Files[pos]
	info.EndTime = log.Timestamp
	info.Size = w.currentSizes[partition]
	if info.Events == nil {
		info.Events = make(map[EventType]int)
	}
	info.Events[log.EventType]++

	return w.saveIndex(partition, index)
}

// saveIndex 保存索引到文件
func (w *Writer) saveIndex(partition string, index *LogIndex) error {
	indexPath := filepath.Join(w.baseDir, partition, "index.json")
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return err
	}
	tmp := indexPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, indexPath)
}

// Close 关闭写入器
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var lastErr error
	for partition, file := range w.currentFiles {
		if err := file.Close(); err != nil {
			lastErr = err
		}
		delete(w.currentFiles, partition)
	}
	return lastErr
}

// LastHash 分区当前链尾的哈希
func (w *Writer) LastHash(partition string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if chain, ok := w.chains[partition]; ok {
		return chain.LastHash()
	}
	return ""
}
