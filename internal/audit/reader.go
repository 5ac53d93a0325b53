package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Joker-Pro-Max/Pineapple/pkg/logger"
)

// maxLineSize 单条日志的最大长度
const maxLineSize = 1024 * 1024

// Reader 审计日志读取器
type Reader struct {
	baseDir string
}

// NewReader 创建新的日志读取器
func NewReader(baseDir string) *Reader {
	return &Reader{baseDir: baseDir}
}

// VerifyResult 分区哈希链校验结果
type VerifyResult struct {
	Partition string `json:"partition"`
	Total     int    `json:"total"`
	Valid     bool   `json:"valid"`
	BrokenID  string `json:"broken_id,omitempty"`
}

// ReadLogs 按条件读取日志，按时间升序，返回分页后的结果和总数
func (r *Reader) ReadLogs(params QueryParams) ([]*AuditLog, int, error) {
	var partitions []string
	if params.SystemCode != "" {
		partitions = []string{sanitizePartition(params.SystemCode)}
	} else {
		all, err := r.Partitions()
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list partitions: %w", err)
		}
		partitions = all
	}

	var logs []*AuditLog
	for _, partition := range partitions {
		files, err := partitionFiles(r.baseDir, partition)
		if err != nil {
			return nil, 0, err
		}
		for _, rel := range files {
			if !fileInRange(rel, params) {
				continue
			}
			fileLogs, err := readFile(filepath.Join(r.baseDir, rel))
			if err != nil {
				return nil, 0, fmt.Errorf("failed to read %s: %w", rel, err)
			}
			for _, log := range fileLogs {
				if matchFilters(log, params) {
					logs = append(logs, log)
				}
			}
		}
	}

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Timestamp.Before(logs[j].Timestamp)
	})

	total := len(logs)
	if params.Offset >= total {
		return []*AuditLog{}, total, nil
	}
	end := total
	if params.Limit > 0 && params.Offset+params.Limit < total {
		end = params.Offset + params.Limit
	}
	return logs[params.Offset:end], total, nil
}

// Partitions 列出所有分区
func (r *Reader) Partitions() ([]string, error) {
	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	partitions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			partitions = append(partitions, entry.Name())
		}
	}
	sort.Strings(partitions)
	return partitions, nil
}

// VerifyPartition 按写入顺序校验分区的哈希链
func (r *Reader) VerifyPartition(partition string) (*VerifyResult, error) {
	partition = sanitizePartition(partition)
	files, err := partitionFiles(r.baseDir, partition)
	if err != nil {
		return nil, err
	}

	var logs []*AuditLog
	for _, rel := range files {
		fileLogs, err := readFile(filepath.Join(r.baseDir, rel))
		if err != nil {
			return nil, err
		}
		logs = append(logs, fileLogs...)
	}

	result := &VerifyResult{Partition: partition, Total: len(logs), Valid: true}
	if broken := VerifyChain(logs); broken >= 0 {
		result.Valid = false
		result.BrokenID = logs[broken].ID
	}
	return result, nil
}

// GetStats 获取分区的统计信息
func (r *Reader) GetStats(partition string) (*PartitionStats, error) {
	index, err := loadIndex(r.baseDir, sanitizePartition(partition))
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	stats := &PartitionStats{
		EventStats: make(map[EventType]int),
		Outcomes:   make(map[string]int),
	}
	if index == nil {
		return stats, nil
	}
	stats.TotalLogs = index.TotalLogs
	for k, v := range index.Stats {
		stats.EventStats[k] = v
	}
	for k, v := range index.Outcomes {
		stats.Outcomes[k] = v
	}
	for _, f := range index.Files {
		stats.Size += f.Size
	}
	return stats, nil
}

// partitionFiles 分区下所有日志文件的相对路径，按写入顺序排列
func partitionFiles(baseDir, partition string) ([]string, error) {
	root := filepath.Join(baseDir, partition)
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.HasPrefix(d.Name(), "audit-") || !strings.HasSuffix(d.Name(), ".log") {
			return nil
		}
		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// lastLog 分区最后一条日志，没有则返回nil
func lastLog(baseDir, partition string) (*AuditLog, error) {
	files, err := partitionFiles(baseDir, partition)
	if err != nil {
		return nil, err
	}
	for i := len(files) - 1; i >= 0; i-- {
		logs, err := readFile(filepath.Join(baseDir, files[i]))
		if err != nil {
			return nil, err
		}
		if len(logs) > 0 {
			return logs[len(logs)-1], nil
		}
	}
	return nil, nil
}

// loadIndex 读取分区索引，不存在返回nil
func loadIndex(baseDir, partition string) (*LogIndex, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, partition, "index.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var index LogIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, err
	}
	return &index, nil
}

// fileInRange 按路径中的日期粗筛文件
func fileInRange(rel string, params QueryParams) bool {
	p, err := ParseLogPath(rel)
	if err != nil {
		return false
	}
	day := p.Date()
	if params.StartTime != nil && day.Add(24*time.Hour).Before(*params.StartTime) {
		return false
	}
	if params.EndTime != nil && day.After(*params.EndTime) {
		return false
	}
	return true
}

// readFile 读取单个日志文件
func readFile(filename string) ([]*AuditLog, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var logs []*AuditLog
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		var log AuditLog
		if err := json.Unmarshal(scanner.Bytes(), &log); err != nil {
			logger.Warn("[AUDIT] skip malformed line %d in %s: %v", lineNum, filename, err)
			continue
		}
		logs = append(logs, &log)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

// matchFilters 检查日志是否匹配过滤条件
func matchFilters(log *AuditLog, params QueryParams) bool {
	if params.StartTime != nil && log.Timestamp.Before(*params.StartTime) {
		return false
	}
	if params.EndTime != nil && log.Timestamp.After(*params.EndTime) {
		return false
	}
	if len(params.EventTypes) > 0 {
		matched := false
		for _, et := range params.EventTypes {
			if log.EventType == et {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if params.UserID != "" && log.UserID != params.UserID {
		return false
	}
	if params.ClientIP != "" && log.ClientIP != params.ClientIP {
		return false
	}
	if params.StatusCode != 0 && log.StatusCode != params.StatusCode {
		return false
	}
	if params.Outcome != "" && log.Outcome != params.Outcome {
		return false
	}
	return true
}
