package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
)

// Level 日志级别
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	debugColor   = color.New(color.FgHiBlue)
	infoColor    = color.New(color.FgHiCyan)
	warningColor = color.New(color.FgHiYellow)
	errorColor   = color.New(color.FgHiRed)
	fatalColor   = color.New(color.FgHiRed, color.Bold)
	prefixColor  = color.New(color.FgHiBlue)
)

type rule struct {
	pattern string
	color   *color.Color
}

// 关键词高亮，按顺序匹配
var highlightRules = []rule{
	// 授权判定
	{`\b(ALLOW)\b`, color.New(color.FgHiGreen, color.Bold)},
	{`\b(DENY)\b`, color.New(color.FgHiRed, color.Bold)},
	{`\[(PERMISSION|AUDIT|WECHAT|TOKEN|FILE)\]`, color.New(color.FgHiMagenta)},

	{`(?i)(error|exception|panic)`, color.New(color.FgHiRed)},
	{`(?i)(failed|fail)`, color.New(color.FgRed)},

	// IP地址
	{`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`, color.New(color.FgHiBlue)},

	// HTTP方法和状态码
	{`\b(GET|POST|PUT|DELETE|PATCH|HEAD|OPTIONS)\b`, color.New(color.FgBlue)},
	{`\b([45]\d{2})\b`, color.New(color.FgHiRed)},
	{`\b(2\d{2})\b`, color.New(color.FgHiGreen)},

	// key=value
	{`([a-zA-Z_][a-zA-Z0-9_]*=)`, color.New(color.FgHiCyan)},

	{`\b(true|false)\b`, color.New(color.FgHiCyan)},
	{`(?i)\b(success|completed|connected|initialized|started)\b`, color.New(color.FgHiCyan)},
	{`(?i)\b(warning|warn|attention)\b`, color.New(color.FgHiYellow)},
}

var (
	// combinedRegex 用于一次性匹配全部规则的大正则
	combinedRegex *regexp.Regexp
	// colorMap[i] 表示第 i 个规则对应的颜色
	colorMap []*color.Color

	minLevel atomic.Int32

	outMu sync.Mutex
	out   io.Writer = os.Stdout
)

var builderPool = sync.Pool{
	New: func() interface{} {
		return new(strings.Builder)
	},
}

// colorWriter 标准库 logger 的输出目标
type colorWriter struct{}

// Write 实现 io.Writer 接口
func (cw *colorWriter) Write(p []byte) (int, error) {
	return writeWithColor(p)
}

// SetLevel 设置最低输出级别
func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		minLevel.Store(int32(LevelDebug))
	case "warn", "warning":
		minLevel.Store(int32(LevelWarn))
	case "error":
		minLevel.Store(int32(LevelError))
	default:
		minLevel.Store(int32(LevelInfo))
	}
}

// SetOutput 替换输出目标，测试中用于收集日志
func SetOutput(w io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	out = w
}

// writeWithColor 生成前缀(时间、文件、行号、级别)并高亮正文
func writeWithColor(bytes []byte) (int, error) {
	// log.Printf -> Output -> colorWriter.Write -> writeWithColor，再往上一层是logger包的导出函数
	_, file, line, ok := runtime.Caller(5)
	if !ok {
		file = "???"
		line = 0
	}
	file = filepath.Base(file)
	now := time.Now().Format("2006/01/02 15:04:05.000")

	sb := builderPool.Get().(*strings.Builder)
	defer builderPool.Put(sb)
	sb.Reset()

	msg := string(bytes)
	levelColor, levelTag := detectLevel(msg)
	if levelTag != "" {
		msg = strings.Replace(msg, levelTag, "", 1)
	}
	msg = strings.TrimSpace(msg)

	sb.WriteString(prefixColor.Sprint(fmt.Sprintf("%s %s:%d", now, file, line)))
	sb.WriteByte(' ')
	if levelTag != "" {
		sb.WriteString(levelColor.Sprint(levelTag))
		sb.WriteByte(' ')
	}
	sb.WriteString(highlightMessage(msg))
	sb.WriteByte('\n')

	outMu.Lock()
	_, _ = io.WriteString(out, sb.String())
	outMu.Unlock()

	return len(bytes), nil
}

func detectLevel(msg string) (*color.Color, string) {
	switch {
	case strings.HasPrefix(msg, "[DEBUG]"):
		return debugColor, "[DEBUG]"
	case strings.HasPrefix(msg, "[INFO]"):
		return infoColor, "[INFO]"
	case strings.HasPrefix(msg, "[WARN]"):
		return warningColor, "[WARN]"
	case strings.HasPrefix(msg, "[ERROR]"):
		return errorColor, "[ERROR]"
	case strings.HasPrefix(msg, "[FATAL]"):
		return fatalColor, "[FATAL]"
	}
	// gin、gorm 等直接写标准库log的输出
	return infoColor, ""
}

// highlightMessage 用大正则一次找出所有命中的捕获组，再按区间着色
func highlightMessage(msg string) string {
	matches := combinedRegex.FindAllStringSubmatchIndex(msg, -1)
	if len(matches) == 0 {
		return msg
	}

	type interval struct {
		start int
		end   int
		color *color.Color
	}
	var intervals []interval

	// 每条规则在大正则中占一个顶层分组，规则内部的分组需要跳过
	for _, m := range matches {
		for i, group := range ruleGroups {
			grpStart, grpEnd := m[2*group], m[2*group+1]
			if grpStart >= 0 && grpEnd <= len(msg) {
				intervals = append(intervals, interval{start: grpStart, end: grpEnd, color: colorMap[i]})
				break
			}
		}
	}
	if len(intervals) == 0 {
		return msg
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	var result strings.Builder
	result.Grow(len(msg))
	cur := 0
	for _, iv := range intervals {
		if iv.start < cur {
			continue
		}
		result.WriteString(msg[cur:iv.start])
		result.WriteString(iv.color.Sprint(msg[iv.start:iv.end]))
		cur = iv.end
	}
	result.WriteString(msg[cur:])
	return result.String()
}

// ruleGroups[i] 是第 i 条规则在大正则中的分组序号
var ruleGroups []int

func init() {
	var sb strings.Builder
	colorMap = make([]*color.Color, 0, len(highlightRules))
	ruleGroups = make([]int, 0, len(highlightRules))

	group := 1
	for i, r := range highlightRules {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString("(")
		sb.WriteString(r.pattern)
		sb.WriteString(")")
		colorMap = append(colorMap, r.color)
		ruleGroups = append(ruleGroups, group)
		group += 1 + regexp.MustCompile(r.pattern).NumSubexp()
	}
	combinedRegex = regexp.MustCompile(sb.String())

	minLevel.Store(int32(LevelInfo))

	// 替换标准库日志输出
	log.SetOutput(&colorWriter{})
	log.SetFlags(0)
}

func enabled(level Level) bool {
	return Level(minLevel.Load()) <= level
}

func Debug(format string, v ...interface{}) {
	if enabled(LevelDebug) {
		log.Printf("[DEBUG] "+format, v...)
	}
}

func Info(format string, v ...interface{}) {
	if enabled(LevelInfo) {
		log.Printf("[INFO] "+format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	if enabled(LevelWarn) {
		log.Printf("[WARN] "+format, v...)
	}
}

func Error(format string, v ...interface{}) {
	log.Printf("[ERROR] "+format, v...)
}

func Fatal(format string, v ...interface{}) {
	log.Printf("[FATAL] "+format, v...)
	os.Exit(1)
}
