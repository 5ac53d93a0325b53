package version

import (
	"fmt"
	"runtime"
)

// 构建时通过 -ldflags "-X github.com/Joker-Pro-Max/Pineapple/pkg/version.Version=..." 注入
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = ""
)

// Info 构建信息
type Info struct {
	Version   string
	BuildTime string
	GitCommit string
	GoVersion string
	Platform  string
}

// Get 当前二进制的构建信息
func Get() Info {
	return Info{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// ShortCommit 提交哈希前8位
func (i Info) ShortCommit() string {
	if len(i.GitCommit) > 8 {
		return i.GitCommit[:8]
	}
	return i.GitCommit
}

// String 例如 "0.1.0 (1a2b3c4d)"
func (i Info) String() string {
	if c := i.ShortCommit(); c != "" {
		return fmt.Sprintf("%s (%s)", i.Version, c)
	}
	return i.Version
}
