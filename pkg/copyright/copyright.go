package copyright

import (
	"fmt"
	"strings"

	"github.com/Joker-Pro-Max/Pineapple/pkg/version"

	"github.com/fatih/color"
)

var (
	// 颜色组合
	titleColor   = color.New(color.FgHiCyan, color.Bold)
	versionColor = color.New(color.FgHiGreen)
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	defaultColor = color.New(color.FgWhite)
	numberColor  = color.New(color.FgHiYellow)
)

// SystemStatus 启动时展示的状态
type SystemStatus struct {
	Version         string
	Addr            string
	DatabaseDriver  string
	DatabaseStatus  bool
	RedisStatus     bool
	MongoDBStatus   bool
	JWTAlgorithm    string
	AuditPartitions []string
	UserCount       int64
	NewAdmin        bool   // 是否新创建的超级用户
	AdminUser       string // 超级用户账号
	AdminPass       string // 超级用户密码
}

// PrintCopyright 打印启动信息
func PrintCopyright(status SystemStatus) {
	printLogo()
	printFrame(status)
}

func printFrame(status SystemStatus) {
	titleColor.Println("| System Information")
	defaultColor.Println("│")

	// 版本信息
	defaultColor.Print("│ Version    : ")
	info := version.Get()
	versionColor.Printf("%s", status.Version)
	defaultColor.Printf(" built at %s, %s", info.BuildTime, info.GoVersion)
	fmt.Println()
	defaultColor.Print("│ Listen     : ")
	versionColor.Println(status.Addr)
	defaultColor.Print("│ JWT        : ")
	versionColor.Println(status.JWTAlgorithm)

	// 存储状态
	defaultColor.Println("│")
	defaultColor.Println("│ Storage Status")
	defaultColor.Printf("│ ⚡ %-8s : ", status.DatabaseDriver)
	printStatus(status.DatabaseStatus)
	defaultColor.Print("│ ⚡ redis    : ")
	printStatus(status.RedisStatus)
	defaultColor.Print("│ ⚡ mongodb  : ")
	printStatus(status.MongoDBStatus)

	// 审计分区
	defaultColor.Println("│")
	defaultColor.Println("│ Audit Partitions")
	if len(status.AuditPartitions) > 0 {
		defaultColor.Print("│ ⚡ ")
		successColor.Println(strings.Join(status.AuditPartitions, ", "))
	} else {
		defaultColor.Print("│ ")
		warningColor.Println("No audit logs yet")
	}

	// 统计信息
	defaultColor.Println("│")
	defaultColor.Println("│ Statistics")
	defaultColor.Print("│ ⚡ Users    : ")
	numberColor.Printf("%d\n", status.UserCount)

	defaultColor.Println("│")
	defaultColor.Print("│ ")
	titleColor.Println("Pineapple")

	if status.NewAdmin && status.AdminUser != "" && status.AdminPass != "" {
		fmt.Println()
		alertColor := color.New(color.FgHiRed, color.Bold)

		alertColor.Println("!!! SUPERUSER CREDENTIALS CREATED !!!")
		alertColor.Printf("Account : %s\n", status.AdminUser)
		alertColor.Printf("Password: %s\n", status.AdminPass)
		alertColor.Println("PLEASE CHANGE YOUR PASSWORD AFTER FIRST LOGIN!")
		alertColor.Println("!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!")
	}

	fmt.Println()
}

func printStatus(status bool) {
	if status {
		successColor.Print("Connected")
	} else {
		warningColor.Print("Disabled")
	}
	fmt.Println()
}

func printLogo() {
	logo := `
    ____  _                              __   
   / __ \(_)___  ___  ____ _____  ____  / /__ 
  / /_/ / / __ \/ _ \/ __ '/ __ \/ __ \/ / _ \
 / ____/ / / / /  __/ /_/ / /_/ / /_/ / /  __/
/_/   /_/_/ /_/\___/\__,_/ .___/ .___/_/\___/ 
                        /_/   /_/             
`
	for _, line := range strings.Split(logo, "\n") {
		titleColor.Println(line)
	}
}
