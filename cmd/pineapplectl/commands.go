package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Joker-Pro-Max/Pineapple/internal/audit"
	"github.com/Joker-Pro-Max/Pineapple/internal/boot"
	"github.com/Joker-Pro-Max/Pineapple/internal/model"
	"github.com/Joker-Pro-Max/Pineapple/internal/service"
	"github.com/Joker-Pro-Max/Pineapple/pkg/config"
	"github.com/Joker-Pro-Max/Pineapple/pkg/version"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// listLimit 列表命令一次最多输出的行数
const listLimit = 1000

// openDB 加载配置并连接关系型数据库
func openDB(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := boot.InitConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	db, err := boot.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetColumnSeparator("|")
	table.SetAutoWrapText(false)
	return table
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "create or update database tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, _, err := openDB(*configPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrate done")
			return nil
		},
	}
}

func newCreateSuperuserCmd(configPath *string) *cobra.Command {
	var account, password string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "create a superuser with email or phone",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				return fmt.Errorf("--password is required")
			}
			_, db, err := openDB(*configPath)
			if err != nil {
				return err
			}
			repos := boot.InitRepositories(db, nil)
			user, err := service.NewSuperuserService(repos.UserRepo).CreateSuperuser(cmd.Context(), account, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "superuser %s created, uuid=%s\n", account, user.UUID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&account, "account", "a", "", "email or phone")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func newPasswdCmd(configPath *string) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "passwd <account>",
		Short: "reset the password of an email or phone account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB(*configPath)
			if err != nil {
				return err
			}
			repos := boot.InitRepositories(db, nil)
			newPassword, err := service.NewSuperuserService(repos.UserRepo).ResetPassword(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password of %s reset to: %s\n", args[0], newPassword)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "new password, generated when empty")
	return cmd
}

func newSystemsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "systems",
		Short: "list systems",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := openDB(*configPath)
			if err != nil {
				return err
			}
			repos := boot.InitRepositories(db, nil)
			systems, total, err := service.NewSystemService(repos.SystemRepo).List(cmd.Context(), nil, 1, listLimit)
			if err != nil {
				return err
			}
			table := newTable("UUID", "Code", "Name", "Created")
			for _, s := range systems {
				table.Append([]string{s.UUID, s.SystemCode, s.SystemName, s.CreateAt.Format("2006-01-02 15:04")})
			}
			table.SetFooter([]string{"", "", "Total", strconv.FormatInt(total, 10)})
			table.Render()
			return nil
		},
	}
}

func newRolesCmd(configPath *string) *cobra.Command {
	var systemCode string

	cmd := &cobra.Command{
		Use:   "roles",
		Short: "list roles with their permission codes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := openDB(*configPath)
			if err != nil {
				return err
			}
			repos := boot.InitRepositories(db, nil)
			roles := service.NewRoleService(repos.RoleRepo, repos.SystemRepo, repos.PermissionRepo)

			list, total, err := roles.List(cmd.Context(), &model.RoleFilter{SystemCode: systemCode}, 1, listLimit)
			if err != nil {
				return err
			}
			table := newTable("UUID", "System", "Role", "Enabled", "Permissions")
			for _, r := range list {
				codes, err := roles.GetPermissions(cmd.Context(), r.UUID)
				if err != nil {
					return err
				}
				system := r.SystemUUID
				if r.System != nil {
					system = r.System.SystemCode
				}
				table.Append([]string{r.UUID, system, r.RoleName, strconv.FormatBool(r.IsEnable), strings.Join(codes, ",")})
			}
			table.SetFooter([]string{"", "", "", "Total", strconv.FormatInt(total, 10)})
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&systemCode, "system", "s", "", "filter by system code")
	return cmd
}

func newPermsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "perms",
		Short: "list permission codes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := openDB(*configPath)
			if err != nil {
				return err
			}
			repos := boot.InitRepositories(db, nil)
			perms, total, err := service.NewPermissionService(repos.PermissionRepo).List(cmd.Context(), nil, 1, listLimit)
			if err != nil {
				return err
			}
			table := newTable("UUID", "Code", "Name")
			for _, p := range perms {
				table.Append([]string{p.UUID, p.PermissionCode, p.PermissionName})
			}
			table.SetFooter([]string{"", "Total", strconv.FormatInt(total, 10)})
			table.Render()
			return nil
		},
	}
}

func newGrantsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "grants <user-uuid>",
		Short: "show the roles and effective permissions of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB(*configPath)
			if err != nil {
				return err
			}
			repos := boot.InitRepositories(db, nil)
			principal, err := service.NewPermissionResolver(repos.UserRepo, repos.GrantRepo).Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			table := newTable("Field", "Value")
			table.Append([]string{"user", principal.Subject()})
			table.Append([]string{"superadmin", strconv.FormatBool(principal.IsSuperAdmin())})
			table.Append([]string{"admin", strconv.FormatBool(principal.IsAdmin())})
			table.Append([]string{"roles", strings.Join(principal.RoleNames(), ",")})
			table.Append([]string{"permissions", strings.Join(principal.EffectivePermissions(), ",")})
			table.Render()
			return nil
		},
	}
}

func newAuditCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "audit log tools",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "verify [partition]",
		Short: "verify the hash chain of audit partitions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := boot.InitConfig(*configPath)
			if err != nil {
				return err
			}
			return verifyAudit(cmd.Context(), audit.NewReader(cfg.Audit.LogDir), args)
		},
	})
	return cmd
}

func verifyAudit(_ context.Context, reader *audit.Reader, args []string) error {
	partitions := args
	if len(partitions) == 0 {
		var err error
		if partitions, err = reader.Partitions(); err != nil {
			return err
		}
	}

	broken := 0
	table := newTable("Partition", "Entries", "Valid", "Broken At")
	for _, p := range partitions {
		result, err := reader.VerifyPartition(p)
		if err != nil {
			return err
		}
		if !result.Valid {
			broken++
		}
		table.Append([]string{result.Partition, strconv.Itoa(result.Total), strconv.FormatBool(result.Valid), result.BrokenID})
	}
	table.Render()

	if broken > 0 {
		return fmt.Errorf("%d partition(s) failed verification", broken)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version",
		Run: func(cmd *cobra.Command, _ []string) {
			info := version.Get()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-10s %s\n", "version", info)
			fmt.Fprintf(out, "%-10s %s\n", "built", info.BuildTime)
			fmt.Fprintf(out, "%-10s %s %s\n", "go", info.GoVersion, info.Platform)
		},
	}
}
