// Package cli implements the revokepatch command tree.
package cli

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is the tool revision compared against the catalog's LatestVersion.
var Version = "0.5"

var (
	configFile  string
	catalogFile string
	logLevel    string
	installPath string
	noColor     bool
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		red := color.New(color.FgRed, color.Bold)
		_, _ = red.Fprintf(os.Stderr, "\n错误: %v\n\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "revokepatch",
		Short:         "微信 / QQ / TIM 防撤回补丁",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "配置文件路径 (默认搜索 ./revokepatch.yaml)")
	cmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "本地补丁配置文件 (JSON 或 YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "禁用彩色输出")

	cmd.AddCommand(newAppsCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newPatchCmd())
	cmd.AddCommand(newRestoreCmd())
	cmd.AddCommand(newCatalogCmd())

	return cmd
}

func addPathFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&installPath, "path", "p", "", "安装目录 (默认自动检测)")
}
