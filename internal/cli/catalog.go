package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "管理补丁配置",
	}
	cmd.AddCommand(newCatalogUpdateCmd())
	return cmd
}

func newCatalogUpdateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "从镜像获取最新补丁配置",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			rep := NewReporter(cmd.OutOrStdout())

			data, err := rt.fetcher().Fetch(contextOrBackground(cmd))
			if err != nil {
				return err
			}
			cat, err := rt.store.Refresh(data)
			if err != nil {
				return err
			}

			if output != "" {
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("保存补丁配置失败: %w", err)
				}
				rep.Info("已保存到: %s", output)
			}

			rep.PrintApps(cat)
			if newer, err := cat.NewerThan(Version); err == nil && newer {
				rep.Warn("请到软件主页下载最新版本 %s", cat.LatestVersion)
			}
			rep.Success("补丁配置已更新")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "保存获取到的补丁配置，之后可通过 --catalog 使用")
	return cmd
}
