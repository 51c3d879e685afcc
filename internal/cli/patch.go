package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newPatchCmd() *cobra.Command {
	var update bool

	cmd := &cobra.Command{
		Use:   "patch <app>",
		Short: "应用防撤回补丁 (首次修改前自动备份)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			rep := NewReporter(cmd.OutOrStdout())

			if update {
				if _, err := rt.store.Update(contextOrBackground(cmd), rt.fetcher()); err != nil {
					rep.Warn("获取最新补丁配置失败，使用本地配置: %v", err)
				}
			}

			e, err := rt.engine(args[0])
			if err != nil {
				return err
			}
			root, err := e.Bind(installPath)
			if err != nil {
				return err
			}
			rep.Info("安装目录: %s", root)
			if v := e.GetVersion(); v != "" {
				rep.Info("当前版本: %s", v)
			}

			if err := e.ValidateAndFindModifyInfo(); err != nil {
				return err
			}
			report, err := e.Patch()
			if report != nil {
				rep.PrintReport("补丁结果", report)
			}
			if err != nil {
				return err
			}
			rep.Success("补丁应用成功")
			return nil
		},
	}
	addPathFlag(cmd)
	cmd.Flags().BoolVar(&update, "update", false, "打补丁前先从镜像获取最新补丁配置")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <app>",
		Short: "从备份还原原始文件",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			rep := NewReporter(cmd.OutOrStdout())

			e, err := rt.engine(args[0])
			if err != nil {
				return err
			}
			root, err := e.Bind(installPath)
			if err != nil {
				return err
			}
			rep.Info("安装目录: %s", root)

			report, err := e.Restore()
			if report != nil {
				rep.PrintReport("还原结果", report)
			}
			if err != nil {
				return err
			}
			rep.Success("还原成功")
			return nil
		},
	}
	addPathFlag(cmd)
	return cmd
}

func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
