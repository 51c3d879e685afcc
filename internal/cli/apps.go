package cli

import (
	"github.com/spf13/cobra"
)

func newAppsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "列出支持的应用及补丁配置中的版本",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			NewReporter(cmd.OutOrStdout()).PrintApps(rt.store.Current())
			return nil
		},
	}
}
