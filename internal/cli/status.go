package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ZacharyZcR/RevokePatch/internal/engine"
)

// appStatus is what "status" shows for one application.
type appStatus struct {
	Profile      engine.Profile
	Root         string
	Version      string
	State        engine.State
	BackupExists bool
	Err          error
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <app>",
		Short: "显示安装目录、版本和补丁状态",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			e, err := rt.engine(args[0])
			if err != nil {
				return err
			}

			NewReporter(cmd.OutOrStdout()).PrintStatus(inspect(e, installPath))
			return nil
		},
	}
	addPathFlag(cmd)
	return cmd
}

// inspect binds and validates without modifying anything.
func inspect(e *engine.Engine, path string) appStatus {
	s := appStatus{Profile: e.Profile()}

	root, err := e.Bind(path)
	s.Root = root
	s.State = e.State()
	if err != nil {
		s.Err = err
		return s
	}
	s.Version = e.GetVersion()
	s.BackupExists = e.BackupExists()

	if err := e.ValidateAndFindModifyInfo(); err != nil {
		s.Err = err
		return s
	}
	s.State = e.State()

	patched := true
	for _, res := range e.Target().Resolved {
		patched = patched && res.AlreadyPatched
	}
	if patched {
		s.State = engine.Patched
	}
	return s
}

func isUnsupported(err error) bool {
	var unsupported *engine.UnsupportedVersionError
	return errors.As(err, &unsupported)
}
