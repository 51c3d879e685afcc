package engine

import "errors"

// FileStatus is the outcome of one file in a multi-file operation.
type FileStatus int

const (
	StatusUntouched FileStatus = iota
	StatusPatched
	StatusAlreadyPatched
	StatusRestored
	StatusFailed
)

func (s FileStatus) String() string {
	switch s {
	case StatusUntouched:
		return "未处理"
	case StatusPatched:
		return "已修改"
	case StatusAlreadyPatched:
		return "已是补丁版本"
	case StatusRestored:
		return "已还原"
	case StatusFailed:
		return "失败"
	default:
		return "未知"
	}
}

// FileResult describes what happened to one required file.
type FileResult struct {
	File          string
	Status        FileStatus
	Err           error
	Applied       int
	Skipped       int
	BackupCreated bool
	BackupUpdated bool
}

// Report collects per-file outcomes of Patch or Restore.
type Report struct {
	App   string
	Files []FileResult
}

// Err joins every per-file error, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errors.Join(errs...)
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}
