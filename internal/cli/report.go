package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ZacharyZcR/RevokePatch/internal/catalog"
	"github.com/ZacharyZcR/RevokePatch/internal/engine"
)

// Reporter formats and prints command results.
type Reporter struct {
	out io.Writer
}

// NewReporter creates a reporter writing to out.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Info prints a plain line.
func (r *Reporter) Info(format string, args ...any) {
	fmt.Fprintf(r.out, "  "+format+"\n", args...)
}

// Warn prints a yellow line.
func (r *Reporter) Warn(format string, args ...any) {
	yellow := color.New(color.FgYellow)
	_, _ = yellow.Fprintf(r.out, "  ! "+format+"\n", args...)
}

// Success prints a bold green line.
func (r *Reporter) Success(format string, args ...any) {
	green := color.New(color.FgGreen, color.Bold)
	_, _ = green.Fprintf(r.out, "\n✓ "+format+"\n\n", args...)
}

// PrintApps lists every built-in profile with the versions the catalog supports.
func (r *Reporter) PrintApps(cat *catalog.Catalog) {
	r.printSection(fmt.Sprintf("【补丁配置】(版本 %s)", cat.LatestVersion))

	for _, p := range engine.Profiles() {
		fmt.Fprintf(r.out, "  %-8s %-6s ", p.ID, p.Name)
		app, ok := cat.App(p.ID)
		if !ok {
			gray := color.New(color.FgHiBlack)
			_, _ = gray.Fprintln(r.out, "不支持")
			continue
		}
		green := color.New(color.FgGreen)
		_, _ = green.Fprintln(r.out, app.VersionsString())
	}
}

// PrintStatus prints the inspection result of one application.
func (r *Reporter) PrintStatus(s appStatus) {
	r.printSection(fmt.Sprintf("【%s】", s.Profile.Name))

	root := s.Root
	if root == "" {
		root = "未找到"
	}
	fmt.Fprintf(r.out, "  %-10s: %s\n", "安装目录", root)
	if s.Version != "" {
		fmt.Fprintf(r.out, "  %-10s: %s\n", "当前版本", s.Version)
	}
	fmt.Fprintf(r.out, "  %-10s: %s\n", "必需文件", strings.Join(s.Profile.RequiredFiles, ", "))

	fmt.Fprintf(r.out, "  %-10s: ", "备份")
	if s.BackupExists {
		_, _ = color.New(color.FgGreen).Fprintln(r.out, "✓ 已备份")
	} else {
		_, _ = color.New(color.FgHiBlack).Fprintln(r.out, "无")
	}

	fmt.Fprintf(r.out, "  %-10s: ", "状态")
	switch {
	case s.Err != nil && isUnsupported(s.Err):
		_, _ = color.New(color.FgYellow, color.Bold).Fprintln(r.out, s.Err)
	case s.Err != nil:
		_, _ = color.New(color.FgRed, color.Bold).Fprintln(r.out, s.Err)
	case s.State == engine.Patched:
		_, _ = color.New(color.FgGreen, color.Bold).Fprintln(r.out, "✓ 已打补丁")
	default:
		_, _ = color.New(color.FgCyan).Fprintln(r.out, "可以打补丁")
	}
}

// PrintReport prints the per-file outcome of Patch or Restore.
func (r *Reporter) PrintReport(title string, report *engine.Report) {
	r.printSection(fmt.Sprintf("【%s】(共 %d 个文件)", title, len(report.Files)))

	for _, f := range report.Files {
		statusColor := color.New(color.FgWhite)
		switch f.Status {
		case engine.StatusPatched, engine.StatusRestored:
			statusColor = color.New(color.FgGreen)
		case engine.StatusAlreadyPatched:
			statusColor = color.New(color.FgCyan)
		case engine.StatusFailed:
			statusColor = color.New(color.FgRed, color.Bold)
		}

		fmt.Fprintf(r.out, "  %-24s ", f.File)
		_, _ = statusColor.Fprintf(r.out, "%-8s", f.Status)

		var notes []string
		if f.Applied > 0 {
			notes = append(notes, fmt.Sprintf("修改 %d 处", f.Applied))
		}
		if f.Skipped > 0 {
			notes = append(notes, fmt.Sprintf("跳过 %d 处", f.Skipped))
		}
		if f.BackupCreated {
			notes = append(notes, "已创建备份")
		}
		if f.BackupUpdated {
			notes = append(notes, "已更新备份")
		}
		if f.Err != nil {
			notes = append(notes, f.Err.Error())
		}
		fmt.Fprintf(r.out, " %s\n", strings.Join(notes, "，"))
	}
}

func (r *Reporter) printSection(title string) {
	yellow := color.New(color.FgYellow, color.Bold)
	_, _ = yellow.Fprintf(r.out, "\n%s\n", title)
	fmt.Fprintln(r.out, strings.Repeat("-", 60))
}
