// Package main provides the RevokePatch GUI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"github.com/ZacharyZcR/RevokePatch/internal/catalog"
	"github.com/ZacharyZcR/RevokePatch/internal/cli"
	"github.com/ZacharyZcR/RevokePatch/internal/config"
	"github.com/ZacharyZcR/RevokePatch/internal/engine"
	"github.com/ZacharyZcR/RevokePatch/internal/logx"
	"github.com/ZacharyZcR/RevokePatch/internal/patcher"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
	logger, err := logx.New(cfg.LogLevel, cfg.LogFilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}

	cat, err := loadCatalog(cfg.Catalog.File)
	if err != nil {
		logger.WithError(err).Warn("加载本地补丁配置失败，使用内置配置")
		if cat, err = catalog.Default(); err != nil {
			fmt.Fprintf(os.Stderr, "错误: %v\n", err)
			os.Exit(1)
		}
	}
	store := catalog.NewStore(cat)

	engines := map[string]*engine.Engine{}
	for _, p := range engine.Profiles() {
		p = p.WithInstallPath(cfg.InstallPath(p.ID))
		engines[p.Name] = engine.New(p, store,
			engine.WithLogger(logger),
			engine.WithBackupStore(patcher.NewBackupStore(cfg.Backup.Suffix)),
		)
	}

	myApp := app.New()
	myWindow := myApp.NewWindow("RevokePatch - 防撤回补丁 v" + cli.Version)
	myWindow.Resize(fyne.NewSize(560, 300))

	ui := newWindow(myWindow, engines, logger, store)
	ui.radio.SetSelected(ui.radio.Options[0])
	go ui.updateCatalog(store, catalog.NewFetcher(cfg.Catalog.Mirrors, cfg.Catalog.Timeout, cfg.Catalog.CacheTTL, logger))

	myWindow.ShowAndRun()
}

type window struct {
	win     fyne.Window
	engines map[string]*engine.Engine
	current *engine.Engine
	logger  logrus.FieldLogger

	radio      *widget.RadioGroup
	pathEntry  *widget.Entry
	version    *widget.Label
	status     *widget.Label
	catalog    *widget.Label
	patchBtn   *widget.Button
	restoreBtn *widget.Button
}

// newWindow lays out the controls. engines is keyed by profile display name.
func newWindow(win fyne.Window, engines map[string]*engine.Engine, logger logrus.FieldLogger, store *catalog.Store) *window {
	ui := &window{
		win:       win,
		engines:   engines,
		logger:    logger,
		pathEntry: widget.NewEntry(),
		version:   widget.NewLabel("版本: 未知"),
		status:    widget.NewLabel("就绪"),
		catalog:   widget.NewLabel("补丁配置: 版本 " + store.Current().LatestVersion),
	}
	ui.pathEntry.SetPlaceHolder("选择安装目录...")
	ui.pathEntry.OnSubmitted = ui.bind
	ui.patchBtn = widget.NewButton("防撤回", ui.patch)
	ui.restoreBtn = widget.NewButton("还原", ui.restore)

	var names []string
	for _, p := range engine.Profiles() {
		if _, ok := engines[p.Name]; ok {
			names = append(names, p.Name)
		}
	}
	ui.radio = widget.NewRadioGroup(names, ui.selectApp)
	ui.radio.Horizontal = true

	folderButton := widget.NewButton("选择目录", func() {
		dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
			if err != nil || dir == nil {
				return
			}
			ui.bind(dir.Path())
		}, win)
	})

	supportedButton := widget.NewButton("支持的版本", func() {
		dialog.ShowInformation("支持的版本", supportedVersions(store.Current()), win)
	})

	win.SetContent(container.NewVBox(
		ui.radio,
		container.NewBorder(nil, nil, nil, folderButton, ui.pathEntry),
		ui.version,
		container.NewGridWithColumns(2, ui.patchBtn, ui.restoreBtn),
		widget.NewSeparator(),
		container.NewBorder(nil, nil, nil, supportedButton, ui.catalog),
		ui.status,
	))
	return ui
}

func (w *window) selectApp(name string) {
	e, ok := w.engines[name]
	if !ok {
		return
	}
	w.current = e
	w.pathEntry.SetText("")
	w.version.SetText("版本: 未知")
	w.status.SetText("正在检测安装目录...")
	w.setButtons(false, false)

	go func() {
		path := e.FindInstallPath()
		fyne.Do(func() {
			if w.current != e {
				return
			}
			if path == "" {
				w.status.SetText("未找到安装目录，请手动选择")
				return
			}
			w.bind(path)
		})
	}()
}

// bind must run on the UI goroutine.
func (w *window) bind(path string) {
	e := w.current
	if e == nil {
		return
	}
	w.pathEntry.SetText(path)
	w.setButtons(false, false)

	go func() {
		_, err := e.Bind(path)
		version := e.GetVersion()
		backup := e.BackupExists()
		fyne.Do(func() {
			if version != "" {
				w.version.SetText("版本: " + version)
			}
			if err != nil {
				w.status.SetText(err.Error())
				return
			}
			w.status.SetText("就绪")
			w.setButtons(true, backup)
		})
	}()
}

func (w *window) patch() {
	e := w.current
	if e == nil {
		return
	}
	w.status.SetText("正在打补丁...")
	w.setButtons(false, false)

	go func() {
		report, err := func() (*engine.Report, error) {
			if err := e.ValidateAndFindModifyInfo(); err != nil {
				return nil, err
			}
			return e.Patch()
		}()
		backup := e.BackupExists()

		fyne.Do(func() {
			w.setButtons(true, backup)
			if err != nil {
				w.status.SetText("补丁失败")
				dialog.ShowError(describe(err, report), w.win)
				return
			}
			w.status.SetText("补丁应用成功")
			dialog.ShowInformation("成功", "补丁应用成功！", w.win)
		})
	}()
}

func (w *window) restore() {
	e := w.current
	if e == nil {
		return
	}
	w.status.SetText("正在还原...")
	w.setButtons(false, false)

	go func() {
		report, err := e.Restore()
		backup := e.BackupExists()

		fyne.Do(func() {
			w.setButtons(true, backup)
			if err != nil {
				w.status.SetText("还原失败")
				dialog.ShowError(describe(err, report), w.win)
				return
			}
			w.status.SetText("还原成功")
			dialog.ShowInformation("成功", "还原成功！", w.win)
		})
	}()
}

func (w *window) setButtons(patch, restore bool) {
	if patch {
		w.patchBtn.Enable()
	} else {
		w.patchBtn.Disable()
	}
	if restore {
		w.restoreBtn.Enable()
	} else {
		w.restoreBtn.Disable()
	}
}

func (w *window) updateCatalog(store *catalog.Store, fetcher *catalog.Fetcher) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cat, err := store.Update(ctx, fetcher)
	fyne.Do(func() {
		if err != nil {
			w.logger.WithError(err).Warn("获取最新补丁配置失败")
			w.catalog.SetText("补丁配置: 获取最新配置失败，使用本地配置")
			return
		}
		text := "补丁配置: 已更新到版本 " + cat.LatestVersion
		if newer, err := cat.NewerThan(cli.Version); err == nil && newer {
			text = fmt.Sprintf("补丁配置: 请到软件主页下载最新版本 %s", cat.LatestVersion)
		}
		w.catalog.SetText(text)
	})
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return catalog.Load(data)
}

func supportedVersions(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("当前支持的版本:\n")
	for _, p := range engine.Profiles() {
		versions := "不支持"
		if app, ok := cat.App(p.ID); ok {
			versions = app.VersionsString()
		}
		fmt.Fprintf(&b, " ➯ %s: %s\n", p.Name, versions)
	}
	return b.String()
}

// describe lists per-file failures when a report is available.
func describe(err error, report *engine.Report) error {
	if report == nil || len(report.Failed()) == 0 {
		return err
	}
	var lines []string
	for _, f := range report.Failed() {
		lines = append(lines, fmt.Sprintf("%s: %v", f.File, f.Err))
	}
	return errors.New(strings.Join(lines, "\n"))
}
