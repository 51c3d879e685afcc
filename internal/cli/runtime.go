package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ZacharyZcR/RevokePatch/internal/catalog"
	"github.com/ZacharyZcR/RevokePatch/internal/config"
	"github.com/ZacharyZcR/RevokePatch/internal/engine"
	"github.com/ZacharyZcR/RevokePatch/internal/logx"
	"github.com/ZacharyZcR/RevokePatch/internal/patcher"
)

// runtime is the wiring shared by every command.
type runtime struct {
	cfg    *config.Config
	logger *logrus.Logger
	store  *catalog.Store
}

func newRuntime() (*runtime, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if catalogFile != "" {
		cfg.Catalog.File = catalogFile
	}

	logger, err := logx.New(cfg.LogLevel, cfg.LogFilePath)
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog(cfg.Catalog.File)
	if err != nil {
		return nil, err
	}
	logger.WithField("latest", cat.LatestVersion).Debug("已加载补丁配置")

	return &runtime{cfg: cfg, logger: logger, store: catalog.NewStore(cat)}, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取补丁配置失败: %w", err)
	}
	return catalog.Load(data)
}

func (r *runtime) engine(appID string) (*engine.Engine, error) {
	profile, ok := engine.LookupProfile(appID)
	if !ok {
		return nil, fmt.Errorf("未知应用: %s (可选: %s)", appID, strings.Join(profileIDs(), ", "))
	}
	profile = profile.WithInstallPath(r.cfg.InstallPath(profile.ID))

	return engine.New(profile, r.store,
		engine.WithLogger(r.logger),
		engine.WithBackupStore(patcher.NewBackupStore(r.cfg.Backup.Suffix)),
	), nil
}

func (r *runtime) fetcher() *catalog.Fetcher {
	return catalog.NewFetcher(r.cfg.Catalog.Mirrors, r.cfg.Catalog.Timeout, r.cfg.Catalog.CacheTTL, r.logger)
}

func profileIDs() []string {
	var ids []string
	for _, p := range engine.Profiles() {
		ids = append(ids, p.ID)
	}
	return ids
}
