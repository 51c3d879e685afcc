package logx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level   string
		want    logrus.Level
		wantErr bool
	}{
		{level: "", want: logrus.WarnLevel},
		{level: "debug", want: logrus.DebugLevel},
		{level: "ERROR", want: logrus.ErrorLevel},
		{level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := New(tt.level, "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && l.Level != tt.want {
				t.Errorf("Level = %v, want %v", l.Level, tt.want)
			}
		})
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "revokepatch.log")
	l, err := New("info", path)
	if err != nil {
		t.Fatal(err)
	}
	l.WithField("app", "qq").Info("已还原")
	if f, ok := l.Out.(*os.File); ok {
		_ = f.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "app=qq") {
		t.Errorf("log file = %q, want app field", data)
	}
}

func TestNewInvalidLevelLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "revokepatch.log")
	if _, err := New("loud", path); err == nil {
		t.Fatal("New() error = nil for invalid level")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("log file created for invalid level: %v", err)
	}
}
