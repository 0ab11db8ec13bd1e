package platform

import (
	"path/filepath"
	"testing"
)

func TestPathsFor(t *testing.T) {
	tests := []struct {
		name        string
		goos        string
		env         map[string]string
		configBase  string
		dataBase    string
		wantConfig  string
		wantDataDir string
	}{
		{
			name:        "linux xdg",
			goos:        "linux",
			env:         map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			configBase:  "/fallback/config",
			dataBase:    "/fallback/data",
			wantConfig:  filepath.Join("/xdg/config", "dragboard", "config.toml"),
			wantDataDir: filepath.Join("/xdg/data", "dragboard"),
		},
		{
			name:        "linux without xdg",
			goos:        "linux",
			env:         map[string]string{},
			configBase:  "/home/me/.config",
			dataBase:    "/home/me/.local/share",
			wantConfig:  filepath.Join("/home/me/.config", "dragboard", "config.toml"),
			wantDataDir: filepath.Join("/home/me/.local/share", "dragboard"),
		},
		{
			name:        "windows appdata",
			goos:        "windows",
			env:         map[string]string{"APPDATA": `C:\Roaming`, "LOCALAPPDATA": `C:\Local`},
			configBase:  `C:\fallback\config`,
			dataBase:    `C:\fallback\data`,
			wantConfig:  filepath.Join(`C:\Roaming`, "dragboard", "config.toml"),
			wantDataDir: filepath.Join(`C:\Local`, "dragboard"),
		},
		{
			name:        "darwin ignores xdg",
			goos:        "darwin",
			env:         map[string]string{"XDG_CONFIG_HOME": "/ignored", "XDG_DATA_HOME": "/ignored"},
			configBase:  "/Users/me/Library/Application Support",
			dataBase:    "/Users/me/Library/Application Support",
			wantConfig:  filepath.Join("/Users/me/Library/Application Support", "dragboard", "config.toml"),
			wantDataDir: filepath.Join("/Users/me/Library/Application Support", "dragboard"),
		},
		{
			name:        "unknown os",
			goos:        "freebsd",
			env:         nil,
			configBase:  "/cfg",
			dataBase:    "/data",
			wantConfig:  filepath.Join("/cfg", "dragboard", "config.toml"),
			wantDataDir: filepath.Join("/data", "dragboard"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := PathsFor(tt.goos, tt.env, tt.configBase, tt.dataBase, "dragboard")
			if err != nil {
				t.Fatalf("PathsFor() error = %v", err)
			}
			if p.ConfigPath != tt.wantConfig {
				t.Fatalf("unexpected config path %q", p.ConfigPath)
			}
			if p.DataDir != tt.wantDataDir {
				t.Fatalf("unexpected data dir %q", p.DataDir)
			}
			if p.DBPath != filepath.Join(tt.wantDataDir, "dragboard.db") {
				t.Fatalf("unexpected db path %q", p.DBPath)
			}
			if p.LogDir != filepath.Join(tt.wantDataDir, "log") {
				t.Fatalf("unexpected log dir %q", p.LogDir)
			}
		})
	}
}

func TestPathsForRejectsEmptyInputs(t *testing.T) {
	if _, err := PathsFor("darwin", nil, "", "/tmp/data", "dragboard"); err == nil {
		t.Fatal("expected error for empty dirs")
	}
	if _, err := PathsFor("darwin", nil, "/cfg", "/data", "  "); err == nil {
		t.Fatal("expected error for empty app name")
	}
}

func TestDefaultPathsSmoke(t *testing.T) {
	p, err := DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths() error = %v", err)
	}
	if p.AppName != DefaultAppName || p.ConfigPath == "" || p.DBPath == "" {
		t.Fatalf("unexpected default paths %#v", p)
	}
}

func TestDefaultPathsWithOptionsDevMode(t *testing.T) {
	p, err := DefaultPathsWithOptions(Options{AppName: "board", DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(p.ConfigDir) != "board-dev" {
		t.Fatalf("expected dev config dir suffix, got %q", p.ConfigPath)
	}
	if filepath.Base(p.DBPath) != "board-dev.db" {
		t.Fatalf("expected dev db name, got %q", p.DBPath)
	}
	if got := appNameFor(Options{AppName: "board-dev", DevMode: true}); got != "board-dev" {
		t.Fatalf("expected suffix to apply once, got %q", got)
	}
}
