package app

import (
	"path/filepath"
	"testing"
)

func TestGetDefaults_EnvOverrides(t *testing.T) {
	t.Setenv("VSHIELD_CONFIG_PATH", "/etc/vshield.toml")
	t.Setenv("VSHIELD_HOME", "/srv/vshield")

	defaults, err := GetDefaults()
	if err != nil {
		t.Fatalf("GetDefaults: %v", err)
	}
	if defaults["config_path"] != "/etc/vshield.toml" {
		t.Errorf("config_path = %s", defaults["config_path"])
	}
	if defaults["base_dir"] != "/srv/vshield" {
		t.Errorf("base_dir = %s", defaults["base_dir"])
	}
	if defaults["log_dir"] != filepath.Join("/srv/vshield", "log") {
		t.Errorf("log_dir = %s", defaults["log_dir"])
	}
}

func TestGetDefaults_HomeFallback(t *testing.T) {
	t.Setenv("VSHIELD_CONFIG_PATH", "")
	t.Setenv("VSHIELD_HOME", "")
	t.Setenv("HOME", t.TempDir())

	defaults, err := GetDefaults()
	if err != nil {
		t.Fatalf("GetDefaults: %v", err)
	}
	if filepath.Base(defaults["config_path"]) != "vshield.toml" {
		t.Errorf("config_path = %s", defaults["config_path"])
	}
	if filepath.Base(defaults["base_dir"]) != "vshield" {
		t.Errorf("base_dir = %s", defaults["base_dir"])
	}
}
