package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	iot "github.com/tj-smith47/iot-go"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvDMSURL, "")
	t.Setenv(EnvMMSURL, "")
	t.Setenv(EnvTokenFile, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DMSURL != iot.DefaultDMSURL || cfg.MMSURL != iot.DefaultMMSURL {
		t.Errorf("urls = %q %q", cfg.DMSURL, cfg.MMSURL)
	}
	if cfg.Timeout != iot.DefaultTimeout {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.TokenFile == "" {
		t.Error("TokenFile not defaulted")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "dms_url: https://file/dms\nmms_url: https://file/mms\nclient_id: from-file\ntimeout: 5s\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvDMSURL, "")
	t.Setenv(EnvMMSURL, "https://env/mms")
	t.Setenv(EnvClientSecret, "shh")
	t.Setenv(EnvTimeout, "12")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DMSURL != "https://file/dms" {
		t.Errorf("DMSURL = %q, want file value", cfg.DMSURL)
	}
	if cfg.MMSURL != "https://env/mms" {
		t.Errorf("MMSURL = %q, want env value", cfg.MMSURL)
	}
	if cfg.ClientID != "from-file" || cfg.ClientSecret != "shh" {
		t.Errorf("credentials = %q %q", cfg.ClientID, cfg.ClientSecret)
	}
	if cfg.Timeout != 12*time.Second {
		t.Errorf("Timeout = %v, want 12s", cfg.Timeout)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("dms_url: [unterminated"), 0600)

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSave_OmitsSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.ClientID = "app"
	cfg.ClientSecret = "shh"
	cfg.Token = "bearer-value"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "shh") || strings.Contains(string(data), "bearer-value") {
		t.Errorf("secrets written:\n%s", data)
	}
	if !strings.Contains(string(data), "client_id: app") {
		t.Errorf("client_id missing:\n%s", data)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := Default()
	cfg.DMSURL = "https://d/api"
	cfg.TokenURL = "https://auth/token"
	cfg.Token = "tok"

	client, err := iot.NewClient(cfg.ClientOptions()...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.DMSURL() != "https://d/api/" {
		t.Errorf("DMSURL = %q", client.DMSURL())
	}
	if client.TokenURL() != "https://auth/token" {
		t.Errorf("TokenURL = %q", client.TokenURL())
	}
	if client.Token() != "tok" {
		t.Errorf("Token = %q", client.Token())
	}
}

func TestUpdate_KeepsEnvironmentOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "dms_url: https://file/dms\nmms_url: https://file/mms\nclient_id: from-file\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvTokenURL, "https://env/oauth/token")
	t.Setenv(EnvEnv, "prod")
	t.Setenv(EnvTimeout, "7")

	err := Update(path, func(c *Config) {
		c.MMSURL = "https://new/mms"
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	saved, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if saved.DMSURL != "https://file/dms" || saved.MMSURL != "https://new/mms" {
		t.Errorf("urls = %q %q", saved.DMSURL, saved.MMSURL)
	}
	if saved.ClientID != "from-file" {
		t.Errorf("ClientID = %q, want from-file", saved.ClientID)
	}
	if saved.TokenURL != "" || saved.Env != "" || saved.Timeout != 0 {
		t.Errorf("environment leaked into file: token_url=%q env=%q timeout=%v", saved.TokenURL, saved.Env, saved.Timeout)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.DMSURL != "" || cfg.Timeout != 0 {
		t.Errorf("cfg = %+v, want empty", cfg)
	}
}
