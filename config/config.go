package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Secret string `yaml:"secret" json:"secret"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig `yaml:"system" json:"system"`
	Web      WebConfig `yaml:"web" json:"web"`
	Database DBConfig  `yaml:"database" json:"database"`
	Logger   LogConfig `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "BruxoShop",
		Location: "America/Sao_Paulo",
		Workdir:  "/var/bruxoshop",
		Debug:    true,
	},
	Web: WebConfig{
		Host:   "0.0.0.0",
		Port:   1816,
		Secret: "9b6de5cc-0731-1203-xxtx-0f568ac9da37",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "bruxoshop",
		User:     "postgres",
		Passwd:   "postgres",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/bruxoshop/bruxoshop.log",
	},
}

func (c *AppConfig) InitDirs() {
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "data"), 0o755)
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "logs"), 0o755)
}

func setEnvValue(name string, val *string) {
	evalue := os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	evalue := os.Getenv(name)
	if evalue != "" {
		*val = evalue == "true" || evalue == "1" || evalue == "on"
	}
}

func setEnvIntValue(name string, val *int) {
	evalue := os.Getenv(name)
	if evalue != "" {
		*val = cast.ToInt(evalue)
	}
}

// LoadConfig loads the yaml configuration and applies environment overrides.
// A missing file falls back to DefaultAppConfig.
func LoadConfig(cfile string) *AppConfig {
	if cfile == "" {
		cfile = "bruxoshop.yml"
	}

	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if _, err := os.Stat(cfile); err == nil {
		data, err := os.ReadFile(cfile)
		if err != nil {
			panic(err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			panic(err)
		}
	}

	setEnvValue("BRUXOSHOP_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBoolValue("BRUXOSHOP_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("BRUXOSHOP_WEB_HOST", &cfg.Web.Host)
	setEnvValue("BRUXOSHOP_WEB_SECRET", &cfg.Web.Secret)
	setEnvIntValue("BRUXOSHOP_WEB_PORT", &cfg.Web.Port)

	setEnvValue("BRUXOSHOP_DB_TYPE", &cfg.Database.Type)
	setEnvValue("BRUXOSHOP_DB_HOST", &cfg.Database.Host)
	setEnvValue("BRUXOSHOP_DB_NAME", &cfg.Database.Name)
	setEnvValue("BRUXOSHOP_DB_USER", &cfg.Database.User)
	setEnvValue("BRUXOSHOP_DB_PWD", &cfg.Database.Passwd)
	setEnvIntValue("BRUXOSHOP_DB_PORT", &cfg.Database.Port)

	setEnvValue("BRUXOSHOP_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("BRUXOSHOP_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvValue("BRUXOSHOP_LOGGER_FILENAME", &cfg.Logger.Filename)

	return cfg
}
