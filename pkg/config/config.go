package config

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/selectdb/notifier/pkg/notify"
	"github.com/selectdb/notifier/pkg/xerror"
	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v3"
)

// Config holds the daemon parameters. Flags explicitly set on the command
// line win over values from the config file.
type Config struct {
	Host string `json:"host" yaml:"host" toml:"host"`
	Port int    `json:"port" yaml:"port" toml:"port"`

	DBType     string `json:"db_type" yaml:"db_type" toml:"db_type"`
	DBDir      string `json:"db_dir" yaml:"db_dir" toml:"db_dir"`
	DBHost     string `json:"db_host" yaml:"db_host" toml:"db_host"`
	DBPort     int    `json:"db_port" yaml:"db_port" toml:"db_port"`
	DBUser     string `json:"db_user" yaml:"db_user" toml:"db_user"`
	DBPassword string `json:"db_password" yaml:"db_password" toml:"db_password"`

	HistorySize       int    `json:"history_size" yaml:"history_size" toml:"history_size"`
	FailurePolicy     string `json:"failure_policy" yaml:"failure_policy" toml:"failure_policy"`
	AuditFilename     string `json:"audit_filename" yaml:"audit_filename" toml:"audit_filename"`
	WebhookTimeoutSec int    `json:"webhook_timeout_sec" yaml:"webhook_timeout_sec" toml:"webhook_timeout_sec"`

	// name -> url, registered at startup in addition to the persisted ones
	Webhooks map[string]string `json:"webhooks" yaml:"webhooks" toml:"webhooks"`

	ConfigFile string `json:"-" yaml:"-" toml:"-"`

	// top level keys present in the loaded file, nil when not loaded
	present map[string]bool
}

func Default() Config {
	return Config{
		Host:              "127.0.0.1",
		Port:              9290,
		DBType:            "sqlite3",
		DBDir:             "notifier.db",
		DBHost:            "127.0.0.1",
		DBPort:            3306,
		DBUser:            "root",
		HistorySize:       1024,
		FailurePolicy:     notify.ContinueOnError.String(),
		WebhookTimeoutSec: 10,
	}
}

func BindFlags(fs *flag.FlagSet, c *Config) {
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "config file, .toml/.yaml/.yml/.json")

	fs.StringVar(&c.Host, "host", c.Host, "notifier host")
	fs.IntVar(&c.Port, "port", c.Port, "notifier port")

	fs.StringVar(&c.DBType, "db_type", c.DBType, "meta db type, sqlite3/mysql/postgresql")
	fs.StringVar(&c.DBDir, "db_dir", c.DBDir, "sqlite3 db file")
	fs.StringVar(&c.DBHost, "db_host", c.DBHost, "meta db host")
	fs.IntVar(&c.DBPort, "db_port", c.DBPort, "meta db port")
	fs.StringVar(&c.DBUser, "db_user", c.DBUser, "meta db user")
	fs.StringVar(&c.DBPassword, "db_password", c.DBPassword, "meta db password")

	fs.IntVar(&c.HistorySize, "history_size", c.HistorySize, "messages kept in memory for /history")
	fs.StringVar(&c.FailurePolicy, "failure_policy", c.FailurePolicy, "subscriber failure policy, continue/abort")
	fs.StringVar(&c.AuditFilename, "audit_filename", c.AuditFilename, "audit log filename, empty disables audit")
	fs.IntVar(&c.WebhookTimeoutSec, "webhook_timeout_sec", c.WebhookTimeoutSec, "webhook request timeout in seconds")
}

// Load reads a configuration file based on its extension.
func Load(path string) (Config, error) {
	var c Config
	if path == "" {
		return c, xerror.New(xerror.Config, "empty config path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c, xerror.Wrapf(err, xerror.Config, "read config %s failed", path)
	}

	var unmarshal func([]byte, interface{}) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	case ".json":
		unmarshal = json.Unmarshal
	case ".toml":
		unmarshal = toml.Unmarshal
	default:
		return c, xerror.Errorf(xerror.Config, "unsupported config extension: %s", ext)
	}

	if err := unmarshal(data, &c); err != nil {
		return c, xerror.Wrapf(err, xerror.Config, "parse config %s failed", path)
	}

	raw := make(map[string]interface{})
	if err := unmarshal(data, &raw); err != nil {
		return c, xerror.Wrapf(err, xerror.Config, "parse config %s failed", path)
	}
	c.present = make(map[string]bool, len(raw))
	for key := range raw {
		c.present[key] = true
	}
	return c, nil
}

// Merge copies the fields set in file into c, except those whose flag name is
// in explicit. For a file returned by Load a key present with a zero value is
// set, otherwise only non-zero fields count.
func (c *Config) Merge(file Config, explicit map[string]bool) {
	isSet := func(name string, zero bool) bool {
		if explicit[name] {
			return false
		}
		if file.present != nil {
			return file.present[name]
		}
		return !zero
	}
	mergeString := func(name string, dst *string, src string) {
		if isSet(name, src == "") {
			*dst = src
		}
	}
	mergeInt := func(name string, dst *int, src int) {
		if isSet(name, src == 0) {
			*dst = src
		}
	}

	mergeString("host", &c.Host, file.Host)
	mergeInt("port", &c.Port, file.Port)
	mergeString("db_type", &c.DBType, file.DBType)
	mergeString("db_dir", &c.DBDir, file.DBDir)
	mergeString("db_host", &c.DBHost, file.DBHost)
	mergeInt("db_port", &c.DBPort, file.DBPort)
	mergeString("db_user", &c.DBUser, file.DBUser)
	mergeString("db_password", &c.DBPassword, file.DBPassword)
	mergeInt("history_size", &c.HistorySize, file.HistorySize)
	mergeString("failure_policy", &c.FailurePolicy, file.FailurePolicy)
	mergeString("audit_filename", &c.AuditFilename, file.AuditFilename)
	mergeInt("webhook_timeout_sec", &c.WebhookTimeoutSec, file.WebhookTimeoutSec)

	if c.Webhooks == nil {
		c.Webhooks = maps.Clone(file.Webhooks)
		return
	}
	for name, url := range file.Webhooks {
		c.Webhooks[name] = url
	}
}

// ExplicitFlags returns the names of the flags set on the command line.
func ExplicitFlags(fs *flag.FlagSet) map[string]bool {
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})
	return explicit
}

func (c *Config) Validate() error {
	switch c.DBType {
	case "sqlite3":
		if c.DBDir == "" {
			return xerror.New(xerror.Config, "db_dir is empty")
		}
	case "mysql", "postgresql":
	default:
		return xerror.Errorf(xerror.Config, "unknown db type: %s", c.DBType)
	}

	if _, err := notify.ParseFailurePolicy(c.FailurePolicy); err != nil {
		return err
	}

	if c.HistorySize < 0 {
		return xerror.Errorf(xerror.Config, "history_size must not be negative: %d", c.HistorySize)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return xerror.Errorf(xerror.Config, "invalid port: %d", c.Port)
	}

	return nil
}
