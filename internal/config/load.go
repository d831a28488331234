package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Credential sources.
const (
	SourceConfig     = "config"
	SourceEnv        = "env"
	SourceKubernetes = "kubernetes"
)

// Settings is a snapshot of the loaded configuration.
type Settings struct {
	JiraHost      string
	JiraEmail     string
	JiraAPIToken  string
	StrictStatus  bool
	ForwardFields bool
	ForwardLabels bool

	HTTPTimeout time.Duration
	Output      string
	MetricsAddr string
	Verbose     bool
	LogFile     string

	CredentialSource string
	KubeNamespace    string
	KubeSecret       string
	KubeConfig       string
}

// envAliases maps config keys to the plain environment variables accepted
// alongside the JIRAREST_ prefixed ones.
var envAliases = map[string][]string{
	"jira.host":      {"JIRAREST_JIRA_HOST", "JIRA_HOST"},
	"jira.email":     {"JIRAREST_JIRA_EMAIL", "JIRA_EMAIL", "JIRA_USERNAME"},
	"jira.api_token": {"JIRAREST_JIRA_API_TOKEN", "JIRA_API_TOKEN"},
	"kubeconfig":     {"JIRAREST_KUBECONFIG", "KUBECONFIG"},
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("jira.strict_status", false)
	viper.SetDefault("jira.forward_fields", false)
	viper.SetDefault("jira.forward_labels", false)
	viper.SetDefault("http.timeout", "30s")
	viper.SetDefault("output", OutputTable)
	viper.SetDefault("metrics.addr", "")
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_file", "")
	viper.SetDefault("credentials.source", SourceConfig)
	viper.SetDefault("credentials.kubernetes.namespace", "default")
	viper.SetDefault("credentials.kubernetes.secret", "jira-credentials")
}

// Load initializes the configuration from file and environment variables.
// A missing default config file is not an error; a missing explicit one is.
func Load(cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("jirarest")
	}

	viper.SetEnvPrefix("JIRAREST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for key, names := range envAliases {
		if err := viper.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if cfgFile == "" && IsConfigNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// IsConfigNotFound reports whether err means the config file does not exist.
func IsConfigNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// Current returns the configuration as currently held by viper.
func Current() Settings {
	return Settings{
		JiraHost:      viper.GetString("jira.host"),
		JiraEmail:     viper.GetString("jira.email"),
		JiraAPIToken:  viper.GetString("jira.api_token"),
		StrictStatus:  viper.GetBool("jira.strict_status"),
		ForwardFields: viper.GetBool("jira.forward_fields"),
		ForwardLabels: viper.GetBool("jira.forward_labels"),

		HTTPTimeout: durationOf("http.timeout"),
		Output:      viper.GetString("output"),
		MetricsAddr: viper.GetString("metrics.addr"),
		Verbose:     viper.GetBool("verbose"),
		LogFile:     viper.GetString("log_file"),

		CredentialSource: viper.GetString("credentials.source"),
		KubeNamespace:    viper.GetString("credentials.kubernetes.namespace"),
		KubeSecret:       viper.GetString("credentials.kubernetes.secret"),
		KubeConfig:       viper.GetString("kubeconfig"),
	}
}

// durationOf reads key as a duration, accepting bare integers as seconds.
func durationOf(key string) time.Duration {
	if d := viper.GetDuration(key); d != 0 {
		if s := viper.GetString(key); s != "" && !strings.ContainsAny(s, "nsuµmh") {
			return time.Duration(viper.GetInt(key)) * time.Second
		}
		return d
	}
	return time.Duration(viper.GetInt(key)) * time.Second
}
