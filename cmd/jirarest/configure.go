package main

import (
	"fmt"
	"os"
	"strings"

	"jirarest/internal/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Wrapper for survey functions to allow mocking in tests
var (
	askOneFunc = survey.AskOne
)

// configFileMode is the mode of config files written by configure.
const configFileMode os.FileMode = 0600

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactively write the Jira connection settings",
	Long: `Prompts for the Jira site, account email, API token and credential source,
then writes them to the config file (--config, the file in use, or ./jirarest.yaml).`,
	Args: cobra.NoArgs,
	Annotations: map[string]string{
		annotationConfigOptional: "true",
		annotationSkipValidation: "true",
	},
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	answers := struct {
		Host     string
		Email    string
		APIToken string
		Source   string
	}{}

	err := askOneFunc(&survey.Input{
		Message: "Jira site (the <site> in <site>.atlassian.net):",
		Default: viper.GetString("jira.host"),
	}, &answers.Host)
	if err != nil {
		return err
	}

	err = askOneFunc(&survey.Input{
		Message: "Account email:",
		Default: viper.GetString("jira.email"),
	}, &answers.Email)
	if err != nil {
		return err
	}

	err = askOneFunc(&survey.Password{
		Message: "API token (leave empty to keep the current one):",
	}, &answers.APIToken)
	if err != nil {
		return err
	}

	source := viper.GetString("credentials.source")
	if source == "" {
		source = config.SourceConfig
	}
	err = askOneFunc(&survey.Select{
		Message: "Credentials source:",
		Options: []string{config.SourceConfig, config.SourceEnv, config.SourceKubernetes},
		Default: source,
	}, &answers.Source)
	if err != nil {
		return err
	}

	set := map[string]any{
		"jira.host":          normalizeHost(answers.Host),
		"jira.email":         strings.TrimSpace(answers.Email),
		"credentials.source": answers.Source,
	}
	var unset []string
	switch {
	case answers.Source != config.SourceConfig:
		// The token lives in the environment or the cluster, not in the file.
		unset = append(unset, "jira.api_token")
	case answers.APIToken != "":
		set["jira.api_token"] = answers.APIToken
	}

	configFile := cfgFile
	if configFile == "" {
		configFile = viper.ConfigFileUsed()
	}
	if configFile == "" {
		configFile = "jirarest.yaml"
	}

	if err := writeConfig(configFile, set, unset); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", configFile)
	return nil
}

// writeConfig updates the config file at path with set and removes unset.
// Only keys already in the file and the given ones are written: defaults,
// flags and environment variables never leak into it.
func writeConfig(path string, set map[string]any, unset []string) error {
	existing := viper.New()
	existing.SetConfigFile(path)
	existing.SetConfigType("yaml")
	if err := existing.ReadInConfig(); err != nil && !config.IsConfigNotFound(err) {
		return fmt.Errorf("failed to read config from %s: %w", path, err)
	}

	settings := existing.AllSettings()
	for _, key := range unset {
		deleteKey(settings, key)
	}

	out := viper.New()
	out.SetConfigType("yaml")
	out.SetConfigPermissions(configFileMode)
	if err := out.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("failed to merge config from %s: %w", path, err)
	}
	for key, value := range set {
		out.Set(key, value)
	}

	if err := out.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config to %s: %w", path, err)
	}
	// WriteConfigAs keeps the mode of a file that already exists.
	return os.Chmod(path, configFileMode)
}

// deleteKey removes a dotted key from nested settings.
func deleteKey(settings map[string]any, key string) {
	parts := strings.Split(key, ".")
	m := settings
	for _, part := range parts[:len(parts)-1] {
		child, ok := m[part].(map[string]any)
		if !ok {
			return
		}
		m = child
	}
	delete(m, parts[len(parts)-1])
}

// normalizeHost reduces a pasted site URL to its subdomain.
func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimSuffix(host, "/")
	return strings.TrimSuffix(host, ".atlassian.net")
}
