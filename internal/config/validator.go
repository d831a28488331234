package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/viper"
)

// ValidateConfig validates configuration values and returns an error if any are invalid.
// Jira credentials are deliberately left unchecked; only settings of the tool
// itself are validated. It should be called after Load.
func ValidateConfig() error {
	var errors []string

	if viper.IsSet("http.timeout") {
		if timeout := durationOf("http.timeout"); timeout <= 0 {
			errors = append(errors, fmt.Sprintf("http.timeout must be positive, got: %v", timeout))
		}
	}

	switch output := viper.GetString("output"); output {
	case "", OutputTable, OutputJSON:
	default:
		errors = append(errors, fmt.Sprintf("output must be %q or %q, got: %q", OutputTable, OutputJSON, output))
	}

	switch source := viper.GetString("credentials.source"); source {
	case "", SourceConfig, SourceEnv:
	case SourceKubernetes:
		if viper.GetString("credentials.kubernetes.secret") == "" {
			errors = append(errors, "credentials.kubernetes.secret is required when credentials.source is kubernetes")
		}
	default:
		errors = append(errors, fmt.Sprintf("credentials.source must be one of %s, %s, %s, got: %q", SourceConfig, SourceEnv, SourceKubernetes, source))
	}

	if addr := viper.GetString("metrics.addr"); addr != "" {
		_, portStr, err := net.SplitHostPort(addr)
		if err != nil {
			errors = append(errors, fmt.Sprintf("metrics.addr must be host:port, got: %q", addr))
		} else if port, err := strconv.Atoi(portStr); err != nil || port < 0 || port > 65535 {
			errors = append(errors, fmt.Sprintf("metrics.addr port must be between 0 and 65535, got: %q", portStr))
		}
	}

	if len(errors) > 0 {
		errorMsg := errors[0]
		for i := 1; i < len(errors); i++ {
			errorMsg += "\n  " + errors[i]
		}
		return fmt.Errorf("configuration validation failed:\n  %s", errorMsg)
	}

	return nil
}
