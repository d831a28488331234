package cmdutils

import (
	"context"
	"fmt"
	"log/slog"

	"jirarest/internal/auth"
	"jirarest/internal/config"
	"jirarest/internal/jira"
	"jirarest/internal/metrics"
)

// Metrics, when set, instruments the transport of every client built by GetJiraClient.
var Metrics *metrics.Metrics

// NewAuthenticator builds the Kubernetes credential source. Replaced in tests.
var NewAuthenticator = func(kubeconfig, namespace, secretName string) (*auth.JiraAuthenticator, error) {
	return auth.NewJiraAuthenticator(kubeconfig, namespace, secretName)
}

// GetJiraClient initializes a Jira client from the loaded configuration.
var GetJiraClient = func(ctx context.Context) (jira.ClientInterface, error) {
	settings := config.Current()

	creds, err := ResolveCredentials(ctx, settings)
	if err != nil {
		return nil, err
	}

	return NewJiraClient(creds, settings, Metrics), nil
}

// ResolveCredentials returns the credentials named by settings.CredentialSource.
// Credentials from the config source are not validated; empty values are passed through.
func ResolveCredentials(ctx context.Context, settings config.Settings) (jira.Credentials, error) {
	switch settings.CredentialSource {
	case "", config.SourceConfig:
		return jira.Credentials{
			Host:     settings.JiraHost,
			Email:    settings.JiraEmail,
			APIToken: settings.JiraAPIToken,
		}, nil
	case config.SourceEnv:
		return auth.GetCredentialsFromEnv()
	case config.SourceKubernetes:
		ja, err := NewAuthenticator(settings.KubeConfig, settings.KubeNamespace, settings.KubeSecret)
		if err != nil {
			return jira.Credentials{}, err
		}
		return ja.GetCredentials(ctx)
	default:
		return jira.Credentials{}, fmt.Errorf("unknown credentials source %q", settings.CredentialSource)
	}
}

// NewJiraClient builds a client for creds configured by settings.
// m may be nil.
func NewJiraClient(creds jira.Credentials, settings config.Settings, m *metrics.Metrics) *jira.Client {
	timeout := settings.HTTPTimeout
	if timeout <= 0 {
		timeout = jira.DefaultTimeout
	}

	var transport jira.Transport = jira.NewHTTPTransport(timeout)
	if m != nil {
		transport = m.Instrument(transport)
	}

	return jira.NewClientFromCredentials(creds,
		jira.WithTransport(transport),
		jira.WithStrictStatus(settings.StrictStatus),
		jira.WithForwardFields(settings.ForwardFields),
		jira.WithForwardLabels(settings.ForwardLabels),
		jira.WithLogger(slog.Default()),
	)
}
