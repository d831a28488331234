package auth

import (
	"context"
	"errors"
	"fmt"
	"os"

	"jirarest/internal/jira"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Keys read from the credentials Secret.
const (
	SecretKeyHost     = "host"
	SecretKeyEmail    = "email"
	SecretKeyAPIToken = "api-token"
)

// JiraAuthenticator retrieves Jira credentials stored in a Kubernetes Secret.
type JiraAuthenticator struct {
	clientset  kubernetes.Interface
	namespace  string
	secretName string
}

// NewJiraAuthenticator creates a JiraAuthenticator talking to the cluster
// described by kubeconfig, or to the in-cluster API server when kubeconfig is empty.
func NewJiraAuthenticator(kubeconfig, namespace, secretName string) (*JiraAuthenticator, error) {
	var (
		config *rest.Config
		err    error
	)
	if kubeconfig != "" {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig %s: %w", kubeconfig, err)
		}
	} else {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create in-cluster config: %w", err)
		}
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	return NewJiraAuthenticatorForClientset(clientset, namespace, secretName), nil
}

// NewJiraAuthenticatorForClientset creates a JiraAuthenticator using an existing clientset.
func NewJiraAuthenticatorForClientset(clientset kubernetes.Interface, namespace, secretName string) *JiraAuthenticator {
	if namespace == "" {
		namespace = "default"
	}
	return &JiraAuthenticator{
		clientset:  clientset,
		namespace:  namespace,
		secretName: secretName,
	}
}

// GetCredentials retrieves Jira credentials from the Secret.
// Every key must be present; an empty value is accepted.
func (ja *JiraAuthenticator) GetCredentials(ctx context.Context) (jira.Credentials, error) {
	secret, err := ja.clientset.CoreV1().Secrets(ja.namespace).Get(ctx, ja.secretName, metav1.GetOptions{})
	if err != nil {
		return jira.Credentials{}, fmt.Errorf("failed to get secret %s/%s: %w", ja.namespace, ja.secretName, err)
	}

	values := make(map[string]string, 3)
	for _, key := range []string{SecretKeyHost, SecretKeyEmail, SecretKeyAPIToken} {
		v, ok := secret.Data[key]
		if !ok {
			if s, ok := secret.StringData[key]; ok {
				values[key] = s
				continue
			}
			return jira.Credentials{}, fmt.Errorf("%s not found in secret %s/%s", key, ja.namespace, ja.secretName)
		}
		values[key] = string(v)
	}

	return jira.Credentials{
		Host:     values[SecretKeyHost],
		Email:    values[SecretKeyEmail],
		APIToken: values[SecretKeyAPIToken],
	}, nil
}

// GetCredentialsFromEnv reads credentials from JIRA_HOST, JIRA_EMAIL and JIRA_API_TOKEN.
// JIRA_USERNAME is accepted in place of JIRA_EMAIL.
func GetCredentialsFromEnv() (jira.Credentials, error) {
	host := os.Getenv("JIRA_HOST")
	email := os.Getenv("JIRA_EMAIL")
	if email == "" {
		email = os.Getenv("JIRA_USERNAME")
	}
	apiToken := os.Getenv("JIRA_API_TOKEN")

	if host == "" && email == "" && apiToken == "" {
		return jira.Credentials{}, errors.New("missing Jira credentials in environment variables")
	}

	return jira.Credentials{
		Host:     host,
		Email:    email,
		APIToken: apiToken,
	}, nil
}
