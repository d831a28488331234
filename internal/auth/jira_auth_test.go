package auth

import (
	"context"
	"testing"

	"jirarest/internal/jira"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func newSecret(namespace, name string, data map[string]string) *corev1.Secret {
	s := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Data:       map[string][]byte{},
	}
	for k, v := range data {
		s.Data[k] = []byte(v)
	}
	return s
}

func TestJiraAuthenticator_GetCredentials(t *testing.T) {
	clientset := fake.NewSimpleClientset(newSecret("jira", "jira-credentials", map[string]string{
		"host":      "acme",
		"email":     "user@example.com",
		"api-token": "secret-token",
	}))

	ja := NewJiraAuthenticatorForClientset(clientset, "jira", "jira-credentials")
	creds, err := ja.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, jira.Credentials{Host: "acme", Email: "user@example.com", APIToken: "secret-token"}, creds)
}

func TestJiraAuthenticator_DefaultNamespace(t *testing.T) {
	clientset := fake.NewSimpleClientset(newSecret("default", "creds", map[string]string{
		"host":      "acme",
		"email":     "",
		"api-token": "",
	}))

	ja := NewJiraAuthenticatorForClientset(clientset, "", "creds")
	creds, err := ja.GetCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acme", creds.Host)
	assert.Empty(t, creds.Email)
}

func TestJiraAuthenticator_Errors(t *testing.T) {
	t.Run("Secret Not Found", func(t *testing.T) {
		ja := NewJiraAuthenticatorForClientset(fake.NewSimpleClientset(), "jira", "missing")
		_, err := ja.GetCredentials(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get secret jira/missing")
	})

	t.Run("Missing Key", func(t *testing.T) {
		clientset := fake.NewSimpleClientset(newSecret("jira", "partial", map[string]string{
			"host":  "acme",
			"email": "user@example.com",
		}))
		ja := NewJiraAuthenticatorForClientset(clientset, "jira", "partial")
		_, err := ja.GetCredentials(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api-token not found")
	})
}

func TestNewJiraAuthenticator_BadKubeconfig(t *testing.T) {
	_, err := NewJiraAuthenticator("/nonexistent/kubeconfig", "default", "creds")
	assert.Error(t, err)
}

func TestGetCredentialsFromEnv(t *testing.T) {
	t.Run("All Set", func(t *testing.T) {
		t.Setenv("JIRA_HOST", "acme")
		t.Setenv("JIRA_EMAIL", "user@example.com")
		t.Setenv("JIRA_USERNAME", "")
		t.Setenv("JIRA_API_TOKEN", "token")

		creds, err := GetCredentialsFromEnv()
		require.NoError(t, err)
		assert.Equal(t, jira.Credentials{Host: "acme", Email: "user@example.com", APIToken: "token"}, creds)
	})

	t.Run("Username Fallback", func(t *testing.T) {
		t.Setenv("JIRA_HOST", "acme")
		t.Setenv("JIRA_EMAIL", "")
		t.Setenv("JIRA_USERNAME", "legacy@example.com")
		t.Setenv("JIRA_API_TOKEN", "token")

		creds, err := GetCredentialsFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "legacy@example.com", creds.Email)
	})

	t.Run("Nothing Set", func(t *testing.T) {
		t.Setenv("JIRA_HOST", "")
		t.Setenv("JIRA_EMAIL", "")
		t.Setenv("JIRA_USERNAME", "")
		t.Setenv("JIRA_API_TOKEN", "")

		_, err := GetCredentialsFromEnv()
		assert.Error(t, err)
	})
}
