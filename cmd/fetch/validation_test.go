package fetch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFetchArgs(t *testing.T) {
	tests := []struct {
		name    string
		options RunOptionsFetch
		args    []string
		wantErr string
	}{
		{
			// valid: devguard fetch https://github.com/acme/widget
			name:    "Valid URL without flags",
			options: RunOptionsFetch{},
			args:    []string{"https://github.com/acme/widget"},
			wantErr: "",
		},
		{
			// valid: devguard fetch git@github.com:acme/widget.git
			name:    "Valid scp style URL",
			options: RunOptionsFetch{},
			args:    []string{"git@github.com:acme/widget.git"},
			wantErr: "",
		},
		{
			// valid: devguard fetch --auth-type http -b develop https://github.com/acme/widget
			name:    "Valid auth type and branch",
			options: RunOptionsFetch{AuthType: AuthTypeHTTP, Branch: "develop"},
			args:    []string{"https://github.com/acme/widget"},
			wantErr: "",
		},
		{
			// fail: devguard fetch
			name:    "Missing URL",
			options: RunOptionsFetch{},
			args:    []string{},
			wantErr: "a repository URL must be specified",
		},
		{
			// fail: devguard fetch url1 url2
			name:    "Too many arguments",
			options: RunOptionsFetch{},
			args:    []string{"https://github.com/a/b", "https://github.com/c/d"},
			wantErr: "invalid argument(s) received, only one positional argument is allowed",
		},
		{
			// fail: devguard fetch --auth-type kerberos URL
			name:    "Unknown auth type",
			options: RunOptionsFetch{AuthType: "kerberos"},
			args:    []string{"https://github.com/acme/widget"},
			wantErr: "unknown auth-type: kerberos",
		},
		{
			// fail: devguard fetch --auth-type ssh-key URL
			name:    "SSH key auth without key path",
			options: RunOptionsFetch{AuthType: AuthTypeSSHKey},
			args:    []string{"https://github.com/acme/widget"},
			wantErr: "you must specify ssh-key with auth-type 'ssh-key'",
		},
		{
			// fail: devguard fetch not-a-url
			name:    "Invalid URL",
			options: RunOptionsFetch{},
			args:    []string{"not-a-url"},
			wantErr: "provided URL is not valid: parse \"not-a-url\": invalid URI for request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFetchArgs(&tt.options, tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSSHKeyRejectsGarbage(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "id_ed25519")
	err := os.WriteFile(keyPath, []byte("not a private key"), 0600)
	assert.NoError(t, err)

	err = validateSSHKey(keyPath)
	assert.ErrorContains(t, err, "invalid SSH key format")
}

func TestValidateSSHKeyMissingFile(t *testing.T) {
	err := validateSSHKey(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "failed to validate path")
}
