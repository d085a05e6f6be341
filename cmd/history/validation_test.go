package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateHistoryArgs(t *testing.T) {
	tests := []struct {
		name    string
		options RunOptionsHistory
		args    []string
		wantErr string
	}{
		{
			// valid: devguard history
			name:    "Defaults",
			options: RunOptionsHistory{Limit: 10},
			args:    []string{},
			wantErr: "",
		},
		{
			// valid: devguard history --user-id acme --limit 25
			name:    "Explicit user and limit",
			options: RunOptionsHistory{UserID: "acme", Limit: 25},
			args:    []string{},
			wantErr: "",
		},
		{
			// fail: devguard history something
			name:    "Positional argument",
			options: RunOptionsHistory{Limit: 10},
			args:    []string{"something"},
			wantErr: "invalid argument(s) received, the history command takes no positional arguments",
		},
		{
			// fail: devguard history --limit -3
			name:    "Negative limit",
			options: RunOptionsHistory{Limit: -3},
			args:    []string{},
			wantErr: "the 'limit' flag must be a positive integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateHistoryArgs(&tt.options, tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}
