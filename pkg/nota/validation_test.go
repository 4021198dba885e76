package nota_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/nota-dashboard/pkg/nota"
)

func TestCredentialsValidateSignup(t *testing.T) {
	tests := []struct {
		name    string
		creds   nota.Credentials
		wantMsg string
	}{
		{"missing confirm", nota.Credentials{Email: "a@b.co", Password: "password1"}, "All fields are required"},
		{"short password", nota.Credentials{Email: "a@b.co", Password: "short", ConfirmPassword: "short"}, "Password must be at least 8 characters long"},
		{"bad email", nota.Credentials{Email: "not-an-email", Password: "password1", ConfirmPassword: "password1"}, "Invalid email address"},
		{"markup in email", nota.Credentials{Email: "<a>@b.co", Password: "password1", ConfirmPassword: "password1"}, "Invalid characters in name or email"},
		{"markup in password", nota.Credentials{Email: "a@b.co", Password: "pass<word>", ConfirmPassword: "pass<word>"}, "Invalid characters in password"},
		{"mismatch", nota.Credentials{Email: "a@b.co", Password: "password1", ConfirmPassword: "password2"}, "Passwords do not match"},
		{"length before email", nota.Credentials{Email: "bad", Password: "short", ConfirmPassword: "short"}, "Password must be at least 8 characters long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.ValidateSignup()
			var verr *nota.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantMsg, verr.Message)
		})
	}

	assert.NoError(t, nota.Credentials{Email: "a@b.co", Password: "password1", ConfirmPassword: "password1"}.ValidateSignup())
}

func TestCredentialsValidateLogin(t *testing.T) {
	assert.Error(t, nota.Credentials{Email: "a@b.co"}.ValidateLogin())
	assert.Error(t, nota.Credentials{Password: "x"}.ValidateLogin())
	assert.NoError(t, nota.Credentials{Email: "a@b.co", Password: "x"}.ValidateLogin())
}
