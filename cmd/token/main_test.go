package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tourledger/internal/auth"
	"github.com/mmynk/tourledger/internal/models"
)

const testSecret = "token-cmd-secret"

func TestRunIssuesVerifiableToken(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-user", "agency-1", "-email", " Desk@Sundarban.example ", "-role", "agency"}, &out, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := auth.NewJWTManager(testSecret, time.Hour).Validate(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, models.Actor{UserID: "agency-1", Email: "desk@sundarban.example", Role: models.RoleAgency}, claims.Actor())
}

func TestRunDefaultsToAdmin(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-user", "ops"}, &out, testSecret, time.Hour))

	claims, err := auth.NewJWTManager(testSecret, time.Hour).Validate(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestRunRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing user", []string{"-role", "host"}},
		{"agency without email", []string{"-user", "a1", "-role", "agency"}},
		{"zero ttl", []string{"-user", "h1", "-role", "host", "-ttl", "0s"}},
		{"unknown flag", []string{"-user", "h1", "-bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Error(t, run(tt.args, &out, testSecret, time.Hour))
			assert.Empty(t, out.String())
		})
	}

	t.Run("unknown role", func(t *testing.T) {
		var out bytes.Buffer
		err := run([]string{"-user", "x", "-role", "driver"}, &out, testSecret, time.Hour)
		assert.True(t, errors.Is(err, auth.ErrUnknownRole))
	})
}
