package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDomainError_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("login: %w", ErrInvalidCredentials)

	assert.True(t, IsDomainError(err, ErrCodeInvalidCredentials))
	assert.False(t, IsDomainError(err, ErrCodeTransient))
	assert.Equal(t, ErrCodeInvalidCredentials, CodeOf(err))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestValidationError(t *testing.T) {
	var v ValidationError
	require.NoError(t, v.Err())

	v.Add("email", "Please enter a valid email address")
	v.Add("email", "ignored")
	v.Add("password", "Password does not meet requirements")

	err := v.Err()
	require.Error(t, err)
	assert.True(t, IsDomainError(err, ErrCodeInvalidInput))
	fields := FieldErrors(err)
	assert.Equal(t, "Please enter a valid email address", fields["email"])
	assert.Len(t, fields, 2)
}

func TestDuplicateEmailCarriesAddress(t *testing.T) {
	err := error(NewDuplicateEmail("a@b.com"))

	var dErr *Error
	require.True(t, errors.As(err, &dErr))
	assert.Equal(t, "a@b.com", dErr.Email)
}

func TestIdentityExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, (*Identity)(nil).IsExpired(now))
	assert.False(t, (&Identity{Subject: "u"}).IsExpired(now))
	assert.True(t, (&Identity{Subject: "u", ExpiresAt: now}).IsExpired(now))
	assert.False(t, (&Identity{Subject: "u", ExpiresAt: now.Add(time.Second)}).IsExpired(now))
}
