package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-signing-key", "organmatch", "organmatch-api")
	caller := id.NewIdentity()

	token, err := svc.GenerateAccessToken(caller, time.Hour)
	require.NoError(t, err)

	extracted, err := svc.ExtractCallerFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, caller, extracted)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("test-signing-key", "organmatch", "organmatch-api")

	token, err := svc.GenerateAccessToken(id.NewIdentity(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestJWTService_RejectsWrongKey(t *testing.T) {
	svc := NewJWTService("test-signing-key", "organmatch", "organmatch-api")
	other := NewJWTService("different-key", "organmatch", "organmatch-api")

	token, err := svc.GenerateAccessToken(id.NewIdentity(), time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-signing-key", "organmatch", "organmatch-api")

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
