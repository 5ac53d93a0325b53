package model

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRequiredPermissions(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, ParseRequiredPermissions(" a, b ,,c , "))
	assert.Empty(t, ParseRequiredPermissions(""))
	assert.Empty(t, ParseRequiredPermissions(" , ,"))
}

func TestParsePermissionLogic(t *testing.T) {
	assert.Equal(t, LogicAnd, ParsePermissionLogic("and"))
	assert.Equal(t, LogicAnd, ParsePermissionLogic(" AND "))
	assert.Equal(t, LogicOr, ParsePermissionLogic("or"))
	assert.Equal(t, LogicOr, ParsePermissionLogic(""))
	assert.Equal(t, LogicOr, ParsePermissionLogic("xor"))
}

func TestAccessRequestRequiresCheck(t *testing.T) {
	assert.False(t, (&AccessRequest{}).RequiresCheck())
	assert.False(t, (&AccessRequest{SystemCode: "crm"}).RequiresCheck())
	assert.False(t, (&AccessRequest{RequiredPermissions: []string{"read"}}).RequiresCheck())
	assert.True(t, (&AccessRequest{SystemCode: "crm", RequiredPermissions: []string{"read"}}).RequiresCheck())
}

func TestDenyStatus(t *testing.T) {
	cases := []struct {
		outcome DecisionOutcome
		status  int
		want    DecisionOutcome
	}{
		{OutcomeUnauthenticated, http.StatusUnauthorized, OutcomeUnauthenticated},
		{OutcomeInvalidToken, http.StatusUnauthorized, OutcomeInvalidToken},
		{OutcomeResolverFailure, http.StatusServiceUnavailable, OutcomeResolverFailure},
		{OutcomeForbidden, http.StatusForbidden, OutcomeForbidden},
		{OutcomeGranted, http.StatusForbidden, OutcomeForbidden},
	}
	for _, c := range cases {
		d := Deny(c.outcome, nil, errors.New("x"))
		assert.False(t, d.Allowed)
		assert.Equal(t, c.status, d.Status, c.outcome)
		assert.Equal(t, c.want, d.Outcome)
		assert.NotEmpty(t, d.Message)
		assert.False(t, d.DecidedAt.IsZero())
	}

	allow := Allow(OutcomeSuperAdmin, nil)
	assert.True(t, allow.Allowed)
	assert.Equal(t, http.StatusOK, allow.Status)
}
