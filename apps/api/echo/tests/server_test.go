package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHome(t *testing.T) {
	env := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	resp := env.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	var data map[string]string
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, env.conf.AppName, data["service"])
	assert.Equal(t, env.conf.Build, data["version"])
	assert.Equal(t, "ok", data["status"])
}
