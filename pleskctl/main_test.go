package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"bitbucket.org/telmaxdc/webhosting-provision/plesk"
)

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"name=Acme", "password=a=b", "username=acme1", "username=acme2", "empty="})
	require.NoError(t, err)
	assert.Equal(t, plesk.Params{"name": "Acme", "password": "a=b", "username": "acme2", "empty": ""}, params)

	for _, bad := range []string{"novalue", "=x", " =x"} {
		_, err := parseParams([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestRenderSingleAndMany(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, plesk.Single(plesk.Result{"status": "ok", "id": "501"})))
	var single map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &single))
	assert.Equal(t, map[string]string{"status": "ok", "id": "501"}, single)

	buf.Reset()
	require.NoError(t, render(&buf, plesk.Many([]plesk.Result{{"id": "1"}, {"id": "2"}})))
	var many []map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &many))
	assert.Len(t, many, 2)
	assert.Equal(t, "2", many[1]["id"])
}
