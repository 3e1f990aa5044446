package plesk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitbucket.org/telmaxdc/webhosting-provision/plesk"
)

type tree = map[string]interface{}
type seq = []interface{}

func TestNormalizeCollapsesRecordSequences(t *testing.T) {
	in := tree{
		"hosting": tree{
			"vrt_hst": tree{
				"property": seq{
					tree{"name": "ftp_login", "value": "acme1"},
					tree{"name": "php", "value": "true"},
				},
				"ip_address": "10.0.0.5",
			},
		},
	}
	want := tree{
		"hosting": tree{
			"vrt_hst": tree{
				"property":   tree{"ftp_login": "acme1", "php": "true"},
				"ip_address": "10.0.0.5",
			},
		},
	}
	assert.Equal(t, want, plesk.Normalize(in))
}

func TestNormalizeCollapsesVersionRecords(t *testing.T) {
	in := tree{"components": tree{"component": seq{
		tree{"name": "php", "version": "8.2"},
		tree{"name": "nginx", "version": "1.24"},
	}}}
	want := tree{"components": tree{"component": tree{"php": "8.2", "nginx": "1.24"}}}
	assert.Equal(t, want, plesk.Normalize(in))
}

func TestNormalizeLoneRecord(t *testing.T) {
	in := tree{"limits": tree{"limit": tree{"name": "max_site", "value": "5"}}}
	want := tree{"limits": tree{"limit": tree{"max_site": "5"}}}
	assert.Equal(t, want, plesk.Normalize(in))
}

func TestNormalizeLeavesOtherShapesAlone(t *testing.T) {
	in := tree{
		"result": seq{
			tree{"status": "ok", "id": "1"},
			tree{"status": "error", "errcode": "1013", "errtext": "Object does not exist"},
		},
		"mixed": seq{
			tree{"name": "a", "value": "1"},
			"plain",
		},
		"three":  tree{"name": "a", "value": "1", "extra": "x"},
		"scalar": "  keep spacing  ",
		"empty":  seq{},
	}
	assert.Equal(t, in, plesk.Normalize(in))
}

func TestNormalizeDeepNesting(t *testing.T) {
	in := tree{"a": tree{"b": seq{tree{"c": tree{"d": seq{
		tree{"name": "x", "value": tree{"inner": seq{tree{"name": "y", "version": "2"}}}},
	}}}}}}
	want := tree{"a": tree{"b": seq{tree{"c": tree{"d": tree{
		"x": tree{"inner": tree{"y": "2"}},
	}}}}}}
	assert.Equal(t, want, plesk.Normalize(in))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	cases := []interface{}{
		"scalar",
		seq{"a", "b"},
		tree{"property": seq{tree{"name": "a", "value": "1"}, tree{"name": "b", "value": "2"}}},
		tree{"limit": tree{"name": "x", "value": tree{"name": "y", "value": "z"}}},
		// names that would read as a record again once collapsed
		tree{"p": seq{tree{"name": "name", "value": "n"}, tree{"name": "value", "value": "v"}}},
		tree{"p": seq{tree{"name": "name", "value": "n"}, tree{"name": "version", "value": "v"}}},
		tree{"name": "top", "value": seq{tree{"name": "a", "value": "1"}}},
		tree{"result": seq{tree{"status": "ok"}, tree{"status": "ok", "data": seq{tree{"name": "k", "version": "1"}}}}},
	}
	for _, c := range cases {
		once := plesk.Normalize(c)
		assert.Equal(t, once, plesk.Normalize(once), "%#v", c)
	}
}

func TestNormalizeParsedServerInfo(t *testing.T) {
	raw := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<packet version="1.6.9.1">
  <server>
    <get>
      <result>
        <status>ok</status>
        <components>
          <component><name>php</name><version>8.2.10</version></component>
          <component><name>postgresql</name><version>not_installed</version></component>
        </components>
        <gen_info><server_name>web01.example.com</server_name></gen_info>
      </result>
    </get>
  </server>
</packet>`)
	parsed, err := plesk.ParseResponse(raw)
	require.NoError(t, err)
	norm := plesk.Normalize(parsed).(map[string]interface{})
	outcome, err := plesk.Extract(norm, "server", "get")
	require.NoError(t, err)
	r := outcome.Result()
	assert.Equal(t, "ok", r.Status())
	assert.Equal(t, plesk.Result{"php": "8.2.10", "postgresql": "not_installed"}, r.Map("components").Map("component"))
	assert.Equal(t, "web01.example.com", r.Get("gen_info", "server_name"))
}
