// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package state

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	in := State{
		"10.0.0.1":  {LastScoreTime: 1700000000, Score: 3},
		"fd00:11::": {LastScoreTime: 1700000500, Score: 7},
	}

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, in))

	out, err := Load(&buf)
	require.NoError(t, err)
	require.Len(t, out, len(in))

	for ip, rec := range in {
		got, ok := out[ip]
		if assert.Truef(t, ok, "missing record for %q", ip) {
			assert.Equal(t, rec, got, "record for %q", ip)
		}
	}
}

func TestLoadEmpty(t *testing.T) {
	out, err := Load(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, out)
}
