// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package ipaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0.0.0.0", "0.0.0.0"},
		{"18.52.86.120", "18.52.86.120"},
		{"255.255.255.255", "255.255.255.255"},
		{"fd00:11::", "fd00:11::"},
		{"2001:db8::", "2001:db8::"},
		{"2001::", "2001::"},
	}
	for _, c := range cases {
		addr, ok := Parse(c.in)
		if !assert.Truef(t, ok, "Parse(%q): expected success", c.in) {
			continue
		}
		assert.Equal(t, c.want, addr.String(), "Parse(%q).String()", c.in)
	}
}

func TestParseFailures(t *testing.T) {
	bad := []string{
		"",
		"a",
		"18.52.86",
		"18.52.86.120.30",
		"1800.52.86.120",
		"x1234:5678:90ab:cdef::",
		"1234:5678:90ab::cdef::",
	}
	for _, in := range bad {
		_, ok := Parse(in)
		assert.Falsef(t, ok, "Parse(%q): expected failure, got success", in)
	}
}

func TestIsV6(t *testing.T) {
	v4, ok := Parse("10.0.0.1")
	require.True(t, ok)
	assert.False(t, v4.IsV6(), "10.0.0.1 should parse as IPv4")

	v6, ok := Parse("2001:db8::")
	require.True(t, ok)
	assert.True(t, v6.IsV6(), "2001:db8:: should parse as IPv6")
}

func TestBytesV4(t *testing.T) {
	a, ok := Parse("18.52.86.120")
	require.True(t, ok)
	assert.Equal(t, [4]byte{18, 52, 86, 120}, a.BytesV4())
}

func TestBytesV6(t *testing.T) {
	a, ok := Parse("fd00:11::")
	require.True(t, ok)
	assert.Equal(t, [16]byte{0xfd, 0x00, 0x00, 0x11, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, a.BytesV6())
}

func TestParseEmptyString(t *testing.T) {
	_, ok := Parse("")
	require.False(t, ok, "expected empty string to fail to parse")
}
