// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"strings"

	"github.com/netwatch-io/scoreward/internal/errors"
)

// ipRegexpFragment is substituted for every {{ip}} placeholder in a
// configured pattern.
const ipRegexpFragment = `([0-9a-f:\.]+)`

// fillTemplate substitutes {{ip}} placeholders in a configured pattern
// with ipRegexpFragment. Any other {{key}} is an error.
func fillTemplate(in string) (string, error) {
	var b strings.Builder
	pos := 0
	for {
		start := strings.Index(in[pos:], "{{")
		if start < 0 {
			b.WriteString(in[pos:])
			return b.String(), nil
		}
		start += pos
		stop := strings.Index(in[start:], "}}")
		if stop < 0 {
			b.WriteString(in[pos:])
			return b.String(), nil
		}
		stop += start
		b.WriteString(in[pos:start])
		key := in[start+2 : stop]
		switch key {
		case "ip":
			b.WriteString(ipRegexpFragment)
		default:
			return "", errors.Errorf(errors.KindConfig, "unknown template %q", key)
		}
		pos = stop + 2
	}
}
