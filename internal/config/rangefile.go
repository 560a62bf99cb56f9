// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/netwatch-io/scoreward/internal/errors"
)

// RangeFileRow is one (ip, cidr, score) row of a rangetables[].filename
// CSV file: an address, the prefix length it was registered under, and
// the score contributed by any match inside that range.
type RangeFileRow struct {
	IP    string
	CIDR  int
	Score int
}

// ParseRangeFile reads a headerless CSV of "ip,cidr,score" rows. No
// third-party CSV library appears anywhere in the example corpus; this
// uses the standard library's encoding/csv rather than introducing one.
func ParseRangeFile(r io.Reader) ([]RangeFileRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	var rows []RangeFileRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.KindConfig, "could not parse range file")
		}
		cidr, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, errors.Wrapf(err, errors.KindConfig, "invalid cidr %q", record[1])
		}
		score, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, errors.Wrapf(err, errors.KindConfig, "invalid score %q", record[2])
		}
		rows = append(rows, RangeFileRow{IP: record[0], CIDR: cidr, Score: score})
	}
	return rows, nil
}
