package idutil

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"golang.org/x/exp/slices"
)

// ParseSnowflake parses a Discord id, which is a 64-bit snowflake encoded as a decimal
// string.
func ParseSnowflake(id string) (snowflake.ID, error) {
	sid, err := snowflake.ParseString(id)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", id, err)
	}

	if sid < 0 {
		return 0, fmt.Errorf("invalid snowflake %q: negative value", id)
	}

	return sid, nil
}

// SortSnowflakes sorts ids in ascending order, which is also the order of their creation time.
func SortSnowflakes(ids []snowflake.ID) {
	slices.Sort(ids)
}

// MaxSnowflake returns the largest id and false if ids is empty.
func MaxSnowflake(ids []snowflake.ID) (snowflake.ID, bool) {
	if len(ids) == 0 {
		return 0, false
	}

	max := ids[0]
	for _, id := range ids[1:] {
		if id > max {
			max = id
		}
	}

	return max, true
}
