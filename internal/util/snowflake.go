package util

import (
	"fmt"
	"strconv"
)

func ParseSnowflake(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

func MustParseSnowflake(s string) uint64 {
	val, err := ParseSnowflake(s)
	if err != nil {
		panic(fmt.Errorf("could not parse Snowflake ID string: %w", err))
	}
	return val
}

// ParseSnowflakeOrZero is for optional id fields that may arrive empty.
func ParseSnowflakeOrZero(s string) uint64 {
	if s == "" {
		return 0
	}
	val, err := ParseSnowflake(s)
	if err != nil {
		return 0
	}
	return val
}

func FormatSnowflake(s uint64) string {
	return strconv.FormatUint(s, 10)
}
