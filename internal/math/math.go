package math

import (
	"strconv"
)

// Format formats a float based on the given precision
func Format(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// ToString formats each integer as a decimal string.
func ToString(ii []int) []string {
	ss := make([]string, len(ii))
	for i, v := range ii {
		ss[i] = strconv.Itoa(v)
	}
	return ss
}

// ToInt parses each string as a decimal integer.
func ToInt(ss []string) ([]int, error) {
	ii := make([]int, len(ss))
	for i, s := range ss {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		ii[i] = v
	}
	return ii, nil
}
