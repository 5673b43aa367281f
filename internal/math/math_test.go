package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {

	type test struct {
		input  float64
		output string
	}

	tests := map[string]test{
		"0": {
			input:  0,
			output: "0.00",
		},
		"-1": {
			input:  -1,
			output: "-1.00",
		},
		"+1": {
			input:  1,
			output: "1.00",
		},
		"5": {
			input:  1.5555,
			output: "1.56",
		},
		"4": {
			input:  1.4444,
			output: "1.44",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := Format(tt.input)
			assert.Equal(t, tt.output, s)
		})
	}

}

func TestToString(t *testing.T) {
	ss := ToString([]int{0, 3, 12})
	assert.Equal(t, []string{"0", "3", "12"}, ss)

	ii, err := ToInt(ss)
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 3, 12}, ii)

	_, err = ToInt([]string{"1", "x"})
	assert.Error(t, err)
}
