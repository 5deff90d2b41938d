package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		cmd     string
		args    []string
		options map[string]string
	}{
		{
			name:  "Simple Search",
			input: "search Кинг",
			cmd:   "search",
			args:  []string{"Кинг"},
		},
		{
			name:  "Quoted Query",
			input: `search "война и мир"`,
			cmd:   "search",
			args:  []string{"война и мир"},
		},
		{
			name:  "Case Folded Name",
			input: "FORMATS 123",
			cmd:   "formats",
			args:  []string{"123"},
		},
		{
			name:    "Get With Options",
			input:   `get 123 format:epub out:./books name:'My Book'`,
			cmd:     "get",
			args:    []string{"123"},
			options: map[string]string{"format": "epub", "out": "./books", "name": "My Book"},
		},
		{
			name:  "Unknown Field Is A Word",
			input: "search title:Оно",
			cmd:   "search",
			args:  []string{"title:Оно"},
		},
		{
			name:  "Escaped Quote",
			input: `search "a \"b\""`,
			cmd:   "search",
			args:  []string{`a "b"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.cmd, c.Name)
			assert.Equal(t, tt.args, c.Args)
			if tt.options == nil {
				assert.Empty(t, c.Options)
			} else {
				assert.Equal(t, tt.options, c.Options)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("   ")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse(`search "open`)
	assert.EqualError(t, err, "unterminated quote")

	_, err = Parse("get 1 format:")
	assert.EqualError(t, err, `option "format" needs a value`)

	_, err = Parse("format:epub")
	assert.Error(t, err)
}

func TestArg(t *testing.T) {
	c, err := Parse("search stephen king")
	require.NoError(t, err)
	assert.Equal(t, "stephen king", c.Arg())
}
