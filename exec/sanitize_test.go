package exec_test

import (
	"testing"

	"github.com/moczadlo/relay/exec"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text passes through", in: "hello\nworld\n", want: "hello\nworld\n"},
		{name: "strips color codes", in: "\033[31mred\033[0m", want: "red"},
		{name: "strips cursor movement", in: "\033[2Kdone", want: "done"},
		{name: "normalizes CRLF", in: "one\r\ntwo\r\n", want: "one\ntwo\n"},
		{name: "keeps tabs", in: "a\tb", want: "a\tb"},
		{name: "drops other control chars", in: "a\x07b\x00c", want: "abc"},
		{name: "carriage return overwrites", in: "progress 10%\rprogress 99%", want: "progress 99%"},
		{name: "shorter CR segment keeps tail", in: "abcdef\rXY", want: "XYcdef"},
		{name: "empty input", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, exec.Sanitize(tt.in))
		})
	}
}
