package out

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestReply(t *testing.T) {
	for _, test := range []struct {
		fn     func(*BufferWriter)
		output string
	}{
		{
			func(bw *BufferWriter) { Reply(bw, "a") },
			"a",
		},
		{
			func(bw *BufferWriter) { Reply(bw) },
			"",
		},
		{
			func(bw *BufferWriter) { Reply(bw, "") },
			"",
		},
		{
			func(bw *BufferWriter) { ReplyNL(bw, "a", "b") },
			"a\nb\n",
		},
		{
			func(bw *BufferWriter) { ReplyEither(bw, nil, "ok") },
			"ok",
		},
		{
			func(bw *BufferWriter) { ReplyEither(bw, errors.New(" boom \n")) },
			Red + "boom",
		},
		{
			func(bw *BufferWriter) { ReplyEitherNL(bw, nil, "ok") },
			"ok\n",
		},
		{
			func(bw *BufferWriter) { Prompt(bw) },
			Cyan + "SAS> " + Grey,
		},
	} {
		bw := NewBufferWriter()
		test.fn(bw)
		assert.Equal(t, test.output, bw.String())
	}
}

func TestColorizeLog(t *testing.T) {
	assert.Equal(t, "", ColorizeLog(""))

	log := "NOTE: fine\nERROR: no dataset\nWARNING: shaky\n"
	colored := ColorizeLog(log)
	assert.Equal(t,
		Grey+"NOTE: fine\n"+Red+"ERROR: no dataset\n"+Yellow+"WARNING: shaky\n",
		colored)

	// blank lines survive uncolored
	assert.Equal(t, Grey+"a\n\n"+Grey+"b\n", ColorizeLog("a\n\nb\n"))
}
