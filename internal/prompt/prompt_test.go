package prompt

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jprybylski/batchrun/internal/uri"
)

var script = uri.ID{Scheme: "file", Path: "/work/build.bat"}

func scripted(answer string, err error) (*Prompter, *[]string) {
	var seen []string
	p := &Prompter{
		ask: func(label, def string) (string, error) {
			seen = append(seen, label, def)
			return answer, err
		},
	}
	return p, &seen
}

func TestAskForArguments(t *testing.T) {
	ctx := context.Background()

	t.Run("splits with shell quoting", func(t *testing.T) {
		p, seen := scripted(`--out "C:/my dir" -v 'a b'`, nil)
		args, ok, err := p.AskForArguments(ctx, script)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"--out", "C:/my dir", "-v", "a b"}, args)
		assert.Equal(t, "Arguments for build.bat", (*seen)[0])
	})

	t.Run("offers previous arguments as default", func(t *testing.T) {
		p, seen := scripted("", nil)
		p.Defaults = func(id uri.ID) []string {
			assert.Equal(t, script, id)
			return []string{"release", "two words"}
		}
		_, _, err := p.AskForArguments(ctx, script)
		require.NoError(t, err)
		def, err := SplitArgs((*seen)[1])
		require.NoError(t, err)
		assert.Equal(t, []string{"release", "two words"}, def)
	})

	t.Run("empty answer runs without arguments", func(t *testing.T) {
		p, _ := scripted("   ", nil)
		args, ok, err := p.AskForArguments(ctx, script)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, args)
	})

	for _, cancel := range []error{promptui.ErrInterrupt, promptui.ErrEOF, promptui.ErrAbort} {
		t.Run("cancel "+cancel.Error(), func(t *testing.T) {
			p, _ := scripted("", cancel)
			args, ok, err := p.AskForArguments(ctx, script)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, args)
		})
	}

	t.Run("prompt failure", func(t *testing.T) {
		p, _ := scripted("", errors.New("not a terminal"))
		_, ok, err := p.AskForArguments(ctx, script)
		assert.Error(t, err)
		assert.False(t, ok)
	})

	t.Run("unterminated quote", func(t *testing.T) {
		p, _ := scripted(`"open`, nil)
		_, ok, err := p.AskForArguments(ctx, script)
		assert.Error(t, err)
		assert.False(t, ok)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		p, seen := scripted("x", nil)
		_, _, err := p.AskForArguments(cctx, script)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, *seen)
	})
}

func TestNew(t *testing.T) {
	p := New(nil)
	assert.Same(t, os.Stdin, p.Stdin)
	assert.Same(t, os.Stderr, p.Stdout)
}

func TestStatic(t *testing.T) {
	args, ok, err := Static(`a "b c"`).AskForArguments(context.Background(), script)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b c"}, args)
}

func TestSplitArgs_ExpandsEnvironment(t *testing.T) {
	t.Setenv("BATCHRUN_PROMPT_TEST", "expanded")
	args, err := SplitArgs(`$BATCHRUN_PROMPT_TEST '$BATCHRUN_PROMPT_TEST'`)
	require.NoError(t, err)
	assert.Equal(t, []string{"expanded", "$BATCHRUN_PROMPT_TEST"}, args)
}

func TestJoinArgs_RoundTrip(t *testing.T) {
	in := []string{"plain", "two words", "it's", "$HOME"}
	out, err := SplitArgs(JoinArgs(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
