package testing

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClient_Exec(t *testing.T) {
	m := NewMockClient("vantage")
	m.SetCommandResponse("uname -s", CommandResponse{Stdout: []byte("Linux\n")})

	out, _, code, err := m.Exec("uname -s")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "Linux\n", string(out))

	_, _, code, err = m.Exec("nope")
	require.NoError(t, err)
	assert.Equal(t, 127, code)
}

func TestMockClient_StartStreamsStdout(t *testing.T) {
	m := NewMockClient("vantage")
	m.SetCommandResponse(`^ping .*`, CommandResponse{
		Stdout: []byte("line one\nline two\n"),
		Stderr: []byte("warn\n"),
	})

	var stderr bytes.Buffer
	sess, stdout, err := m.Start("ping example.com", &stderr)
	require.NoError(t, err)

	data, err := io.ReadAll(stdout)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", string(data))
	assert.NoError(t, sess.Wait())
	assert.Equal(t, []string{"ping example.com"}, m.Started())
}

func TestMockClient_HeldSessionClose(t *testing.T) {
	m := NewMockClient("vantage")
	m.SetCommandResponse("ping -t host", CommandResponse{Stdout: []byte("reply\n"), Hold: true})

	sess, stdout, err := m.Start("ping -t host", nil)
	require.NoError(t, err)

	buf := make([]byte, 6)
	_, err = io.ReadFull(stdout, buf)
	require.NoError(t, err)

	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())
	assert.Error(t, sess.Wait())
	assert.True(t, m.Sessions()[0].Killed())
}

func TestMockClient_NonZeroExit(t *testing.T) {
	m := NewMockClient("vantage")
	m.SetCommandResponse("false", CommandResponse{ExitCode: 2})

	sess, stdout, err := m.Start("false", nil)
	require.NoError(t, err)
	_, _ = io.ReadAll(stdout)

	werr := sess.Wait()
	var status *ExitStatusError
	require.ErrorAs(t, werr, &status)
	assert.Equal(t, 2, status.ExitStatus())
}

func TestMockClient_Closed(t *testing.T) {
	m := NewMockClient("vantage")
	assert.True(t, m.Alive())
	require.NoError(t, m.Close())
	assert.False(t, m.Alive())

	_, _, err := m.Start("anything", nil)
	assert.Error(t, err)
}
