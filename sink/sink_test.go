package sink_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/mailscrub/sink"
)

func TestDirDeliver(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "scrubbed")
	d, err := sink.NewDir(out)
	require.NoError(t, err)

	const raw = "Subject: test\r\n\r\nHello.\r\n"
	err = d.Deliver(context.Background(), "agent@mail.example:uid-1", strings.NewReader(raw))
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(out, "agent-mail.example-uid-1.eml"))
	require.NoError(t, err)
	assert.Equal(t, raw, string(got))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDirDeliverReplaces(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	d, err := sink.NewDir(out)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, d.Deliver(ctx, "msg-1", strings.NewReader("first")))
	require.NoError(t, d.Deliver(ctx, "msg-1", strings.NewReader("second")))

	got, err := os.ReadFile(filepath.Join(out, "msg-1.eml"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestDirDeliverFlattensID(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	d, err := sink.NewDir(out)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, d.Deliver(ctx, "in/box message 7", strings.NewReader("x")))
	require.NoError(t, d.Deliver(ctx, "..", strings.NewReader("y")))

	assert.FileExists(t, filepath.Join(out, "in-box-message-7.eml"))
	assert.FileExists(t, filepath.Join(out, "message.eml"))
}

func TestDirDeliverCanceled(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	d, err := sink.NewDir(out)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = d.Deliver(ctx, "msg-1", strings.NewReader("never written"))
	require.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewDirRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := sink.NewDir("")
	assert.Error(t, err)
}
