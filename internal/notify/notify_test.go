package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRenderResetEscapes(t *testing.T) {
	html, err := renderReset("<b>Ana</b>", "https://app.example/reset?token=abc")
	require.NoError(t, err)
	assert.Contains(t, html, "&lt;b&gt;Ana&lt;/b&gt;")
	assert.Contains(t, html, `href="https://app.example/reset?token=abc"`)
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	require.NoError(t, n.SendPasswordReset(context.Background(), "ana@example.com", "Ana", "https://x/reset"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "ana@example.com", entry.ContextMap()["to"])
	assert.Equal(t, "https://x/reset", entry.ContextMap()["link"])
}
