package convcache

import (
	"testing"

	"ai-docchat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageEncodingRoundTrip(t *testing.T) {
	cases := []llm.Message{
		{Role: llm.RoleUser, Content: "plain question"},
		{Role: llm.RoleAssistant, Content: "col A | col B | col C"},
		{Role: llm.RoleUser, Content: "pipes || and |more| pipes"},
		{Role: llm.RoleAssistant, Content: `{"json":"body"} with "quotes" and
newlines`},
		{Role: llm.RoleUser, Content: "日本語のテキスト | with delimiter"},
		{Role: llm.RoleUser, Content: ""},
	}

	for _, want := range cases {
		entry, err := encodeMessage(want)
		require.NoError(t, err)

		got, err := decodeMessage(entry)
		require.NoError(t, err)
		assert.Equal(t, want.Role, got.Role)
		assert.Equal(t, want.Content, got.Content, "content must survive the cache verbatim")
	}
}

func TestMessageEncodingDistinguishesIdenticalMessages(t *testing.T) {
	msg := llm.Message{Role: llm.RoleUser, Content: "same question twice"}

	first, err := encodeMessage(msg)
	require.NoError(t, err)
	second, err := encodeMessage(msg)
	require.NoError(t, err)

	// Members of the sorted set must stay distinct or the second append
	// would silently collapse into the first.
	assert.NotEqual(t, first, second)
}

func TestDecodeMessageRejectsGarbage(t *testing.T) {
	_, err := decodeMessage("user|raw pipe entry|abc")
	assert.Error(t, err)
}
