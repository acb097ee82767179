package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterministicPerSalt(t *testing.T) {
	texts := []string{"4", "3", "5"}
	salt := []byte("salt-one")

	first, err := Fingerprint(texts, salt, 4)
	require.NoError(t, err)
	second, err := Fingerprint(texts, salt, 4)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := Fingerprint(texts, []byte("salt-two"), 4)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestFingerprintTokenLength(t *testing.T) {
	tokens, err := Fingerprint([]string{"a"}, []byte("s"), 3)
	require.NoError(t, err)
	// hex encoding doubles the digest size
	assert.Len(t, tokens[0], 6)
}

func TestFingerprintSizeBounds(t *testing.T) {
	_, err := Fingerprint([]string{"a"}, []byte("s"), 0)
	assert.ErrorIs(t, err, ErrTooManyDecoys)
	_, err = Fingerprint([]string{"a"}, []byte("s"), maxDecoys+1)
	assert.ErrorIs(t, err, ErrTooManyDecoys)
}

func TestIssueTokensDistinctAndComplete(t *testing.T) {
	ch := Challenge{Question: "2+2?", Answer: "4", Wrong: []string{"3", "5"}}
	correct, decoys, err := issueTokens(ch)
	require.NoError(t, err)

	assert.NotEmpty(t, correct)
	require.Len(t, decoys, 2)
	assert.NotContains(t, decoys, correct)

	texts := make(map[string]bool)
	for _, text := range decoys {
		texts[text] = true
	}
	assert.True(t, texts["3"])
	assert.True(t, texts["5"])
}

func TestIssueTokensSaltedPerCall(t *testing.T) {
	ch := Challenge{Question: "2+2?", Answer: "4", Wrong: []string{"3", "5", "6", "7"}}
	first, _, err := issueTokens(ch)
	require.NoError(t, err)
	second, _, err := issueTokens(ch)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
