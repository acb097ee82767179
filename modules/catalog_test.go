package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChallenges() []Challenge {
	return []Challenge{
		{Question: "2+2?", Answer: "4", Wrong: []string{"3", "5"}},
		{Question: "Capital of France?", Answer: "Paris", Wrong: []string{"Lyon"}},
	}
}

func TestChallengeValidate(t *testing.T) {
	tests := []struct {
		name string
		ch   Challenge
		want error
	}{
		{"valid", Challenge{Question: "q", Answer: "a", Wrong: []string{"b"}}, nil},
		{"empty question", Challenge{Answer: "a", Wrong: []string{"b"}}, ErrConfig},
		{"empty answer", Challenge{Question: "q", Wrong: []string{"b"}}, ErrConfig},
		{"no wrong answers", Challenge{Question: "q", Answer: "a"}, ErrConfig},
		{"duplicate wrong", Challenge{Question: "q", Answer: "a", Wrong: []string{"b", "b"}}, ErrConfig},
		{"wrong equals answer", Challenge{Question: "q", Answer: "a", Wrong: []string{"a"}}, ErrConfig},
		{"too many decoys", Challenge{Question: "q", Answer: "a", Wrong: make20()}, ErrTooManyDecoys},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ch.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func make20() []string {
	out := make([]string, 20)
	for i := range out {
		out[i] = string(rune('a' + i))
	}
	return out
}

func TestCatalogPickRandom(t *testing.T) {
	cat := NewCatalog(sampleChallenges())
	for i := 0; i < 10; i++ {
		index, ch, err := cat.PickRandom()
		require.NoError(t, err)
		got, err := cat.Get(index)
		require.NoError(t, err)
		assert.Equal(t, got.Question, ch.Question)
	}

	empty := NewCatalog(nil)
	_, _, err := empty.PickRandom()
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestCatalogAddReplaceDelete(t *testing.T) {
	cat := NewCatalog(sampleChallenges())

	index, err := cat.Add(Challenge{Question: "1+1?", Answer: "2", Wrong: []string{"3"}})
	require.NoError(t, err)
	assert.Equal(t, 2, index)
	assert.Equal(t, 3, cat.Len())

	_, err = cat.Add(Challenge{Question: "bad"})
	assert.ErrorIs(t, err, ErrConfig)

	require.NoError(t, cat.Replace(0, Challenge{Question: "3+3?", Answer: "6", Wrong: []string{"5"}}))
	ch, err := cat.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "3+3?", ch.Question)

	assert.ErrorIs(t, cat.Replace(9, ch), ErrIndexOutOfRange)

	removed, err := cat.Delete(0)
	require.NoError(t, err)
	assert.Equal(t, "3+3?", removed.Question)
	assert.Equal(t, 2, cat.Len())

	// remaining challenges shift down
	ch, err = cat.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "Capital of France?", ch.Question)

	_, err = cat.Delete(5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestCatalogSnapshotIsACopy(t *testing.T) {
	cat := NewCatalog(sampleChallenges())
	snap := cat.Snapshot()
	snap[0].Question = "mutated"
	snap[0].Wrong[0] = "mutated"

	ch, err := cat.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "2+2?", ch.Question)
	assert.Equal(t, "3", ch.Wrong[0])
}
