package services

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiddlePrompt(t *testing.T) {
	prompt, err := RiddlePrompt("Sire Slasher")
	require.NoError(t, err)

	assert.Contains(t, prompt, "You are Sire Slasher")
	assert.Contains(t, prompt, "Do not reveal the answer")
}

func TestCheckPrompt(t *testing.T) {
	prompt, err := CheckPrompt("What has keys?", "piano")
	require.NoError(t, err)

	assert.Contains(t, prompt, `The riddle was: "What has keys?"`)
	assert.Contains(t, prompt, `My answer is: "piano"`)
	assert.Contains(t, prompt, `"yes" or "no"`)
}

func TestParseVerdict(t *testing.T) {
	tests := map[string]bool{
		"yes":          true,
		"  YES\n":      true,
		"Yes, it is.":  true,
		"no":           false,
		"":             false,
		"Nope, sorry.": false,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseVerdict(in), "verdict for %q", in)
	}
}

func TestCleanRiddle(t *testing.T) {
	assert.Equal(t, "What has a neck?", cleanRiddle("```\n\"What has a neck?\"\n```"))
	assert.Equal(t, "", cleanRiddle("  \n "))
}

func TestResponseText(t *testing.T) {
	t.Run("joins text parts", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("What has "), genai.Text("a neck?")}},
		}}}
		text, err := responseText(resp)
		require.NoError(t, err)
		assert.Equal(t, "What has a neck?", text)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := responseText(&genai.GenerateContentResponse{})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("nil content", func(t *testing.T) {
		_, err := responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}
