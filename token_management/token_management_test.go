package token_management

import (
	"testing"

	"github.com/companion-cli/companion/providers/models"
	"github.com/stretchr/testify/assert"
)

func TestTokenManager_AccumulatesUsage(t *testing.T) {
	tm := NewTokenManager()

	tm.UsedTokens(100, 50)
	tm.UsedTokens(10, 5)

	total, input, output := tm.GetCurrentTokenUsage()
	assert.Equal(t, 165, total)
	assert.Equal(t, 110, input)
	assert.Equal(t, 55, output)

	tm.ClearToken()
	total, input, output = tm.GetCurrentTokenUsage()
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, input)
	assert.Equal(t, 0, output)
}

func TestTokenManager_EstimateMessages(t *testing.T) {
	tm := NewTokenManager()

	messages := []models.Message{
		{Role: "system", Content: "fn main() {}"}, // 12 chars -> 3 tokens
		{Role: "user", Content: "abcdefgh"},       // 8 chars -> 2 tokens
	}

	assert.Equal(t, 5, tm.EstimateMessages(messages))
	assert.Equal(t, 0, tm.EstimateMessages(nil))
}
