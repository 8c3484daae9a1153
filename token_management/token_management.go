package token_management

import (
	"fmt"

	"github.com/companion-cli/companion/constants/lipgloss"
	"github.com/companion-cli/companion/providers/models"
	"github.com/companion-cli/companion/token_management/contracts"
)

// tokenManager accumulates token usage for one session.
type tokenManager struct {
	usedToken       int
	usedInputToken  int
	usedOutputToken int
}

// NewTokenManager creates a new token manager.
func NewTokenManager() contracts.ITokenManagement {
	return &tokenManager{}
}

// UsedTokens accumulates the token count for the session.
func (tm *tokenManager) UsedTokens(inputToken int, outputToken int) {
	tm.usedInputToken += inputToken
	tm.usedOutputToken += outputToken
	tm.usedToken += inputToken + outputToken
}

// EstimateMessages approximates the token footprint of a conversation
// with the fixed 1-token-per-4-characters rule used everywhere context
// size is bounded.
func (tm *tokenManager) EstimateMessages(messages []models.Message) int {
	total := 0
	for _, message := range messages {
		total += len(message.Content) / 4
	}
	return total
}

func (tm *tokenManager) GetCurrentTokenUsage() (total int, input int, output int) {
	return tm.usedToken, tm.usedInputToken, tm.usedOutputToken
}

func (tm *tokenManager) DisplayTokens(chatModel string) {
	tokenInfo := fmt.Sprintf("Token Used: %d (Input: %d, Output: %d) - Chat Model: %s",
		tm.usedToken, tm.usedInputToken, tm.usedOutputToken, chatModel)
	fmt.Println(lipgloss.BoxStyle.Render(tokenInfo))
}

func (tm *tokenManager) ClearToken() {
	tm.usedToken = 0
	tm.usedInputToken = 0
	tm.usedOutputToken = 0
}
