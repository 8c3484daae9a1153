package contracts

import "github.com/companion-cli/companion/providers/models"

type ITokenManagement interface {
	UsedTokens(inputToken int, outputToken int)
	EstimateMessages(messages []models.Message) int
	GetCurrentTokenUsage() (total int, input int, output int)
	DisplayTokens(chatModel string)
	ClearToken()
}
