package contracts

import (
	"context"

	"github.com/companion-cli/companion/providers/models"
)

// IChatProvider sends an ordered list of role/content messages to a chat
// completion endpoint and returns the assistant's reply. Retry and
// backoff are a caller concern, layered outside the provider.
type IChatProvider interface {
	Chat(ctx context.Context, messages []models.Message) (string, *models.Usage, error)
}
