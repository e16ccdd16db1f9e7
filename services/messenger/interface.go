// Package messenger delivers replies to users over the Instagram Graph API.
package messenger

import "context"

// Service sends a text message to an Instagram user.
type Service interface {
	SendMessage(ctx context.Context, recipientID, text string) error
}
