package contact

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// LogMailer prints messages instead of sending them. Used by --dev.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) (string, error) {
	id := uuid.NewString()
	log.Printf("mail %s to=%s reply-to=%s subject=%q\n%s", id, msg.To, msg.ReplyTo, msg.Subject, msg.Text)
	return id, nil
}
