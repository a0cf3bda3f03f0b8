package communication

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// EmailInfo is a plain-text notice, typically the formal renewal or
// termination letter accompanying the chat message.
type EmailInfo struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// SendEmail delivers the notice through SES.
func SendEmail(ctx context.Context, info *EmailInfo) error {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return err
	}
	client := ses.NewFromConfig(cfg)

	_, err = client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(info.From),
		Destination: &types.Destination{
			ToAddresses: info.To,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(info.Subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(info.Body)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send email %q: %w", info.Subject, err)
	}
	return nil
}
