package communication

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Line pushes templated one-on-one messages to customers. Every push is
// fire-and-forget from the domain's point of view: the dispatcher logs
// failures and moves on.
type Line struct {
	api *messaging_api.MessagingApiAPI
}

func NewLine(channelToken string) (*Line, error) {
	api, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("init line messaging api: %w", err)
	}
	return &Line{api: api}, nil
}

// Push sends one text message to the chat identified by the opaque LINE
// user id. The retry key makes a timed-out push safe to resend.
func (l *Line) Push(ctx context.Context, userID, text string) error {
	if userID == "" {
		return fmt.Errorf("contract has no line user id")
	}

	_, err := l.api.PushMessage(&messaging_api.PushMessageRequest{
		To: userID,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: text},
		},
	}, uuid.NewString())
	if err != nil {
		return fmt.Errorf("line push to %s: %w", userID, err)
	}
	return nil
}

// RenewalNoticeText is the reminder template pushed when a contract enters
// its renewal window.
func RenewalNoticeText(contractNumber, endDate string) string {
	return fmt.Sprintf(
		"Hi! Your DeskHive agreement %s ends on %s. Reply here to renew, or our team can walk you through move-out.",
		contractNumber, endDate)
}

// SettlementReadyText tells the customer their deposit settlement is ready.
func SettlementReadyText(contractNumber, refund string) string {
	return fmt.Sprintf(
		"Your move-out settlement for agreement %s is ready: refund %s. We'll transfer it once the refund details are confirmed.",
		contractNumber, refund)
}
