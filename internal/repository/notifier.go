package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-xray-sdk-go/xray"
)

// Notifier はテキストメッセージの送信ゲートウェイのインターフェースです
type Notifier interface {
	SendSMS(ctx context.Context, phoneNumber, message string) error
}

// SNSNotifier はNotifierのSNS実装です
type SNSNotifier struct {
	client *sns.Client
}

// NewSNSNotifier は新しいSNSNotifierを作成します
func NewSNSNotifier(client *sns.Client) *SNSNotifier {
	return &SNSNotifier{client: client}
}

// SendSMS は指定の電話番号へメッセージを送信します
// 番号は国番号込みの形式（例: +11234567890）で渡します
func (n *SNSNotifier) SendSMS(ctx context.Context, phoneNumber, message string) error {
	ctx, seg := xray.BeginSubsegment(ctx, "Notifier.SendSMS")
	defer seg.Close(nil)

	_, err := n.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(phoneNumber),
		Message:     aws.String(message),
	})
	if err != nil {
		seg.Close(err)
		return fmt.Errorf("failed to publish sms: %w", err)
	}

	return nil
}
