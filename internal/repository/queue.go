package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-xray-sdk-go/xray"
)

// QueueMessage はキューから取り出した1件のメッセージです
type QueueMessage struct {
	MessageID     string
	Body          string
	ReceiptHandle string
}

// ReservationQueue は予約スナップショットを引き渡す永続キューのインターフェースです
type ReservationQueue interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int32) ([]QueueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// SQSReservationQueue はReservationQueueのSQS実装です
type SQSReservationQueue struct {
	client          *sqs.Client
	queueURL        string
	waitTimeSeconds int32
}

// NewSQSReservationQueue は新しいSQSReservationQueueを作成します
func NewSQSReservationQueue(client *sqs.Client, queueURL string, waitTimeSeconds int32) *SQSReservationQueue {
	return &SQSReservationQueue{
		client:          client,
		queueURL:        queueURL,
		waitTimeSeconds: waitTimeSeconds,
	}
}

// Send は予約スナップショットをキューへ書き込みます
func (q *SQSReservationQueue) Send(ctx context.Context, body string) error {
	ctx, seg := xray.BeginSubsegment(ctx, "ReservationQueue.Send")
	defer seg.Close(nil)

	_, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(body),
	})
	if err != nil {
		seg.Close(err)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// Receive は最大maxMessages件のメッセージを取り出します
func (q *SQSReservationQueue) Receive(ctx context.Context, maxMessages int32) ([]QueueMessage, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "ReservationQueue.Receive")
	defer seg.Close(nil)

	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: maxMessages,
		WaitTimeSeconds:     q.waitTimeSeconds,
	})
	if err != nil {
		seg.Close(err)
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	messages := make([]QueueMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		messages = append(messages, QueueMessage{
			MessageID:     aws.ToString(m.MessageId),
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		})
	}

	return messages, nil
}

// Delete は処理済みメッセージをキューから削除します
func (q *SQSReservationQueue) Delete(ctx context.Context, receiptHandle string) error {
	ctx, seg := xray.BeginSubsegment(ctx, "ReservationQueue.Delete")
	defer seg.Close(nil)

	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		seg.Close(err)
		return fmt.Errorf("failed to delete message: %w", err)
	}

	return nil
}
