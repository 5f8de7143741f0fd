// Package events fans finalized games and ownership corrections out to
// in-process subscribers over a watermill Go channel.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/AdamBeresnev/spread-pool/internal/bracket"
)

const (
	TopicGameFinalized      = "bracket.game_finalized"
	TopicOwnershipCorrected = "bracket.ownership_corrected"
)

// Publisher is what services publish through. Publishing happens after the
// transaction commits and a failure never undoes the write.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

type Bus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger),
	)
	return &Bus{pubsub: pubsub, logger: logger}
}

func (b *Bus) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	msg.Metadata.Set("topic", topic)

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	b.logger.Debug("event published", slog.String("topic", topic), slog.String("uuid", msg.UUID))
	return nil
}

func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// DecodeGameFinalized reads a TopicGameFinalized payload.
func DecodeGameFinalized(msg *message.Message) (*bracket.FinalizeResult, error) {
	var res bracket.FinalizeResult
	if err := json.Unmarshal(msg.Payload, &res); err != nil {
		return nil, fmt.Errorf("decode game finalized %s: %w", msg.UUID, err)
	}
	return &res, nil
}

// DecodeOwnershipCorrected reads a TopicOwnershipCorrected payload.
func DecodeOwnershipCorrected(msg *message.Message) (*bracket.OwnershipTransfer, error) {
	var t bracket.OwnershipTransfer
	if err := json.Unmarshal(msg.Payload, &t); err != nil {
		return nil, fmt.Errorf("decode ownership corrected %s: %w", msg.UUID, err)
	}
	return &t, nil
}

// LogFinalized logs every finalized game until ctx is done.
func (b *Bus) LogFinalized(ctx context.Context) error {
	messages, err := b.Subscribe(ctx, TopicGameFinalized)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			res, err := DecodeGameFinalized(msg)
			if err != nil {
				b.logger.Error("Dropping malformed event", slog.Any("error", err))
				msg.Ack()
				continue
			}
			attrs := []any{
				slog.String("game_id", res.GameID.String()),
				slog.Int("round", int(res.Round)),
				slog.String("score", fmt.Sprintf("%d-%d", res.ScoreA, res.ScoreB)),
				slog.String("team_winner", res.TeamWinnerID.String()),
				slog.String("owner_winner", res.OwnerWinnerID.String()),
			}
			if res.Champion {
				b.logger.Info("Champion decided", attrs...)
			} else {
				b.logger.Info("Game finalized", attrs...)
			}
			msg.Ack()
		}
	}()
	return nil
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, string, any) error { return nil }
