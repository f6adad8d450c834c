package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"petsc-chat-be/internal/dto"
	"petsc-chat-be/internal/pkg/logger"
	"petsc-chat-be/pkg/ingest"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService runs reindex jobs published on the reindex topic. Chats
// keep flowing while a reindex runs; the store overwrites chunks in place.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	pipeline  *ingest.Pipeline
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	pipeline *ingest.Pipeline,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		pipeline:  pipeline,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ReindexDocsMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("reindex", "failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads are not retriable
		return
	}

	cs.logger.Info("reindex", "reindex started", map[string]interface{}{
		"docs_dir": payload.DocsDir,
	})

	stats, err := cs.pipeline.Run(ctx, payload.DocsDir)
	if err != nil {
		cs.logger.Error("reindex", "reindex failed", map[string]interface{}{
			"docs_dir": payload.DocsDir,
			"error":    err.Error(),
		})
		msg.Ack() // rerun is triggered explicitly, not by redelivery
		return
	}

	cs.logger.Info("reindex", "reindex finished", map[string]interface{}{
		"files_loaded":  stats.FilesLoaded,
		"files_skipped": stats.FilesSkipped,
		"chunks":        stats.Chunks,
	})
	msg.Ack()
}
