package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/wishlist-service/internal/domain"
	pkgkafka "github.com/utafrali/wishlist-service/pkg/kafka"
)

// Kafka topic constants for wishlist domain events.
const (
	TopicUserCreated         = "wishlist.user.created"
	TopicUserUpdated         = "wishlist.user.updated"
	TopicUserDeleted         = "wishlist.user.deleted"
	TopicWishlistItemAdded   = "wishlist.item.added"
	TopicWishlistItemRemoved = "wishlist.item.removed"
)

// Aggregate type constants.
const (
	AggregateTypeUser     = "user"
	AggregateTypeWishlist = "wishlist"
)

// Source identifier for events originating from this service.
const SourceWishlistService = "wishlist-service"

// UserData is the payload for user lifecycle events.
type UserData struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// UserDeletedData is the payload for a user.deleted event.
type UserDeletedData struct {
	ID string `json:"id"`
}

// WishlistItemData is the payload for wishlist item events.
type WishlistItemData struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
}

// Producer publishes wishlist domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates an event producer for the wishlist service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publishUser(ctx context.Context, topic string, user *domain.User) error {
	data := UserData{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}

	event, err := pkgkafka.NewEvent(topic, user.ID, AggregateTypeUser, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published user event",
		slog.String("topic", topic),
		slog.String("user_id", user.ID),
	)
	return nil
}

// PublishUserCreated publishes a user.created event.
func (p *Producer) PublishUserCreated(ctx context.Context, user *domain.User) error {
	return p.publishUser(ctx, TopicUserCreated, user)
}

// PublishUserUpdated publishes a user.updated event.
func (p *Producer) PublishUserUpdated(ctx context.Context, user *domain.User) error {
	return p.publishUser(ctx, TopicUserUpdated, user)
}

// PublishUserDeleted publishes a user.deleted event.
func (p *Producer) PublishUserDeleted(ctx context.Context, userID string) error {
	event, err := pkgkafka.NewEvent(TopicUserDeleted, userID, AggregateTypeUser, SourceWishlistService, UserDeletedData{ID: userID})
	if err != nil {
		return fmt.Errorf("create user.deleted event: %w", err)
	}
	if err := p.kafka.Publish(ctx, TopicUserDeleted, event); err != nil {
		return fmt.Errorf("publish user.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user event",
		slog.String("topic", TopicUserDeleted),
		slog.String("user_id", userID),
	)
	return nil
}

func (p *Producer) publishItem(ctx context.Context, topic string, item *domain.WishlistItem) error {
	data := WishlistItemData{
		UserID:    item.UserID,
		ProductID: item.ProductID,
	}

	event, err := pkgkafka.NewEvent(topic, item.UserID, AggregateTypeWishlist, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published wishlist event",
		slog.String("topic", topic),
		slog.String("user_id", item.UserID),
		slog.String("product_id", item.ProductID),
	)
	return nil
}

// PublishItemAdded publishes an item.added event.
func (p *Producer) PublishItemAdded(ctx context.Context, item *domain.WishlistItem) error {
	return p.publishItem(ctx, TopicWishlistItemAdded, item)
}

// PublishItemRemoved publishes an item.removed event.
func (p *Producer) PublishItemRemoved(ctx context.Context, item *domain.WishlistItem) error {
	return p.publishItem(ctx, TopicWishlistItemRemoved, item)
}
