package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/kendall-kelly/technician-finder-api/events"
	"github.com/kendall-kelly/technician-finder-api/models"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrMissingUserID is returned for a user.created event without a user id
var ErrMissingUserID = errors.New("user.created event has no user id")

// ConfigurationError reports a fan-out that cannot run because a dependency is missing
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("notification fan-out misconfigured: %s is required", e.Missing)
}

// FanOut notifies admin devices about new users
type FanOut struct {
	db        *gorm.DB
	sender    PushSender
	logger    *zap.Logger
	batchSize int
}

// NewFanOut checks its dependencies and builds a fan-out
func NewFanOut(db *gorm.DB, sender PushSender, logger *zap.Logger) (*FanOut, error) {
	if db == nil {
		return nil, &ConfigurationError{Missing: "database"}
	}
	if sender == nil {
		return nil, &ConfigurationError{Missing: "push sender"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FanOut{db: db, sender: sender, logger: logger, batchSize: MaxBatchSize}, nil
}

// Notify pushes a "new user" message to every admin device except the new
// user's own, and returns how many messages the provider accepted.
// Individual delivery failures are logged and skipped; only the token query
// or an invalid event make Notify fail.
func (f *FanOut) Notify(ctx context.Context, ev events.UserCreated) (int, error) {
	if ev.UserID == "" {
		return 0, ErrMissingUserID
	}
	timer := prometheus.NewTimer(fanOutDuration)
	defer timer.ObserveDuration()

	var tokens []models.PushToken
	if err := f.db.WithContext(ctx).Where("is_admin = ?", true).Order("id").Find(&tokens).Error; err != nil {
		return 0, fmt.Errorf("query admin push tokens: %w", err)
	}

	recipients := f.recipients(tokens, ev.UserID)
	log := f.logger.With(zap.String("userId", ev.UserID))
	if len(recipients) == 0 {
		log.Info("no admin devices to notify", zap.Int("adminTokens", len(tokens)))
		return 0, nil
	}

	title, body := newUserText(ev)
	accepted := 0
	for start := 0; start < len(recipients); start += f.batchSize {
		end := min(start+f.batchSize, len(recipients))
		batch := make([]Message, 0, end-start)
		for _, token := range recipients[start:end] {
			batch = append(batch, Message{
				To:    token,
				Title: title,
				Body:  body,
				Sound: "default",
				Data:  map[string]string{"type": "new_user", "userId": ev.UserID},
			})
		}
		accepted += f.sendBatch(ctx, log, batch)
	}

	log.Info("new user notification sent",
		zap.Int("recipients", len(recipients)),
		zap.Int("accepted", accepted),
	)
	return accepted, nil
}

// HandleEvent adapts Notify to an events.Handler
func (f *FanOut) HandleEvent(ctx context.Context, routingKey string, body []byte) error {
	if routingKey != events.RKUserCreated {
		f.logger.Debug("ignoring event", zap.String("routingKey", routingKey))
		return nil
	}
	ev, err := events.Decode[events.UserCreated](body)
	if err != nil {
		return err
	}
	if _, err := f.Notify(ctx, ev); err != nil {
		if errors.Is(err, ErrMissingUserID) {
			return events.Permanent(err)
		}
		return err
	}
	return nil
}

// recipients drops the new user's own tokens and malformed tokens
func (f *FanOut) recipients(tokens []models.PushToken, userID string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		switch {
		case t.UserID == userID:
			skippedTokens.WithLabelValues("self").Inc()
		case !IsValidToken(t.Token):
			skippedTokens.WithLabelValues("invalid").Inc()
			f.logger.Warn("skipping malformed push token", zap.Uint("tokenId", t.ID), zap.String("ownerId", t.UserID))
		default:
			out = append(out, t.Token)
		}
	}
	return out
}

// sendBatch delivers one batch and returns the number of ok tickets
func (f *FanOut) sendBatch(ctx context.Context, log *zap.Logger, batch []Message) int {
	tickets, err := f.sender.Send(ctx, batch)
	if err != nil {
		pushBatches.WithLabelValues("failed").Inc()
		for _, m := range batch {
			log.Error("push delivery failed", zap.String("token", m.To), zap.Error(err))
		}
		return 0
	}
	pushBatches.WithLabelValues("sent").Inc()

	accepted := 0
	for i, ticket := range tickets {
		if i >= len(batch) {
			break
		}
		pushTickets.WithLabelValues(ticket.Status).Inc()
		switch {
		case ticket.Status == TicketOK:
			accepted++
		case ticket.DeviceNotRegistered():
			// left in place; stale tokens are cleaned up by hand
			log.Warn("push token no longer registered", zap.String("token", batch[i].To))
		default:
			log.Error("push delivery rejected",
				zap.String("token", batch[i].To),
				zap.String("status", ticket.Status),
				zap.String("message", ticket.Message),
			)
		}
	}
	return accepted
}

func newUserText(ev events.UserCreated) (string, string) {
	name := ev.Name
	if name == "" {
		name = "Someone"
	}
	if ev.Location == "" {
		return "New user registered", name + " just joined Technician Finder"
	}
	return "New user registered", fmt.Sprintf("%s from %s just joined Technician Finder", name, ev.Location)
}
