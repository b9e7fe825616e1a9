package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
	"tripsettle/service"

	"github.com/spf13/cast"
	tele "gopkg.in/telebot.v3"
)

const handlerTimeout = 30 * time.Second

func (b *Bot) handleTrip(c tele.Context) error {
	id, err := cast.ToInt64E(strings.TrimSpace(c.Message().Payload))
	if err != nil || id <= 0 {
		return c.Send(messages["bad_id"])
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	trip, err := b.Svc.Trip().Get(ctx, id)
	if err != nil {
		return b.reply(c, err)
	}
	return c.Send(formatTrip(trip), tripMarkup(trip))
}

func (b *Bot) handlePendingTrips(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	trips, err := b.Svc.Trip().List(ctx, models.TripPending)
	if err != nil {
		return b.reply(c, err)
	}
	if len(trips) == 0 {
		return c.Send(messages["no_trips"])
	}
	for _, t := range trips {
		if err := c.Send(formatTrip(t), tripMarkup(t)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) changeStatus(c tele.Context, id int64, status models.TripStatus, particularity *string) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	res, err := b.Svc.Trip().ChangeStatus(ctx, id, status, particularity)
	if err != nil {
		return b.reply(c, err)
	}

	b.Log.Info("trip status changed from bot",
		logger.Int64("trip_id", res.Trip.ID),
		logger.String("status", string(res.Trip.Status)),
		logger.Int64("sender", c.Sender().ID),
	)

	text := formatTrip(res.Trip) + formatWarnings(res.Warnings)
	if c.Callback() != nil {
		return c.Edit(text, tripMarkup(res.Trip))
	}
	return c.Send(text, tripMarkup(res.Trip))
}

func (b *Bot) promote(c tele.Context, tripID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	res, err := b.Svc.Settlement().Promote(ctx, tripID)
	if errors.Is(err, service.ErrAlreadyPromoted) {
		return c.Send(fmt.Sprintf(messages["already"], tripID))
	}
	if err != nil {
		return b.reply(c, err)
	}
	return c.Send(formatSettlement(res.Settlement) + formatWarnings(res.Warnings))
}

func (b *Bot) handleRankStart(c tele.Context) error {
	b.setSession(c.Sender().ID, UserSession{State: StateRankAddress})
	return c.Send(messages["ask_address"])
}

func (b *Bot) handleRank(c tele.Context) error {
	address := strings.TrimSpace(c.Message().Payload)
	if address == "" {
		return b.handleRankStart(c)
	}
	return b.rank(c, address)
}

func (b *Bot) rank(c tele.Context, address string) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	res, err := b.Svc.Driver().Rank(ctx, rankSession(c.Chat().ID), address)
	if errors.Is(err, service.ErrStaleRequest) {
		return nil
	}
	if err != nil {
		return b.reply(c, err)
	}
	return c.Send(formatRanking(res.Candidates) + formatWarnings(res.Warnings))
}

// rankSession keys the last-request-wins guard per chat.
func rankSession(chatID int64) string {
	return "tg:" + cast.ToString(chatID)
}
