package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tripsettle/config"
	"tripsettle/pkg/engine"
	"tripsettle/pkg/logger"
	"tripsettle/pkg/models"
	"tripsettle/service"
	"tripsettle/storage"

	tele "gopkg.in/telebot.v3"
)

type State string

const (
	StateIdle          State = "idle"
	StateParticularity State = "awaiting_particularity"
	StateRankAddress   State = "awaiting_rank_address"
)

type UserSession struct {
	State  State
	TripID int64
	Status models.TripStatus
}

type Bot struct {
	Bot *tele.Bot
	Log logger.ILogger
	Cfg config.Config
	Svc service.IServiceManager

	mu       sync.Mutex
	Sessions map[int64]*UserSession
}

const (
	btnPending = "📦 Pending trips"
	btnRank    = "🚚 Nearest drivers"
	btnHelp    = "ℹ️ Help"
)

var messages = map[string]string{
	"welcome":        "👋 Trip settlement desk.\n/trip <id> shows a trip, /rank <address> lists the nearest drivers.",
	"no_trips":       "📭 No pending trips.",
	"ask_address":    "📍 Send the loading address:",
	"ask_particular": "✍️ Trip #%d → %s. Describe what happened:",
	"bad_id":         "Usage: /trip <id>",
	"not_found":      "❌ Not found.",
	"failed":         "❌ Something went wrong, try again.",
	"already":        "⚠️ Trip #%d already has a settlement.",
}

func New(cfg config.Config, svc service.IServiceManager, log logger.ILogger) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.TelegramBotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error("bot handler failed", logger.Error(err))
		},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}
	bot := &Bot{
		Bot:      b,
		Log:      log,
		Cfg:      cfg,
		Svc:      svc,
		Sessions: make(map[int64]*UserSession),
	}
	bot.registerHandlers()
	return bot, nil
}

// Run polls until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.Log.Info("🤖 operator bot started", logger.String("username", b.Bot.Me.Username))
	go b.Bot.Start()
	<-ctx.Done()
	b.Bot.Stop()
	b.Log.Info("operator bot stopped")
	return nil
}

func (b *Bot) registerHandlers() {
	b.Bot.Handle("/start", b.handleStart)
	b.Bot.Handle("/trip", b.handleTrip)
	b.Bot.Handle("/rank", b.handleRank)
	b.Bot.Handle(btnPending, b.handlePendingTrips)
	b.Bot.Handle(btnRank, b.handleRankStart)
	b.Bot.Handle(btnHelp, b.handleStart)

	b.Bot.Handle(tele.OnCallback, b.handleCallback)
	b.Bot.Handle(tele.OnText, b.handleText)
}

func (b *Bot) session(id int64) *UserSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.Sessions[id]
	if !ok {
		s = &UserSession{State: StateIdle}
		b.Sessions[id] = s
	}
	return s
}

func (b *Bot) setSession(id int64, s UserSession) {
	b.mu.Lock()
	b.Sessions[id] = &s
	b.mu.Unlock()
}

func (b *Bot) handleStart(c tele.Context) error {
	b.setSession(c.Sender().ID, UserSession{State: StateIdle})

	menu := &tele.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(
		menu.Row(menu.Text(btnPending), menu.Text(btnRank)),
		menu.Row(menu.Text(btnHelp)),
	)
	return c.Send(messages["welcome"], menu)
}

func (b *Bot) handleText(c tele.Context) error {
	s := b.session(c.Sender().ID)

	switch s.State {
	case StateParticularity:
		text := c.Text()
		b.setSession(c.Sender().ID, UserSession{State: StateIdle})
		return b.changeStatus(c, s.TripID, s.Status, &text)
	case StateRankAddress:
		b.setSession(c.Sender().ID, UserSession{State: StateIdle})
		return b.rank(c, c.Text())
	}
	return nil
}

func (b *Bot) handleCallback(c tele.Context) error {
	cb, ok := parseCallback(c.Callback().Data)
	if !ok {
		return c.Respond()
	}

	switch cb.Action {
	case actionStatus:
		if cb.Status.RequiresParticularity() {
			b.setSession(c.Sender().ID, UserSession{State: StateParticularity, TripID: cb.TripID, Status: cb.Status})
			_ = c.Respond()
			return c.Send(fmt.Sprintf(messages["ask_particular"], cb.TripID, cb.Status))
		}
		_ = c.Respond()
		return b.changeStatus(c, cb.TripID, cb.Status, nil)
	case actionPromote:
		_ = c.Respond()
		return b.promote(c, cb.TripID)
	}
	return c.Respond()
}

// reply turns service errors into operator-facing text.
func (b *Bot) reply(c tele.Context, err error) error {
	var ve *engine.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Send("⚠️ " + ve.Error())
	case errors.Is(err, storage.ErrNotFound):
		return c.Send(messages["not_found"])
	}
	b.Log.Error("bot request failed", logger.Int64("sender", c.Sender().ID), logger.Error(err))
	return c.Send(messages["failed"])
}
