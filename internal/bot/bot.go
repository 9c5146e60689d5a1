package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/nusduck/ImagebotCloudflare/internal/imagegen"
)

// ImageBackend produces raw image bytes through the structured gateway.
type ImageBackend interface {
	GenerateSDXL(ctx context.Context, userText string) (*imagegen.Result, error)
	GenerateLeonardo(ctx context.Context, userText string) (*imagegen.Result, error)
}

// URLBackend produces a hosted image URL from a prompt.
type URLBackend interface {
	GenerateURL(ctx context.Context, prompt string) (string, error)
}

type Options struct {
	PollTimeoutSeconds int           // Telegram long-poll timeout
	RestartDelay       time.Duration // back-off before restarting the receive loop
}

// Bot owns the long-polling receive loop and dispatches commands to the
// generation backends. Requests are handled sequentially: each command
// runs to completion before the next update is processed.
type Bot struct {
	api          *tgbotapi.BotAPI
	gen          ImageBackend
	flux         URLBackend
	logger       *zap.SugaredLogger
	pollTimeout  int
	restartDelay time.Duration
	offset       int
}

func New(api *tgbotapi.BotAPI, gen ImageBackend, flux URLBackend, logger *zap.SugaredLogger, opts Options) *Bot {
	if opts.PollTimeoutSeconds <= 0 {
		opts.PollTimeoutSeconds = 60
	}
	if opts.RestartDelay <= 0 {
		opts.RestartDelay = 10 * time.Second
	}
	return &Bot{
		api:          api,
		gen:          gen,
		flux:         flux,
		logger:       logger,
		pollTimeout:  opts.PollTimeoutSeconds,
		restartDelay: opts.RestartDelay,
	}
}

// Run publishes the command menu and drives the receive loop until ctx
// is cancelled. Transport failures restart the loop after a fixed delay,
// indefinitely; the process never exits on this class of failure.
func (b *Bot) Run(ctx context.Context) {
	b.resetMenu()
	runLoop(ctx, b.logger, b.restartDelay, func(ctx context.Context) error {
		b.logger.Infow("Bot polling started")
		return b.poll(ctx)
	})
}

// runLoop repeatedly runs fn, waiting delay between attempts, until ctx
// is cancelled. This is the system's only retry/recovery policy.
func runLoop(ctx context.Context, logger *zap.SugaredLogger, delay time.Duration, fn func(context.Context) error) {
	for {
		if err := fn(ctx); err != nil {
			logger.Errorw("Bot encountered an error; restarting", "delay", delay, "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// poll fetches updates with the long-poll offset protocol and handles
// them in order. The offset survives loop restarts so no update is
// processed twice.
func (b *Bot) poll(ctx context.Context) error {
	u := tgbotapi.NewUpdate(b.offset)
	u.Timeout = b.pollTimeout
	for {
		if ctx.Err() != nil {
			return nil
		}
		updates, err := b.api.GetUpdates(u)
		if err != nil {
			return err
		}
		for _, update := range updates {
			if update.UpdateID >= u.Offset {
				u.Offset = update.UpdateID + 1
				b.offset = u.Offset
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || !msg.IsCommand() {
		return
	}
	switch msg.Command() {
	case "start":
		b.handleStart(msg)
	case "image":
		b.handleByteCommand(ctx, msg, "/image", "Drawing (SDXL)...", imageUsage, b.gen.GenerateSDXL)
	case "leonardo":
		b.handleByteCommand(ctx, msg, "/leonardo", "Drawing (Leonardo)...", leonardoUsage, b.gen.GenerateLeonardo)
	case "flux":
		b.handleFlux(ctx, msg)
	}
}

// bestEffort runs a cleanup step whose failure must never reach the
// user. Errors are logged at debug level and swallowed.
func (b *Bot) bestEffort(op string, fn func() error) {
	if err := fn(); err != nil {
		b.logger.Debugw("best-effort cleanup failed", "op", op, "error", err)
	}
}
