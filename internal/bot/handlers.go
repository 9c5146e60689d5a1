package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nusduck/ImagebotCloudflare/internal/imagegen"
)

const captionPromptPreview = 120

const startText = "这是一个图片生成 Bot。\n" +
	"\n命令：\n" +
	"/image 关键词 - SDXL 出图（会用 DeepSeek 自动润色 prompt）\n" +
	"/leonardo 关键词 - Leonardo Phoenix 出图\n" +
	"/flux 关键词 - FLUX 出图\n" +
	"\n例子：\n" +
	"/image 抽象 大海 16:9\n" +
	"/flux cyberpunk city night, neon, rain"

const (
	imageUsage    = "用法：/image 提示词（例如：/image 抽象 大海 16:9）"
	leonardoUsage = "用法：/leonardo 提示词（例如：/leonardo 抽象 大海 16:9）"
	fluxUsage     = "用法：/flux 提示词（例如：/flux cute dog, watercolor）"
)

func (b *Bot) resetMenu() {
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "说明 / 帮助"},
		tgbotapi.BotCommand{Command: "image", Description: "用 SDXL 生成图片：/image 提示词"},
		tgbotapi.BotCommand{Command: "leonardo", Description: "用 Leonardo Phoenix 生成图片：/leonardo 提示词"},
		tgbotapi.BotCommand{Command: "flux", Description: "用 FLUX 生成图片：/flux 提示词"},
	)
	if _, err := b.api.Request(cmds); err != nil {
		b.logger.Errorw("Failed to reset bot menu", "error", err)
		return
	}
	b.logger.Infow("Bot menu (commands) reset")
}

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	b.resetMenu()
	b.reply(msg, startText)
}

// handleByteCommand covers the structured-gateway commands: send a
// transient notice, generate, relay the bytes with a caption, clean up.
func (b *Bot) handleByteCommand(ctx context.Context, msg *tgbotapi.Message, name, notice, usage string,
	generate func(ctx context.Context, userText string) (*imagegen.Result, error)) {

	prompt := strings.TrimSpace(msg.CommandArguments())
	if prompt == "" {
		b.reply(msg, usage)
		return
	}
	b.logger.Infow(name, "from", fromID(msg), "chat", msg.Chat.ID, "prompt", prompt)

	thinking := b.sendThinking(msg, notice)
	defer b.clearThinking(msg.Chat.ID, thinking)

	res, err := generate(ctx, prompt)
	if err != nil {
		b.logger.Errorw(name+" failed", "error", err)
		b.reply(msg, "出图失败："+imagegen.Describe(err))
		return
	}

	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: "image.png", Bytes: res.Image})
	photo.Caption = fmt.Sprintf("%s | %dx%d | %s", res.Label, res.Width, res.Height, truncate(res.Prompt, captionPromptPreview))
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Errorw(name+" send failed", "error", err)
		b.reply(msg, "出图失败："+imagegen.Describe(err))
	}
}

func (b *Bot) handleFlux(ctx context.Context, msg *tgbotapi.Message) {
	prompt := strings.TrimSpace(msg.CommandArguments())
	if prompt == "" {
		b.reply(msg, fluxUsage)
		return
	}
	b.logger.Infow("/flux", "from", fromID(msg), "chat", msg.Chat.ID, "prompt", prompt)

	thinking := b.sendThinking(msg, "Drawing (FLUX)...")
	defer b.clearThinking(msg.Chat.ID, thinking)

	url, err := b.flux.GenerateURL(ctx, prompt)
	if err != nil {
		b.logger.Errorw("/flux failed", "error", err)
		b.reply(msg, "出图失败："+imagegen.Describe(err))
		return
	}

	// Telegram fetches the image itself when sent by URL reference.
	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileURL(url))
	photo.Caption = "FLUX"
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Errorw("/flux send failed", "error", err)
		b.reply(msg, "出图失败："+imagegen.Describe(err))
	}
}

// sendThinking posts the transient "working" notice. Failure to post it
// is tolerated; the generation proceeds anyway.
func (b *Bot) sendThinking(msg *tgbotapi.Message, text string) int {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	sent, err := b.api.Send(reply)
	if err != nil {
		b.logger.Debugw("sending thinking notice failed", "error", err)
		return 0
	}
	return sent.MessageID
}

func (b *Bot) clearThinking(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	b.bestEffort("delete thinking message", func() error {
		_, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
		return err
	})
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	m := tgbotapi.NewMessage(msg.Chat.ID, text)
	m.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(m); err != nil {
		b.logger.Errorw("sending reply failed", "chat", msg.Chat.ID, "error", err)
	}
}

func fromID(msg *tgbotapi.Message) int64 {
	if msg.From == nil {
		return 0
	}
	return msg.From.ID
}

// truncate shortens s to at most n runes for caption previews.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
