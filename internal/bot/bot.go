package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"couple-checklist/internal/calendar"
	"couple-checklist/internal/model"
	"couple-checklist/internal/repository"
	"couple-checklist/internal/service"
)

const (
	cbCompletePrefix = "complete:"
	maxButtonTitle   = 24
)

// telegramAPI is implemented by *tgbotapi.BotAPI.
type telegramAPI interface {
	sender
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Services are the application services the bot talks to.
type Services struct {
	Users        *service.UserService
	Tasks        *service.TaskService
	Streaks      *service.StreakService
	Achievements *service.AchievementService
	Dates        *service.SpecialDateService
	Reminders    *service.ReminderService
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api telegramAPI
	svc Services
	loc *time.Location
	now func() time.Time
}

// NewAPI authorizes token against Telegram.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Info().Str("account", api.Self.UserName).Msg("bot authorized")
	return api, nil
}

func New(api telegramAPI, svc Services, loc *time.Location) *Bot {
	return &Bot{api: api, svc: svc, loc: loc, now: time.Now}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Info().Msg("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.HandleUpdate(ctx, update)
	}
	return nil
}

// HandleUpdate processes one update. Errors are logged.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.CallbackQuery != nil:
		err = b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		err = b.handleMessage(ctx, update.Message)
	}
	if err != nil {
		log.Error().Err(err).Int("update_id", update.UpdateID).Msg("handle update")
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "I did not get that. Try /help for the list of commands.")
	}

	log.Debug().Int64("chat_id", msg.Chat.ID).Str("command", msg.Command()).Msg("command received")

	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.sendText(msg.Chat.ID, helpText)
	case "iam":
		return b.handleIAm(ctx, msg)
	}

	user, err := b.linkedUser(ctx, msg.Chat.ID)
	if err != nil || user == nil {
		return err
	}

	switch msg.Command() {
	case "tasks":
		return b.sendTaskList(ctx, msg.Chat.ID, user)
	case "complete":
		return b.handleComplete(ctx, msg)
	case "new":
		return b.handleNew(ctx, msg, user, user.ID)
	case "assign":
		partner, err := b.svc.Users.Partner(ctx, user.ID)
		if err != nil {
			return err
		}
		return b.handleNew(ctx, msg, user, partner.ID)
	case "react":
		return b.handleReact(ctx, msg, user)
	case "streak":
		return b.handleStreak(ctx, msg.Chat.ID)
	case "achievements":
		return b.handleAchievements(ctx, msg.Chat.ID, user)
	case "report":
		return b.handleReport(ctx, msg.Chat.ID, user)
	case "together":
		return b.handleTogether(ctx, msg.Chat.ID)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

const helpText = "ℹ️ <b>Commands</b>\n" +
	"• /iam &lt;name&gt; — link this chat to your user\n" +
	"• /tasks — your open tasks with complete buttons\n" +
	"• /complete &lt;id&gt; — mark a task as done\n" +
	"• /new &lt;title&gt; — add a task for yourself\n" +
	"• /assign &lt;title&gt; — add a task for your partner\n" +
	"• /react &lt;id&gt; &lt;emoji&gt; — react to a task your partner finished\n" +
	"• /streak — both streaks\n" +
	"• /achievements — your achievements\n" +
	"• /report — today's summary\n" +
	"• /together — how long you have been together"

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Hi, %s!\n<b>I keep your shared checklist.</b>\n\n", escape(name))

	user, err := b.svc.Users.ByChat(ctx, msg.Chat.ID)
	switch {
	case err == nil:
		text += fmt.Sprintf("This chat belongs to %s %s.\n\n", user.AvatarEmoji, escape(user.Name))
	case errors.Is(err, service.ErrUserNotFound):
		users, err := b.svc.Users.List(ctx)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(users))
		for _, u := range users {
			names = append(names, escape(u.Name))
		}
		text += fmt.Sprintf("Tell me who you are first: /iam %s\n\n", strings.Join(names, " or "))
	default:
		return err
	}
	return b.sendText(msg.Chat.ID, text+helpText)
}

func (b *Bot) handleIAm(ctx context.Context, msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		return b.sendText(msg.Chat.ID, "Usage: /iam &lt;name&gt;")
	}
	user, err := b.svc.Users.LinkTelegram(ctx, name, msg.Chat.ID)
	if errors.Is(err, service.ErrUserNotFound) {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("I do not know %s.", escape(name)))
	}
	if err != nil {
		return err
	}
	log.Info().Uint("user_id", user.ID).Int64("chat_id", msg.Chat.ID).Msg("chat linked")
	return b.sendText(msg.Chat.ID, fmt.Sprintf("%s Hi %s, this chat is now yours.", user.AvatarEmoji, escape(user.Name)))
}

func (b *Bot) handleComplete(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give me the task id: /complete 12")
	}
	text, err := b.complete(ctx, taskID)
	if err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, text)
}

// complete marks a task done and renders the outcome. Tasks that are
// already done are left alone.
func (b *Bot) complete(ctx context.Context, taskID uint) (string, error) {
	task, err := b.svc.Tasks.Get(ctx, taskID)
	if errors.Is(err, service.ErrTaskNotFound) {
		return "Task not found.", nil
	}
	if err != nil {
		return "", err
	}
	if task.IsCompleted {
		return fmt.Sprintf("«%s» is already done.", escape(task.Title)), nil
	}

	res, err := b.svc.Tasks.ToggleComplete(ctx, taskID, b.now())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ «%s» done.", escape(res.Task.Title))
	if res.Streak != nil && res.Streak.CurrentStreak > 0 {
		fmt.Fprintf(&sb, "\n🔥 Streak: %d days", res.Streak.CurrentStreak)
	}
	for _, a := range res.Unlocked {
		fmt.Fprintf(&sb, "\n%s <b>%s</b> unlocked!", a.Icon, escape(a.Name))
	}
	return sb.String(), nil
}

func (b *Bot) handleNew(ctx context.Context, msg *tgbotapi.Message, user *model.User, assignee uint) error {
	title := strings.TrimSpace(msg.CommandArguments())
	if title == "" {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Usage: /%s &lt;title&gt;", msg.Command()))
	}
	task, err := b.svc.Tasks.Create(ctx, service.TaskInput{Title: title, AssignedTo: assignee, AssignedBy: user.ID})
	if errors.Is(err, service.ErrInvalidInput) {
		return b.sendText(msg.Chat.ID, escape(err.Error()))
	}
	if err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📝 Task #%d saved: %s", task.ID, escape(task.Title)))
}

func (b *Bot) handleReact(ctx context.Context, msg *tgbotapi.Message, user *model.User) error {
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) != 2 {
		return b.sendText(msg.Chat.ID, "Usage: /react &lt;id&gt; &lt;emoji&gt;")
	}
	taskID, err := parseID(fields[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, "The task id must be a number.")
	}

	task, err := b.svc.Tasks.React(ctx, taskID, user.ID, fields[1])
	switch {
	case err == nil:
		return b.sendText(msg.Chat.ID, fmt.Sprintf("%s sent for «%s».", fields[1], escape(task.Title)))
	case errors.Is(err, service.ErrTaskNotFound):
		return b.sendText(msg.Chat.ID, "Task not found.")
	case errors.Is(err, service.ErrNotAssigner):
		return b.sendText(msg.Chat.ID, "Only whoever assigned the task can react to it.")
	case errors.Is(err, service.ErrNotCompleted):
		return b.sendText(msg.Chat.ID, "Wait until the task is done.")
	case errors.Is(err, service.ErrAlreadyReacted):
		return b.sendText(msg.Chat.ID, "You already reacted to this one.")
	case errors.Is(err, service.ErrInvalidInput):
		return b.sendText(msg.Chat.ID, escape(err.Error()))
	default:
		return err
	}
}

func (b *Bot) handleStreak(ctx context.Context, chatID int64) error {
	users, err := b.svc.Users.List(ctx)
	if err != nil {
		return err
	}
	today := calendar.Today(b.now(), b.loc)

	var sb strings.Builder
	sb.WriteString("🔥 <b>Streaks</b>\n")
	for _, u := range users {
		streak, err := b.svc.Streaks.GetStreak(ctx, u.ID, today)
		if err != nil {
			return err
		}
		fmt.Fprintf(&sb, "%s %s: %d days (best %d)\n", u.AvatarEmoji, escape(u.Name), streak.CurrentStreak, streak.BestStreak)
	}
	return b.sendText(chatID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleAchievements(ctx context.Context, chatID int64, user *model.User) error {
	statuses, err := b.svc.Achievements.List(ctx, user.ID)
	if err != nil {
		return err
	}

	var unlocked, locked []string
	for _, s := range statuses {
		if s.Unlocked {
			unlocked = append(unlocked, fmt.Sprintf("%s <b>%s</b>", s.Icon, escape(s.Name)))
		} else {
			locked = append(locked, fmt.Sprintf("🔒 %s: %s", escape(s.Name), escape(s.Description)))
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 <b>Achievements</b> %d/%d\n", len(unlocked), len(statuses))
	for _, line := range unlocked {
		sb.WriteString(line + "\n")
	}
	if len(locked) > 0 {
		sb.WriteByte('\n')
		for _, line := range locked {
			sb.WriteString(line + "\n")
		}
	}
	return b.sendText(chatID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleReport(ctx context.Context, chatID int64, user *model.User) error {
	text, err := b.svc.Reminders.DailySummary(ctx, *user, b.now())
	if err != nil {
		return err
	}
	return b.sendText(chatID, text)
}

func (b *Bot) handleTogether(ctx context.Context, chatID int64) error {
	info, err := b.svc.Dates.Together(ctx, b.now())
	if err != nil {
		return err
	}
	if info == nil {
		return b.sendText(chatID, "No anniversary saved yet.")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "💞 Together since %s\n", info.AnniversaryDate)
	fmt.Fprintf(&sb, "%d days · %d months\n", info.DaysTogether, info.MonthsTogether)
	switch {
	case info.IsAnniversary:
		fmt.Fprintf(&sb, "💍 Happy anniversary! %d years", info.YearsTogether)
	case info.IsMesiversario:
		sb.WriteString("💝 Happy mesiversario!")
	default:
		fmt.Fprintf(&sb, "Next mesiversario in %d days", info.DaysUntilNext)
	}
	return b.sendText(chatID, sb.String())
}

func (b *Bot) sendTaskList(ctx context.Context, chatID int64, user *model.User) error {
	tasks, err := b.svc.Tasks.List(ctx, repository.ScopeMine, user.ID)
	if err != nil {
		return err
	}

	var sb strings.Builder
	var buttons [][]tgbotapi.InlineKeyboardButton
	sb.WriteString("📋 <b>Your tasks</b>\n")
	for _, task := range tasks {
		if task.IsCompleted {
			continue
		}
		fmt.Fprintf(&sb, "%s #%d %s\n", priorityIcon(task.Priority), task.ID, escape(task.Title))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✅ #%d · %s", task.ID, shortTitle(task.Title, maxButtonTitle)),
				fmt.Sprintf("%s%d", cbCompletePrefix, task.ID),
			),
		))
	}
	if len(buttons) == 0 {
		return b.sendText(chatID, "Nothing open. Add one with /new.")
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(sb.String()))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	if !strings.HasPrefix(cb.Data, cbCompletePrefix) {
		return nil
	}

	chatID := cb.Message.Chat.ID
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Warn().Err(err).Msg("callback ack")
	}

	user, err := b.linkedUser(ctx, chatID)
	if err != nil || user == nil {
		return err
	}
	taskID, err := parseID(strings.TrimPrefix(cb.Data, cbCompletePrefix))
	if err != nil {
		return fmt.Errorf("callback data %q: %w", cb.Data, err)
	}

	text, err := b.complete(ctx, taskID)
	if err != nil {
		return err
	}
	if err := b.sendText(chatID, text); err != nil {
		return err
	}
	return b.sendTaskList(ctx, chatID, user)
}

// SendDailySummaries sends the morning summary to every linked user.
func (b *Bot) SendDailySummaries(ctx context.Context) error {
	return b.broadcast(ctx, b.svc.Reminders.DailySummary)
}

// SendReminders nudges linked users that have open tasks.
func (b *Bot) SendReminders(ctx context.Context) error {
	return b.broadcast(ctx, b.svc.Reminders.PendingReminder)
}

func (b *Bot) broadcast(ctx context.Context, render func(context.Context, model.User, time.Time) (string, error)) error {
	users, err := b.svc.Users.List(ctx)
	if err != nil {
		return err
	}
	now := b.now()
	for _, user := range users {
		if user.TelegramChatID == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := render(ctx, user, now)
		if err != nil {
			log.Error().Err(err).Uint("user_id", user.ID).Msg("build message")
			continue
		}
		if text == "" {
			continue
		}
		if err := b.sendText(*user.TelegramChatID, text); err != nil {
			log.Error().Err(err).Uint("user_id", user.ID).Msg("send message")
		}
	}
	return nil
}

// linkedUser returns the user bound to chatID, or asks the chat to link
// itself and returns nil.
func (b *Bot) linkedUser(ctx context.Context, chatID int64) (*model.User, error) {
	user, err := b.svc.Users.ByChat(ctx, chatID)
	if errors.Is(err, service.ErrUserNotFound) {
		return nil, b.sendText(chatID, "Link this chat first: /iam &lt;name&gt;")
	}
	return user, err
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

func priorityIcon(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "🔴"
	case model.PriorityLow:
		return "🟢"
	default:
		return "🟡"
	}
}

func shortTitle(title string, maxLen int) string {
	runes := []rune(strings.TrimSpace(title))
	if len(runes) <= maxLen {
		return string(runes)
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}
