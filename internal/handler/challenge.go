// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v3"

	"socialstreak/internal/challenge"
	"socialstreak/internal/service"
)

// ChallengeHandler handles daily-challenge commands.
type ChallengeHandler struct {
	engine         *challenge.Engine
	profileService *service.ProfileService
}

// NewChallengeHandler creates a new ChallengeHandler.
func NewChallengeHandler(engine *challenge.Engine, profileService *service.ProfileService) *ChallengeHandler {
	return &ChallengeHandler{
		engine:         engine,
		profileService: profileService,
	}
}

// HandleChallenge handles the /challenge command.
// Shows today's challenge, completion state, streak, and the countdown
// to the next challenge.
func (h *ChallengeHandler) HandleChallenge(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	if _, _, err := h.profileService.EnsureProfile(ctx, sender.ID, senderName(sender)); err != nil {
		return c.Reply("❌ Couldn't load your profile, please try again later")
	}

	today := h.engine.Today(ctx, sender.ID)
	ch := today.Challenge

	msg := "📅 Today's Challenge\n"
	msg += "━━━━━━━━━━━━━━━\n"
	msg += fmt.Sprintf("%s %s\n%s\n\n", ch.Emoji, ch.Title, ch.Description)
	msg += fmt.Sprintf("🏅 Reward: %d points\n", ch.Points)
	msg += fmt.Sprintf("%s %d day streak — %s\n", service.StreakEmoji(today.Streak), today.Streak, service.StreakMessage(today.Streak))

	if today.Completed {
		msg += "\n✅ Completed! Come back tomorrow.\n"
	} else {
		msg += "\n▶️ /complete when you're done!\n"
	}
	msg += fmt.Sprintf("⏳ %s until next challenge", today.Countdown)

	return c.Reply(msg)
}

// HandleComplete handles the /complete command.
// A second call within the same day is rejected without side effects.
func (h *ChallengeHandler) HandleComplete(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	if _, _, err := h.profileService.EnsureProfile(ctx, sender.ID, senderName(sender)); err != nil {
		return c.Reply("❌ Couldn't load your profile, please try again later")
	}

	result, err := h.engine.Complete(ctx, sender.ID)
	if err != nil {
		if errors.Is(err, challenge.ErrAlreadyCompleted) {
			return c.Reply("✅ Already completed today — see you after midnight!")
		}
		return c.Reply("❌ Couldn't record your completion, please try again later")
	}

	return c.Reply(fmt.Sprintf(
		"🎉 Completed! +%d points\n%s %d day streak — %s",
		result.Points,
		service.StreakEmoji(result.Streak), result.Streak, service.StreakMessage(result.Streak),
	))
}

// HandleRegenerate handles the /regenerate command.
// Swaps today's challenge for a random one and clears today's
// completion, so the new challenge can be completed.
func (h *ChallengeHandler) HandleRegenerate(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	ch, err := h.engine.Regenerate(sender.ID)
	if err != nil {
		return c.Reply("❌ Couldn't regenerate your challenge, please try again later")
	}

	return c.Reply(fmt.Sprintf(
		"🔄 New challenge!\n%s %s\n%s\n\n🏅 Reward: %d points",
		ch.Emoji, ch.Title, ch.Description, ch.Points,
	))
}

// senderName picks a display name for a Telegram sender.
func senderName(sender *tele.User) string {
	if sender.Username != "" {
		return sender.Username
	}
	return sender.FirstName
}
