package handler

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"socialstreak/internal/challenge"
	"socialstreak/internal/service"
)

// ProfileHandler handles profile-related commands.
type ProfileHandler struct {
	profileService *service.ProfileService
	engine         *challenge.Engine
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService *service.ProfileService, engine *challenge.Engine) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		engine:         engine,
	}
}

// HandleStart handles the /start command.
// Creates a profile on first contact and lists available commands.
func (h *ProfileHandler) HandleStart(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	_, created, err := h.profileService.EnsureProfile(ctx, sender.ID, senderName(sender))
	if err != nil {
		return c.Reply("❌ Couldn't create your profile, please try again later")
	}

	if created {
		return c.Reply(fmt.Sprintf(
			"🎉 Welcome to SocialStreak, @%s!\n\n"+
				"Complete one challenge every day to build your streak.\n\n"+
				"Commands:\n"+
				"/challenge - today's challenge\n"+
				"/complete - mark it done\n"+
				"/regenerate - swap today's challenge\n"+
				"/streak - your streak\n"+
				"/leaderboard - friends ranking\n"+
				"/badges - achievements\n"+
				"/friends, /requests, /add, /find - social",
			senderName(sender),
		))
	}

	return c.Reply(fmt.Sprintf("👋 Welcome back, @%s! /challenge to see today's task.", senderName(sender)))
}

// HandleStreak handles the /streak command.
// Fetch-reconciles against the remote store; a remote failure shows the
// last known value instead of an error.
func (h *ProfileHandler) HandleStreak(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	if _, _, err := h.profileService.EnsureProfile(ctx, sender.ID, senderName(sender)); err != nil {
		return c.Reply("❌ Couldn't load your profile, please try again later")
	}

	streak := h.engine.Streak(ctx, sender.ID)
	return c.Reply(fmt.Sprintf(
		"%s %d day streak\n%s",
		service.StreakEmoji(streak), streak, service.StreakMessage(streak),
	))
}

// HandleProfile handles the /profile command.
func (h *ProfileHandler) HandleProfile(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	p, _, err := h.profileService.EnsureProfile(ctx, sender.ID, senderName(sender))
	if err != nil {
		return c.Reply("❌ Couldn't load your profile, please try again later")
	}

	name := p.Username
	if p.FullName != nil && *p.FullName != "" {
		name = *p.FullName
	}

	return c.Reply(fmt.Sprintf(
		"👤 %s\n"+
			"━━━━━━━━━━━━━━━\n"+
			"%s Streak: %d days\n"+
			"🏅 Points: %d\n"+
			"🎯 Challenges completed: %d",
		name, service.StreakEmoji(p.Streak), p.Streak, p.Points, p.TotalChallenges,
	))
}

// HandleSetName handles the /setname command.
// Format: /setname New Display Name
func (h *ProfileHandler) HandleSetName(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	name := strings.TrimSpace(strings.Join(c.Args(), " "))
	if name == "" {
		return c.Reply("❌ Usage: /setname Your Name")
	}

	if _, _, err := h.profileService.EnsureProfile(ctx, sender.ID, senderName(sender)); err != nil {
		return c.Reply("❌ Couldn't load your profile, please try again later")
	}

	if err := h.profileService.SetFullName(ctx, sender.ID, name); err != nil {
		return c.Reply("❌ Couldn't update your name, please try again later")
	}

	return c.Reply(fmt.Sprintf("✅ Name updated to %s", name))
}
