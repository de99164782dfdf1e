package handler

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v3"

	"socialstreak/internal/service"
)

// LeaderboardHandler handles leaderboard and achievement commands.
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
	profileService     *service.ProfileService
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService, profileService *service.ProfileService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		profileService:     profileService,
	}
}

// HandleLeaderboard handles the /leaderboard command.
// Ranks the user and their friends by points, then streak.
func (h *LeaderboardHandler) HandleLeaderboard(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	if _, _, err := h.profileService.EnsureProfile(ctx, sender.ID, senderName(sender)); err != nil {
		return c.Reply("❌ Couldn't load your profile, please try again later")
	}

	entries, err := h.leaderboardService.ForUser(ctx, sender.ID, 10)
	if err != nil {
		return c.Reply("❌ Couldn't load the leaderboard, please try again later")
	}

	msg := "🏆 Friend Leaderboard\n━━━━━━━━━━━━━━━\n"
	medals := []string{"🥇", "🥈", "🥉"}
	for i, e := range entries {
		rank := fmt.Sprintf("%d.", e.Rank)
		if i < 3 {
			rank = medals[i]
		}

		name := "@" + e.Username
		if e.UserID == sender.ID {
			name = "You"
		}

		msg += fmt.Sprintf("%s %s — 🔥 %d days • %d pts\n", rank, name, e.Streak, e.Points)
	}

	return c.Reply(msg)
}

// HandleBadges handles the /badges command.
// Shows achievements derived from the user's counters.
func (h *LeaderboardHandler) HandleBadges(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	p, _, err := h.profileService.EnsureProfile(ctx, sender.ID, senderName(sender))
	if err != nil {
		return c.Reply("❌ Couldn't load your profile, please try again later")
	}

	msg := "🎖 Achievements\n━━━━━━━━━━━━━━━\n"
	for _, a := range service.Achievements(p.TotalChallenges, p.Streak) {
		mark := "🔒"
		if a.Unlocked {
			mark = "✅"
		}
		msg += fmt.Sprintf("%s %s — %s (%d/%d)\n", mark, a.Title, a.Description, a.Progress, a.Requirement)
	}

	return c.Reply(msg)
}
