package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v3"

	"socialstreak/internal/repository"
	"socialstreak/internal/service"
)

// SocialHandler handles friend request and friends list commands.
type SocialHandler struct {
	socialService  *service.SocialService
	profileService *service.ProfileService
}

// NewSocialHandler creates a new SocialHandler.
func NewSocialHandler(socialService *service.SocialService, profileService *service.ProfileService) *SocialHandler {
	return &SocialHandler{
		socialService:  socialService,
		profileService: profileService,
	}
}

// HandleAdd handles the /add command.
// Format: /add <user id>, or reply to a user's message with /add.
func (h *SocialHandler) HandleAdd(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	targetID, err := targetFromContext(c)
	if err != nil {
		return c.Reply("❌ Usage: /add <user id>, or reply to their message with /add")
	}

	if _, _, err := h.profileService.EnsureProfile(ctx, sender.ID, senderName(sender)); err != nil {
		return c.Reply("❌ Couldn't load your profile, please try again later")
	}

	_, err = h.socialService.SendRequest(ctx, sender.ID, targetID)
	switch {
	case err == nil:
		return c.Reply("📨 Friend request sent!")
	case errors.Is(err, service.ErrSelfRequest):
		return c.Reply("❌ You can't add yourself")
	case errors.Is(err, repository.ErrProfileNotFound):
		return c.Reply("❌ That user hasn't joined SocialStreak yet")
	case errors.Is(err, repository.ErrRequestExists):
		return c.Reply("⏳ A request between you two is already pending")
	case errors.Is(err, repository.ErrAlreadyFriends):
		return c.Reply("✅ You're already friends")
	default:
		return c.Reply("❌ Couldn't send the request, please try again later")
	}
}

// HandleRequests handles the /requests command.
// Lists pending requests with their IDs for /accept and /reject.
func (h *SocialHandler) HandleRequests(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	requests, err := h.socialService.PendingRequests(ctx, sender.ID)
	if err != nil {
		return c.Reply("❌ Couldn't load your requests, please try again later")
	}

	if len(requests) == 0 {
		return c.Reply("📭 No pending friend requests")
	}

	msg := "📬 Pending friend requests\n━━━━━━━━━━━━━━━\n"
	for _, req := range requests {
		msg += fmt.Sprintf("#%d from @%s\n", req.ID, req.SenderUsername)
	}
	msg += "\n/accept <id> or /reject <id>"

	return c.Reply(msg)
}

// HandleAccept handles the /accept command.
// Format: /accept <request id>
func (h *SocialHandler) HandleAccept(c tele.Context) error {
	return h.resolveRequest(c, true)
}

// HandleReject handles the /reject command.
// Format: /reject <request id>
func (h *SocialHandler) HandleReject(c tele.Context) error {
	return h.resolveRequest(c, false)
}

func (h *SocialHandler) resolveRequest(c tele.Context, accept bool) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ Usage: /accept <id> or /reject <id> — see /requests")
	}
	requestID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Reply("❌ Request ID must be a number — see /requests")
	}

	if accept {
		err = h.socialService.AcceptRequest(ctx, requestID, sender.ID)
	} else {
		err = h.socialService.RejectRequest(ctx, requestID, sender.ID)
	}

	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return c.Reply("❌ No such pending request — see /requests")
		}
		return c.Reply("❌ Couldn't update the request, please try again later")
	}

	if accept {
		return c.Reply("🤝 Friend request accepted!")
	}
	return c.Reply("🚫 Friend request rejected")
}

// HandleFriends handles the /friends command.
func (h *SocialHandler) HandleFriends(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	friends, err := h.socialService.Friends(ctx, sender.ID, 20)
	if err != nil {
		return c.Reply("❌ Couldn't load your friends, please try again later")
	}

	if len(friends) == 0 {
		return c.Reply("👥 No friends yet — /find someone and /add them!")
	}

	msg := "👥 Your friends\n━━━━━━━━━━━━━━━\n"
	for _, f := range friends {
		msg += fmt.Sprintf("@%s — %s %d days, %d pts\n", f.Username, service.StreakEmoji(f.Streak), f.Streak, f.Points)
	}

	return c.Reply(msg)
}

// HandleFind handles the /find command.
// Format: /find <username fragment>
func (h *SocialHandler) HandleFind(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ Usage: /find <username>")
	}

	results, err := h.socialService.Search(ctx, sender.ID, args[0], 10)
	if err != nil {
		return c.Reply("❌ Search failed, please try again later")
	}

	if len(results) == 0 {
		return c.Reply("🔍 Nobody found by that name")
	}

	msg := "🔍 Search results\n━━━━━━━━━━━━━━━\n"
	for _, p := range results {
		msg += fmt.Sprintf("@%s (id %d) — %s %d days\n", p.Username, p.UserID, service.StreakEmoji(p.Streak), p.Streak)
	}
	msg += "\n/add <id> to send a request"

	return c.Reply(msg)
}

// targetFromContext resolves the target user from a replied-to message
// or the first numeric argument.
func targetFromContext(c tele.Context) (int64, error) {
	if msg := c.Message(); msg != nil && msg.ReplyTo != nil && msg.ReplyTo.Sender != nil {
		return msg.ReplyTo.Sender.ID, nil
	}

	args := c.Args()
	if len(args) < 1 {
		return 0, fmt.Errorf("no target given")
	}
	return strconv.ParseInt(args[0], 10, 64)
}
