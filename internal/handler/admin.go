package handler

import (
	"context"

	tele "gopkg.in/telebot.v3"

	"socialstreak/internal/challenge"
)

// AdminHandler handles admin commands. All handlers here are registered
// behind the admin middleware.
type AdminHandler struct {
	engine *challenge.Engine
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(engine *challenge.Engine) *AdminHandler {
	return &AdminHandler{engine: engine}
}

// HandleReset handles the /admin_reset command.
// Format: /admin_reset <user id>, or reply to the user's message.
// Clears the user's completion flag for today and zeroes their streak.
// This is the only path that moves a completed day back to incomplete.
func (h *AdminHandler) HandleReset(c tele.Context) error {
	ctx := context.Background()

	targetID, err := targetFromContext(c)
	if err != nil {
		return c.Reply("❌ Usage: /admin_reset <user id>, or reply to their message")
	}

	if err := h.engine.Reset(ctx, targetID); err != nil {
		return c.Reply("❌ Reset failed, please try again later")
	}

	return c.Reply("♻️ User's day and streak were reset")
}
