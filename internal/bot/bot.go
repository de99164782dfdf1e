// Package bot provides the Telegram bot initialization and handler
// registration.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"socialstreak/internal/challenge"
	"socialstreak/internal/config"
	"socialstreak/internal/handler"
	"socialstreak/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot    *tele.Bot
	cfg    *config.Config
	engine *challenge.Engine

	challengeHandler   *handler.ChallengeHandler
	profileHandler     *handler.ProfileHandler
	socialHandler      *handler.SocialHandler
	leaderboardHandler *handler.LeaderboardHandler
	adminHandler       *handler.AdminHandler
}

// Dependencies holds everything the bot handlers need.
type Dependencies struct {
	Config             *config.Config
	Engine             *challenge.Engine
	ProfileService     *service.ProfileService
	SocialService      *service.SocialService
	LeaderboardService *service.LeaderboardService
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:    teleBot,
		cfg:    deps.Config,
		engine: deps.Engine,
	}

	b.challengeHandler = handler.NewChallengeHandler(deps.Engine, deps.ProfileService)
	b.profileHandler = handler.NewProfileHandler(deps.ProfileService, deps.Engine)
	b.socialHandler = handler.NewSocialHandler(deps.SocialService, deps.ProfileService)
	b.leaderboardHandler = handler.NewLeaderboardHandler(deps.LeaderboardService, deps.ProfileService)
	b.adminHandler = handler.NewAdminHandler(deps.Engine)

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command handlers.
func (b *Bot) registerHandlers() {
	// Profile
	b.bot.Handle("/start", b.profileHandler.HandleStart)
	b.bot.Handle("/profile", b.profileHandler.HandleProfile)
	b.bot.Handle("/setname", b.profileHandler.HandleSetName)
	b.bot.Handle("/streak", b.profileHandler.HandleStreak)

	// Daily challenge
	b.bot.Handle("/challenge", b.challengeHandler.HandleChallenge)
	b.bot.Handle("/complete", b.challengeHandler.HandleComplete)
	b.bot.Handle("/regenerate", b.challengeHandler.HandleRegenerate)

	// Social
	b.bot.Handle("/friends", b.socialHandler.HandleFriends)
	b.bot.Handle("/requests", b.socialHandler.HandleRequests)
	b.bot.Handle("/add", b.socialHandler.HandleAdd)
	b.bot.Handle("/accept", b.socialHandler.HandleAccept)
	b.bot.Handle("/reject", b.socialHandler.HandleReject)
	b.bot.Handle("/find", b.socialHandler.HandleFind)

	// Leaderboard and achievements
	b.bot.Handle("/leaderboard", b.leaderboardHandler.HandleLeaderboard)
	b.bot.Handle("/badges", b.leaderboardHandler.HandleBadges)

	// Admin commands (with admin middleware)
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/admin_reset", b.adminHandler.HandleReset)
}

// Notifier returns a challenge.Notifier that delivers non-blocking
// notices as direct messages. Send failures are logged and dropped.
func (b *Bot) Notifier() challenge.NotifierFunc {
	return func(userID int64, message string) {
		go func() {
			_, err := b.bot.Send(&tele.User{ID: userID}, "⚠️ "+message)
			if err != nil {
				log.Debug().Err(err).Int64("user_id", userID).Msg("Notice delivery failed")
			}
		}()
	}
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
