package challenge

import "github.com/rs/zerolog/log"

// Notifier surfaces non-blocking, user-facing notices when a remote
// operation degrades. Implementations must not block the caller and must
// not treat a notice as fatal.
type Notifier interface {
	Notify(userID int64, message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(userID int64, message string)

// Notify calls f.
func (f NotifierFunc) Notify(userID int64, message string) {
	f(userID, message)
}

// LogNotifier writes notices to the log. It is the fallback when no
// interactive surface is attached.
type LogNotifier struct{}

// Notify logs the notice.
func (LogNotifier) Notify(userID int64, message string) {
	log.Warn().Int64("user_id", userID).Str("notice", message).Msg("User notification")
}
