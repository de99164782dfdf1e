package service

// Achievement is a badge derived purely from a profile's counters.
type Achievement struct {
	ID          int
	Title       string
	Description string
	Requirement int
	Progress    int
	Unlocked    bool
}

// Achievements computes the badge set for the given totals. It is a
// pure function; nothing is persisted.
func Achievements(totalChallenges, streak int) []Achievement {
	defs := []struct {
		id          int
		title       string
		description string
		requirement int
		value       int
	}{
		{1, "First Steps", "Complete your first challenge", 1, totalChallenges},
		{2, "Hot Streak", "Maintain a 7-day streak", 7, streak},
		{3, "Challenge Master", "Complete 10 challenges", 10, totalChallenges},
		{4, "Social Butterfly", "Complete 25 challenges", 25, totalChallenges},
		{5, "Dedication", "Maintain a 30-day streak", 30, streak},
		{6, "Century Club", "Complete 100 challenges", 100, totalChallenges},
	}

	out := make([]Achievement, 0, len(defs))
	for _, d := range defs {
		progress := d.value
		if progress > d.requirement {
			progress = d.requirement
		}
		out = append(out, Achievement{
			ID:          d.id,
			Title:       d.title,
			Description: d.description,
			Requirement: d.requirement,
			Progress:    progress,
			Unlocked:    d.value >= d.requirement,
		})
	}
	return out
}

// StreakEmoji returns the tier emoji for a streak length.
func StreakEmoji(streak int) string {
	switch {
	case streak >= 30:
		return "🔥"
	case streak >= 14:
		return "🚀"
	case streak >= 7:
		return "⭐"
	case streak >= 3:
		return "💪"
	default:
		return "🌱"
	}
}

// StreakMessage returns the tier message for a streak length.
func StreakMessage(streak int) string {
	switch {
	case streak >= 30:
		return "Legendary streak!"
	case streak >= 14:
		return "Amazing progress!"
	case streak >= 7:
		return "Great job!"
	case streak >= 3:
		return "Building momentum!"
	default:
		return "Getting started!"
	}
}
