package constants

// AchievementLevel is the display tier of an achievement
type AchievementLevel string

const (
	LevelBronze AchievementLevel = "bronze"
	LevelSilver AchievementLevel = "silver"
	LevelGold   AchievementLevel = "gold"

	// Achievement catalog ids
	AchievementFirstHabit       = "first-habit"
	AchievementFirstCheck       = "first-check"
	AchievementModeOn           = "mode-on"
	AchievementNoPause          = "no-pause"
	AchievementDiscipline       = "discipline"
	AchievementRightRhythm      = "right-rhythm"
	AchievementUnbreakableFocus = "unbreakable-focus"
	AchievementUnstoppable      = "unstoppable"
	AchievementNewIdentity      = "new-identity"
	AchievementLegend           = "legend"

	// ProgressUnlocked is the progress value that marks an achievement as unlocked
	ProgressUnlocked = 100
)
