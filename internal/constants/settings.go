package constants

const (
	// Config keys
	SettingDatabase            = "database"
	SettingTimezone            = "timezone"
	SettingDebug               = "debug"
	SettingHabitMinGoalDays    = "habits.min_goal_days"
	SettingAchievementsFreeze  = "achievements.freeze_unlocked"
	SettingWatchSchedule       = "watch.schedule"
	SettingWatchConcurrency    = "watch.concurrency"
	SettingNotifyWebhookURL    = "notify.webhook_url"
	SettingNotifySecret        = "notify.secret"
	SettingNotifyOnAchievement = "notify.on_achievement"
	SettingNotifyOnBrokenHabit = "notify.on_broken_habit"

	// Default values
	DefaultTimezone            = "Local" // Use system local timezone by default
	DefaultHabitMinGoalDays    = 21
	DefaultTaskGoal            = 1
	DefaultAchievementsFreeze  = false
	DefaultWatchSchedule       = "5 0 * * *" // five past midnight, every day
	DefaultWatchConcurrency    = 4
	DefaultNotifyOnAchievement = true
	DefaultNotifyOnBrokenHabit = false
	DefaultHabitIcon           = "✅"
	DefaultColor               = "primary"
)
