package store

import (
	"time"
)

//Every row is scoped to the guild it was recorded in

type Scrim struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GuildID     string    `gorm:"index;not null" json:"guildID"`
	Date        string    `gorm:"not null" json:"date"` //YYYY-MM-DD
	Time        string    `gorm:"not null" json:"time"` //HH:MM, 24 hour clock
	Description string    `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TeamMatch struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GuildID    string    `gorm:"index;not null" json:"guildID"`
	Kills      int       `json:"kills"`
	Damage     int       `json:"damage"`
	Placement  int       `gorm:"not null" json:"placement"`
	RecordedBy string    `json:"recordedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

type PlayerMatch struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GuildID    string    `gorm:"index:idx_player_match_user;not null" json:"guildID"`
	UserID     string    `gorm:"index:idx_player_match_user;not null" json:"userID"`
	Kills      int       `json:"kills"`
	Damage     int       `json:"damage"`
	Placement  int       `gorm:"not null" json:"placement"`
	RecordedBy string    `json:"recordedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Warning struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GuildID     string    `gorm:"index:idx_warning_user;not null" json:"guildID"`
	UserID      string    `gorm:"index:idx_warning_user;not null" json:"userID"`
	Reason      string    `json:"reason"`
	ModeratorID string    `json:"moderatorID"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ModLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GuildID   string    `gorm:"index;not null" json:"guildID"`
	Action    string    `gorm:"not null" json:"action"`
	CreatedAt time.Time `json:"createdAt"`
}

//Stats aggregates a set of matches, wins being first place finishes
type Stats struct {
	Matches       int64   `json:"matches"`
	Kills         int64   `json:"kills"`
	Damage        int64   `json:"damage"`
	Wins          int64   `json:"wins"`
	BestPlacement int     `json:"bestPlacement"`
	AvgKills      float64 `json:"avgKills"`
	AvgDamage     float64 `json:"avgDamage"`
	AvgPlacement  float64 `json:"avgPlacement"`
}

type LeaderboardEntry struct {
	UserID  string `json:"userID"`
	Matches int64  `json:"matches"`
	Kills   int64  `json:"kills"`
	Damage  int64  `json:"damage"`
	Wins    int64  `json:"wins"`
}
