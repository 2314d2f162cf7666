package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Clinet/squadbot/utils/logger"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var Log *logger.Logger

var (
	ErrNotFound = errors.New("store: record not found")
	ErrInvalid  = errors.New("store: invalid record")
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

const statsSelect = "COUNT(*) AS matches, " +
	"COALESCE(SUM(kills), 0) AS kills, " +
	"COALESCE(SUM(damage), 0) AS damage, " +
	"COALESCE(SUM(CASE WHEN placement = 1 THEN 1 ELSE 0 END), 0) AS wins, " +
	"COALESCE(MIN(placement), 0) AS best_placement, " +
	"COALESCE(AVG(kills), 0) AS avg_kills, " +
	"COALESCE(AVG(damage), 0) AS avg_damage, " +
	"COALESCE(AVG(placement), 0) AS avg_placement"

//Store keeps scrims, match results, warnings and the moderation log in a single SQLite file
type Store struct {
	db *gorm.DB
}

//gormWriter hands gorm's own logging to ours at debug level
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	if Log != nil {
		Log.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
	}
}

//Open creates the database file if needed and migrates every table
func Open(path string) (*Store, error) {
	if Log != nil {
		Log.Trace("--- store.Open(", path, ") ---")
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	logLevel := gormlogger.Warn
	if Log != nil && Log.Verbosity == 2 {
		logLevel = gormlogger.Info
	}
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(5000)"), &gorm.Config{
		Logger: gormlogger.New(gormWriter{}, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Scrim{}, &TeamMatch{}, &PlayerMatch{}, &Warning{}, &ModLog{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalid, reason)
}

func validateMatch(kills, damage, placement int) error {
	if kills < 0 {
		return invalid("kills can't be negative")
	}
	if damage < 0 {
		return invalid("damage can't be negative")
	}
	if placement < 1 {
		return invalid("placement must be 1 or higher")
	}
	return nil
}

//AddScrim schedules a scrim, normalizing the date and time
func (s *Store) AddScrim(scrim *Scrim) error {
	date, err := time.Parse(DateLayout, scrim.Date)
	if err != nil {
		return invalid("date must be YYYY-MM-DD")
	}
	clock, err := time.Parse(TimeLayout, scrim.Time)
	if err != nil {
		return invalid("time must be HH:MM")
	}
	if strings.TrimSpace(scrim.Description) == "" {
		return invalid("description can't be empty")
	}
	scrim.Date = date.Format(DateLayout)
	scrim.Time = clock.Format(TimeLayout)
	return s.db.Create(scrim).Error
}

//ListScrims returns every scrim in the guild in chronological order
func (s *Store) ListScrims(guildID string) ([]*Scrim, error) {
	var scrims []*Scrim
	err := s.db.Where("guild_id = ?", guildID).Order("date, time, id").Find(&scrims).Error
	return scrims, err
}

func (s *Store) DeleteScrim(guildID string, id uint) error {
	res := s.db.Where("guild_id = ? AND id = ?", guildID, id).Delete(&Scrim{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) AddTeamMatch(match *TeamMatch) error {
	if err := validateMatch(match.Kills, match.Damage, match.Placement); err != nil {
		return err
	}
	return s.db.Create(match).Error
}

func (s *Store) TeamStats(guildID string) (*Stats, error) {
	stats := &Stats{}
	err := s.db.Model(&TeamMatch{}).Select(statsSelect).Where("guild_id = ?", guildID).Scan(stats).Error
	return stats, err
}

func (s *Store) AddPlayerMatch(match *PlayerMatch) error {
	if match.UserID == "" {
		return invalid("user can't be empty")
	}
	if err := validateMatch(match.Kills, match.Damage, match.Placement); err != nil {
		return err
	}
	return s.db.Create(match).Error
}

func (s *Store) PlayerStats(guildID, userID string) (*Stats, error) {
	stats := &Stats{}
	err := s.db.Model(&PlayerMatch{}).Select(statsSelect).Where("guild_id = ? AND user_id = ?", guildID, userID).Scan(stats).Error
	return stats, err
}

//Leaderboard ranks players by total kills, then total damage
func (s *Store) Leaderboard(guildID string, limit int) ([]*LeaderboardEntry, error) {
	var entries []*LeaderboardEntry
	query := s.db.Model(&PlayerMatch{}).
		Select("user_id, COUNT(*) AS matches, SUM(kills) AS kills, SUM(damage) AS damage, "+
			"SUM(CASE WHEN placement = 1 THEN 1 ELSE 0 END) AS wins").
		Where("guild_id = ?", guildID).
		Group("user_id").
		Order("kills DESC, damage DESC, user_id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Scan(&entries).Error
	return entries, err
}

func (s *Store) AddWarning(warning *Warning) error {
	if warning.UserID == "" {
		return invalid("user can't be empty")
	}
	return s.db.Create(warning).Error
}

//Warnings returns a user's warnings, oldest first
func (s *Store) Warnings(guildID, userID string) ([]*Warning, error) {
	var warnings []*Warning
	err := s.db.Where("guild_id = ? AND user_id = ?", guildID, userID).Order("created_at, id").Find(&warnings).Error
	return warnings, err
}

func (s *Store) CountWarnings(guildID, userID string) (int64, error) {
	var count int64
	err := s.db.Model(&Warning{}).Where("guild_id = ? AND user_id = ?", guildID, userID).Count(&count).Error
	return count, err
}

//ClearWarnings removes every warning of a user and returns how many there were
func (s *Store) ClearWarnings(guildID, userID string) (int64, error) {
	res := s.db.Where("guild_id = ? AND user_id = ?", guildID, userID).Delete(&Warning{})
	return res.RowsAffected, res.Error
}

//LogAction appends a line to the guild's moderation log
func (s *Store) LogAction(guildID, action string) error {
	if strings.TrimSpace(action) == "" {
		return invalid("action can't be empty")
	}
	return s.db.Create(&ModLog{GuildID: guildID, Action: action}).Error
}

//ModLog returns the most recent moderation log lines, newest first
func (s *Store) ModLog(guildID string, limit int) ([]*ModLog, error) {
	var logs []*ModLog
	query := s.db.Where("guild_id = ?", guildID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&logs).Error
	return logs, err
}

//InvalidReason returns the human readable part of a validation error
func InvalidReason(err error) string {
	return strings.TrimPrefix(err.Error(), ErrInvalid.Error()+": ")
}
