package repository

import (
	"errors"
	"fmt"

	"PalmFM/logger"
	"PalmFM/model"

	"gorm.io/gorm"
)

// SettingsRepository defines the interface for the single-row settings record.
type SettingsRepository interface {
	// GetSettings reads the settings row, creating it with defaults if absent.
	GetSettings() (model.Settings, error)
	UpdateSettings(settings model.Settings) error
	UpdateShuffleEnabled(enabled bool) error
	UpdateRepeatMode(mode int) error
	UpdateSleepTimer(minutes int) error

	Watch() (string, <-chan model.Settings)
	Unwatch(id string)
}

// mysqlSettingsRepository implements SettingsRepository on GORM/MySQL.
type mysqlSettingsRepository struct {
	db        *gorm.DB
	snapshots *broadcaster[model.Settings]
}

// NewMySQLSettingsRepository creates a new settings repository on the given handle.
func NewMySQLSettingsRepository(gdb *gorm.DB) SettingsRepository {
	return &mysqlSettingsRepository{
		db:        gdb,
		snapshots: newBroadcaster[model.Settings](),
	}
}

// GetSettings reads the row with the constant id, inserting defaults on first use.
func (r *mysqlSettingsRepository) GetSettings() (model.Settings, error) {
	var settings model.Settings
	err := r.db.First(&settings, "id = ?", model.SettingsID).Error
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Settings{}, fmt.Errorf("failed to query settings: %w", err)
	}

	settings = model.DefaultSettings()
	if err := r.db.Create(&settings).Error; err != nil {
		return model.Settings{}, fmt.Errorf("failed to create default settings: %w", err)
	}
	logger.Info("Settings row created with defaults")
	return settings, nil
}

// UpdateSettings replaces the whole record.
func (r *mysqlSettingsRepository) UpdateSettings(settings model.Settings) error {
	settings.ID = model.SettingsID
	if err := r.db.Save(&settings).Error; err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	r.snapshots.Publish(settings)
	return nil
}

// UpdateShuffleEnabled writes the shuffle flag only.
func (r *mysqlSettingsRepository) UpdateShuffleEnabled(enabled bool) error {
	return r.updateField("shuffle_enabled", enabled)
}

// UpdateRepeatMode writes the repeat mode only.
func (r *mysqlSettingsRepository) UpdateRepeatMode(mode int) error {
	return r.updateField("repeat_mode", mode)
}

// UpdateSleepTimer writes the sleep-timer minutes only.
func (r *mysqlSettingsRepository) UpdateSleepTimer(minutes int) error {
	return r.updateField("sleep_timer_minutes", minutes)
}

func (r *mysqlSettingsRepository) updateField(column string, value interface{}) error {
	res := r.db.Model(&model.Settings{}).Where("id = ?", model.SettingsID).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("failed to update settings field %s: %w", column, res.Error)
	}

	settings, err := r.GetSettings()
	if err != nil {
		logger.Error("Failed to read settings snapshot for watchers", logger.ErrorField(err))
		return nil
	}
	r.snapshots.Publish(settings)
	return nil
}

// Watch subscribes to settings snapshots.
func (r *mysqlSettingsRepository) Watch() (string, <-chan model.Settings) {
	return r.snapshots.Subscribe()
}

// Unwatch removes a subscription.
func (r *mysqlSettingsRepository) Unwatch(id string) {
	r.snapshots.Unsubscribe(id)
}
