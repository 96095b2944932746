// Package recorder persists chat messages and subscription notices to a
// SQLite database. It is a plain event subscriber: the protocol engine does
// not depend on it.
package recorder

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tmipkg/tmi"
)

// ChatMessage is one recorded channel message.
type ChatMessage struct {
	ID        uint   `gorm:"primaryKey"`
	Channel   string `gorm:"index"`
	Username  string
	Text      string
	CreatedAt time.Time
}

// Subscription is one recorded subscription notice.
type Subscription struct {
	ID        uint   `gorm:"primaryKey"`
	Channel   string `gorm:"index"`
	Username  string
	CreatedAt time.Time
}

// Recorder writes chat events to a database.
type Recorder struct {
	db *gorm.DB
}

// Open opens (or creates) the database at dsn and migrates the schema.
func Open(dsn string) (*Recorder, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("recorder: open %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&ChatMessage{}, &Subscription{}); err != nil {
		return nil, fmt.Errorf("recorder: migrate: %w", err)
	}
	return &Recorder{db: db}, nil
}

// Attach subscribes the recorder to the client's message and subscription
// events.
func (r *Recorder) Attach(c *tmi.Client) {
	c.OnMessage(func(ev tmi.MessageEvent) error {
		return r.db.Create(&ChatMessage{
			Channel:  ev.Channel.Name(),
			Username: ev.Username,
			Text:     ev.Text,
		}).Error
	})
	c.OnUserSubscribed(func(ev tmi.SubscriptionEvent) error {
		return r.db.Create(&Subscription{
			Channel:  ev.Channel.Name(),
			Username: ev.Username,
		}).Error
	})
}

// Messages returns the recorded messages for a channel, oldest first.
func (r *Recorder) Messages(channel string) ([]ChatMessage, error) {
	var messages []ChatMessage
	err := r.db.Where("channel = ?", channel).Order("id").Find(&messages).Error
	return messages, err
}

// Subscriptions returns the recorded subscription notices for a channel,
// oldest first.
func (r *Recorder) Subscriptions(channel string) ([]Subscription, error) {
	var subs []Subscription
	err := r.db.Where("channel = ?", channel).Order("id").Find(&subs).Error
	return subs, err
}
