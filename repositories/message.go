package repositories

import (
	"artist-hub/domain"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IMessageRepository interface {
	StoreMessage(message domain.Message) error
	GetMessages(filter domain.MessageFilter) ([]domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// DiskMessage is the stored form of a direct message.
type DiskMessage struct {
	ID             string    `json:"id"`
	SenderID       string    `json:"sender_id"`
	ReceiverID     string    `json:"receiver_id"`
	Body           string    `json:"body"`
	At             time.Time `json:"at"`
	SenderUsername string    `json:"sender_username,omitempty"`
	SenderPicture  string    `json:"sender_picture,omitempty"`
}

// StoreMessage writes the message once under each participant.
// Keys are "msg:{participant}:{timestamp_padded}:{id}" so a prefix scan
// returns one user's messages in chronological order, and the id breaks
// ties between messages of the same nanosecond.
func (m MessageRepository) StoreMessage(message domain.Message) error {
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		for _, participant := range []domain.UserID{message.SenderID, message.ReceiverID} {
			if err := txn.Set(messageKey(participant, message.Timestamp, message.ID), bytes); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetMessages scans the participant's messages newest first.
// Before is inclusive; Limit stops the scan once reached.
func (m MessageRepository) GetMessages(filter domain.MessageFilter) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", filter.Participant))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// '~' sorts after every id character, so the seek lands on the last key of that nanosecond
		seekKey := append(prefix, []byte("9999999999999999999:~")...)
		if filter.Before != nil {
			seekKey = []byte(fmt.Sprintf("msg:%s:%019d:~", filter.Participant, filter.Before.UnixNano()))
		}

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if filter.Limit > 0 && len(messages) == filter.Limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", filter.Limit))
				break
			}
			var disk DiskMessage
			if err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &disk)
			}); err != nil {
				return err
			}
			message := toMessage(disk)
			if filter.Matches(message) {
				messages = append(messages, message)
			}
		}
		return nil
	})
	return messages, err
}

func messageKey(participant domain.UserID, at time.Time, id string) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", participant, at.UnixNano(), id))
}

func fromMessage(message domain.Message) DiskMessage {
	return DiskMessage{
		ID:             message.ID,
		SenderID:       message.SenderID.String(),
		ReceiverID:     message.ReceiverID.String(),
		Body:           message.Body,
		At:             message.Timestamp.UTC(),
		SenderUsername: message.Sender.Username,
		SenderPicture:  message.Sender.ProfilePicture,
	}
}

func toMessage(disk DiskMessage) domain.Message {
	return domain.Message{
		ID:         disk.ID,
		SenderID:   domain.UserID(disk.SenderID),
		ReceiverID: domain.UserID(disk.ReceiverID),
		Body:       disk.Body,
		Timestamp:  disk.At.UTC(),
		Sender:     domain.SenderInfo{Username: disk.SenderUsername, ProfilePicture: disk.SenderPicture},
	}
}
