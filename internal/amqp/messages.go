package amqp

import (
	"encoding/json"
	"time"
)

// CompletionSyncMessage tells the worker one completion row needs mirroring.
// It carries only the row ID; the worker fetches the current row from the
// database, so a superseded write is mirrored at its latest state.
type CompletionSyncMessage struct {
	CompletionID string    `json:"completionId"`
	HabitID      string    `json:"habitId"`
	Date         string    `json:"date"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewCompletionSyncMessage(completionID, habitID, date string) *CompletionSyncMessage {
	return &CompletionSyncMessage{
		CompletionID: completionID,
		HabitID:      habitID,
		Date:         date,
		Timestamp:    time.Now(),
	}
}

func (m *CompletionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func CompletionSyncMessageFromJSON(data []byte) (*CompletionSyncMessage, error) {
	var msg CompletionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
