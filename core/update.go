package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Update is the subset of a Telegram update the webhook looks at. It is
// filled by exact key lookups: a field with an unexpected type reads as
// absent, so only the chat id of a /start message can fail to decode.
type Update struct {
	UpdateID int64
	Message  *Message
}

// Message is the message carried by an update.
type Message struct {
	// Text is set only when the text field is a JSON string.
	Text string
	Chat *Chat
}

// Chat names the conversation a message belongs to. ID is kept raw until
// a reply actually needs it.
type Chat struct {
	ID json.RawMessage
}

// ChatID is a chat identifier exactly as it appeared on the wire: a JSON
// number for users and groups, a JSON string for @channel usernames.
type ChatID struct {
	raw json.RawMessage
}

// NumericChatID returns the ChatID for a numeric chat.
func NumericChatID(id int64) ChatID {
	return ChatID{raw: json.RawMessage(fmt.Sprintf("%d", id))}
}

// UnmarshalJSON accepts a number or a string and rejects anything else.
func (c *ChatID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty chat id")
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil || n == "" {
			return fmt.Errorf("chat id must be a number or a string, got %s", data)
		}
	}

	c.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the id back in its original form.
func (c ChatID) MarshalJSON() ([]byte, error) {
	if len(c.raw) == 0 {
		return []byte("null"), nil
	}
	return c.raw, nil
}

func (c ChatID) String() string {
	if len(c.raw) > 0 && c.raw[0] == '"' {
		var s string
		if err := json.Unmarshal(c.raw, &s); err == nil {
			return s
		}
	}
	return string(c.raw)
}

// ParseUpdate decodes a webhook body. Only invalid JSON is an error, tagged
// as malformed input; any valid document yields an Update.
func ParseUpdate(body []byte) (Update, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Update{}, malformed(err)
	}

	var u Update
	fields := object(raw)
	json.Unmarshal(fields["update_id"], &u.UpdateID)

	msg := object(fields["message"])
	if msg == nil {
		return u, nil
	}
	u.Message = &Message{}
	json.Unmarshal(msg["text"], &u.Message.Text)

	if chat, ok := msg["chat"]; ok && !isNull(chat) {
		u.Message.Chat = &Chat{ID: object(chat)["id"]}
	}
	return u, nil
}

// object returns the members of a JSON object keyed exactly as written, or
// nil when raw is absent or not an object.
func object(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// IsStart reports whether the update is a message whose text is exactly /start.
func (u Update) IsStart() bool {
	return u.Message != nil && u.Message.Text == StartCommand
}

// ChatID returns the chat id of the update's message. A missing id or one
// that is neither a number nor a string is malformed input.
func (u Update) ChatID() (ChatID, error) {
	if u.Message == nil || u.Message.Chat == nil || len(u.Message.Chat.ID) == 0 || isNull(u.Message.Chat.ID) {
		return ChatID{}, missingChat()
	}
	var id ChatID
	if err := id.UnmarshalJSON(u.Message.Chat.ID); err != nil {
		return ChatID{}, malformed(err)
	}
	return id, nil
}
