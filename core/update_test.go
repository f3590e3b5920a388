package core

import (
	"encoding/json"
	"testing"
)

func TestParseUpdate_NumericChatID(t *testing.T) {
	u, err := ParseUpdate([]byte(`{"update_id":9,"message":{"text":"/start","chat":{"id":-1001234567890}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.UpdateID != 9 {
		t.Errorf("update id = %d, want 9", u.UpdateID)
	}
	if !u.IsStart() {
		t.Error("expected /start")
	}
	id, err := u.ChatID()
	if err != nil {
		t.Fatalf("chat id: %v", err)
	}
	out, _ := json.Marshal(id)
	if string(out) != "-1001234567890" {
		t.Errorf("marshalled id = %s", out)
	}
}

func TestParseUpdate_StringChatID(t *testing.T) {
	u, err := ParseUpdate([]byte(`{"message":{"text":"/start","chat":{"id":"@mychannel"}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id, err := u.ChatID()
	if err != nil {
		t.Fatalf("chat id: %v", err)
	}
	if id.String() != "@mychannel" {
		t.Errorf("String() = %q", id.String())
	}
	out, _ := json.Marshal(NewWelcome(id))
	var decoded map[string]any
	json.Unmarshal(out, &decoded)
	if decoded["chat_id"] != "@mychannel" {
		t.Errorf("chat_id = %#v, want string", decoded["chat_id"])
	}
}

func TestChatID_InvalidType(t *testing.T) {
	for _, body := range []string{
		`{"message":{"text":"/start","chat":{"id":true}}}`,
		`{"message":{"text":"/start","chat":{"id":{"x":1}}}}`,
		`{"message":{"text":"/start","chat":{"id":[1]}}}`,
	} {
		u, err := ParseUpdate([]byte(body))
		if err != nil {
			t.Fatalf("%s: parse should succeed, got %v", body, err)
		}
		if _, err := u.ChatID(); !IsMalformed(err) {
			t.Errorf("%s: expected malformed chat id, got %v", body, err)
		}
	}
}

func TestChatID_Missing(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"message":null}`,
		`{"message":{"text":"/start"}}`,
		`{"message":{"text":"/start","chat":null}}`,
		`{"message":{"text":"/start","chat":{}}}`,
		`{"message":{"text":"/start","chat":"x"}}`,
		`{"message":{"text":"/start","chat":{"id":null}}}`,
	} {
		u, err := ParseUpdate([]byte(body))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", body, err)
		}
		if _, err := u.ChatID(); !IsMalformed(err) {
			t.Errorf("%s: expected missing chat id, got %v", body, err)
		}
	}
}

func TestParseUpdate_UnexpectedShapes(t *testing.T) {
	for _, body := range []string{
		`{"message":{"text":"/help","chat":{"id":true}}}`,
		`{"message":{"text":5,"chat":{"id":1}}}`,
		`{"message":{"text":["/start"],"chat":{"id":1}}}`,
		`{"message":"hi"}`,
		`{"message":[1]}`,
		`[1,2]`,
		`"just a string"`,
		`42`,
		`null`,
		`{"update_id":"x"}`,
	} {
		u, err := ParseUpdate([]byte(body))
		if err != nil {
			t.Errorf("%s: unexpected error: %v", body, err)
			continue
		}
		if u.IsStart() {
			t.Errorf("%s: must not be /start", body)
		}
	}
}

func TestParseUpdate_KeysAreCaseSensitive(t *testing.T) {
	for _, body := range []string{
		`{"MESSAGE":{"TEXT":"/start","CHAT":{"ID":7}}}`,
		`{"Message":{"text":"/start","chat":{"id":7}}}`,
		`{"message":{"Text":"/start","chat":{"id":7}}}`,
	} {
		u, err := ParseUpdate([]byte(body))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", body, err)
		}
		if u.IsStart() {
			t.Errorf("%s: keys must match exactly", body)
		}
	}

	u, _ := ParseUpdate([]byte(`{"message":{"text":"/start","chat":{"ID":7}}}`))
	if _, err := u.ChatID(); err == nil {
		t.Error(`"ID" must not be read as the chat id`)
	}
}

func TestParseUpdate_Malformed(t *testing.T) {
	for _, body := range []string{"not-json", "", `{"message":`, `{"a":1}x`} {
		if _, err := ParseUpdate([]byte(body)); !IsMalformed(err) {
			t.Errorf("%q: expected malformed error, got %v", body, err)
		}
	}
}

func TestIsStart(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"/start", true},
		{"/Start", false},
		{" /start", false},
		{"/start@somebot", false},
		{"", false},
	}
	for _, tt := range tests {
		u := Update{Message: &Message{Text: tt.text}}
		if got := u.IsStart(); got != tt.want {
			t.Errorf("IsStart(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
	if (Update{}).IsStart() {
		t.Error("update without message must not be /start")
	}
}

func TestNumericChatID(t *testing.T) {
	id := NumericChatID(42)
	if id.String() != "42" {
		t.Errorf("String() = %q", id.String())
	}
	out, _ := json.Marshal(ChatID{})
	if string(out) != "null" {
		t.Errorf("zero ChatID marshals to %s", out)
	}
}
