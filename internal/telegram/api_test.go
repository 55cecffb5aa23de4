package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestGetUpdatesOffsetBookkeeping(t *testing.T) {
	var gotOffset string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/getUpdates") {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		gotOffset = r.URL.Query().Get("offset")
		fmt.Fprint(w, `{"ok":true,"result":[
			{"update_id":10,"message":{"message_id":1,"chat":{"id":5},"from":{"id":7,"first_name":"Ana"},"text":"oi"}},
			{"update_id":12,"message":{"message_id":2,"chat":{"id":5},"text":"tudo bem?"}}
		]}`)
	}))
	defer srv.Close()

	api := NewAPI(srv.Client(), srv.URL, "tok")
	updates, next, err := api.GetUpdates(context.Background(), 4, time.Second)
	if err != nil {
		t.Fatalf("GetUpdates() error = %v", err)
	}
	if gotOffset != "4" {
		t.Fatalf("offset sent = %q, want 4", gotOffset)
	}
	if len(updates) != 2 {
		t.Fatalf("updates = %d, want 2", len(updates))
	}
	if next != 13 {
		t.Fatalf("next offset = %d, want 13", next)
	}
}

func TestGetUpdatesAPIFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":false}`)
	}))
	defer srv.Close()

	api := NewAPI(srv.Client(), srv.URL, "tok")
	_, next, err := api.GetUpdates(context.Background(), 9, time.Second)
	if err == nil {
		t.Fatal("expected error")
	}
	if next != 9 {
		t.Fatalf("offset must not advance on error, got %d", next)
	}
}

func TestSendMessageChunksLongText(t *testing.T) {
	var sent []sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		sent = append(sent, req)
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	api := NewAPI(srv.Client(), srv.URL, "tok")
	long := strings.Repeat("a", 4000)
	if err := api.SendMessageReply(context.Background(), 5, long, 42); err != nil {
		t.Fatalf("SendMessageReply() error = %v", err)
	}
	if len(sent) != 2 {
		t.Fatalf("messages sent = %d, want 2", len(sent))
	}
	if len(sent[0].Text) != 3500 || len(sent[1].Text) != 500 {
		t.Fatalf("chunk sizes = %d/%d", len(sent[0].Text), len(sent[1].Text))
	}
	if sent[0].ReplyToMessageID != 42 || sent[1].ReplyToMessageID != 0 {
		t.Fatalf("only the first chunk should reply, got %d/%d", sent[0].ReplyToMessageID, sent[1].ReplyToMessageID)
	}
}

func TestSendMessageSurfacesDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"ok":false,"error_code":403,"description":"bot was blocked by the user"}`)
	}))
	defer srv.Close()

	api := NewAPI(srv.Client(), srv.URL, "tok")
	err := api.SendMessage(context.Background(), 5, "oi")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "bot was blocked") {
		t.Fatalf("error = %v, want description surfaced", err)
	}
}

func TestIncomingMessageAndBodyText(t *testing.T) {
	cases := []struct {
		name   string
		update Update
		want   string
	}{
		{"message", Update{Message: &Message{Text: "oi"}}, "oi"},
		{"edited", Update{EditedMessage: &Message{Text: "corrigido"}}, "corrigido"},
		{"channel_post", Update{ChannelPost: &Message{Text: "aviso"}}, "aviso"},
		{"caption_fallback", Update{Message: &Message{Caption: "foto da nota"}}, "foto da nota"},
		{"callback_query", Update{CallbackQuery: &CallbackQuery{
			Message: &Message{Chat: &Chat{ID: 5}},
			Data:    "consultar vodka",
		}}, "consultar vodka"},
		{"callback_without_message", Update{CallbackQuery: &CallbackQuery{Data: "x"}}, ""},
		{"empty", Update{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.update.IncomingMessage().BodyText(); got != tc.want {
				t.Fatalf("BodyText() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIncomingMessageCallbackCarriesPresser(t *testing.T) {
	u := Update{CallbackQuery: &CallbackQuery{
		From:    &User{ID: 9, FirstName: "Ana"},
		Message: &Message{MessageID: 7, Chat: &Chat{ID: 55}},
		Data:    "consultar vodka",
	}}
	msg := u.IncomingMessage()
	if msg == nil {
		t.Fatal("expected a synthetic message")
	}
	if msg.Chat == nil || msg.Chat.ID != 55 {
		t.Fatalf("chat = %+v, want id 55", msg.Chat)
	}
	if msg.From == nil || msg.From.ID != 9 {
		t.Fatalf("sender must be the button presser, got %+v", msg.From)
	}
	if msg.MessageID != 7 {
		t.Fatalf("message id = %d, want 7", msg.MessageID)
	}
}

func TestSendMessageChunksOnRuneBoundary(t *testing.T) {
	var sent []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		sent = append(sent, req.Text)
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	api := NewAPI(srv.Client(), srv.URL, "tok")
	// One leading ASCII byte puts every two-byte rune on an odd offset,
	// so a cut at 3500 bytes would land mid-rune.
	long := "x" + strings.Repeat("é", 2000)
	if err := api.SendMessage(context.Background(), 5, long); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if len(sent) != 2 {
		t.Fatalf("messages sent = %d, want 2", len(sent))
	}
	for i, chunk := range sent {
		if !utf8.ValidString(chunk) {
			t.Fatalf("chunk %d is not valid UTF-8", i)
		}
	}
	if sent[0]+sent[1] != long {
		t.Fatal("chunks must rejoin to the original text")
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		user *User
		want string
	}{
		{&User{FirstName: "Samuel", LastName: "Rocha"}, "Samuel Rocha"},
		{&User{FirstName: "Samuel"}, "Samuel"},
		{&User{Username: "srocha"}, "@srocha"},
		{&User{}, ""},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := DisplayName(tc.user); got != tc.want {
			t.Fatalf("DisplayName(%+v) = %q, want %q", tc.user, got, tc.want)
		}
	}
}
