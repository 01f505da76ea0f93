package telegram

import (
	"testing"

	"github.com/gotd/td/tg"
)

func TestParseChannelID(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    int64
		wantErr bool
	}{
		{"bot api style", "-1001234567890", 1234567890, false},
		{"plain negative", "-987654", 987654, false},
		{"plain positive", "1234567890", 1234567890, false},
		{"not a number", "@mychan", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseChannelID(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseChannelID(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseChannelID(%q) = %d, want %d", tt.ref, got, tt.want)
			}
		})
	}
}

func TestClassifyMedia(t *testing.T) {
	videoDoc := &tg.MessageMediaDocument{}
	videoDoc.SetDocument(&tg.Document{
		Attributes: []tg.DocumentAttributeClass{&tg.DocumentAttributeVideo{}},
	})

	audioDoc := &tg.MessageMediaDocument{}
	audioDoc.SetDocument(&tg.Document{
		Attributes: []tg.DocumentAttributeClass{&tg.DocumentAttributeAudio{}},
	})

	voiceDoc := &tg.MessageMediaDocument{}
	voiceDoc.SetDocument(&tg.Document{
		Attributes: []tg.DocumentAttributeClass{&tg.DocumentAttributeAudio{Voice: true}},
	})

	plainDoc := &tg.MessageMediaDocument{}
	plainDoc.SetDocument(&tg.Document{})

	tests := []struct {
		name  string
		media tg.MessageMediaClass
		want  Media
	}{
		{"photo", &tg.MessageMediaPhoto{}, Media{Photo: true}},
		{"video", videoDoc, Media{Video: true, Document: true}},
		{"audio", audioDoc, Media{Audio: true, Document: true}},
		{"voice", voiceDoc, Media{Voice: true, Document: true}},
		{"plain document", plainDoc, Media{Document: true}},
		{"webpage", &tg.MessageMediaWebPage{}, Media{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyMedia(tt.media)
			if got != tt.want {
				t.Errorf("classifyMedia() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMessage_CaptionForMedia(t *testing.T) {
	msg := parseMessage(&tg.Message{
		ID:      42,
		Date:    1700000000,
		Message: "caption text",
		Media:   &tg.MessageMediaPhoto{},
	})

	if msg.Text != "" {
		t.Errorf("Text = %q, want empty for media message", msg.Text)
	}
	if msg.Caption != "caption text" {
		t.Errorf("Caption = %q, want %q", msg.Caption, "caption text")
	}
	if msg.Body() != "caption text" {
		t.Errorf("Body() = %q, want %q", msg.Body(), "caption text")
	}
}

func TestExtractMessages_DropsAtOrBelowMinID(t *testing.T) {
	history := &tg.MessagesChannelMessages{
		Messages: []tg.MessageClass{
			&tg.Message{ID: 12, Message: "newest"},
			&tg.Message{ID: 11, Message: "boundary"},
			&tg.Message{ID: 10, Message: "old"},
			&tg.MessageService{ID: 9},
		},
	}

	got, oldestID, rawCount := extractMessages(history, 11)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].ID != 12 {
		t.Errorf("ID = %d, want 12", got[0].ID)
	}
	if rawCount != 4 {
		t.Errorf("rawCount = %d, want 4", rawCount)
	}
	if oldestID != 9 {
		t.Errorf("oldestID = %d, want 9 (service messages still advance the cursor)", oldestID)
	}
}
