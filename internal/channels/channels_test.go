package channels

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"https link", "https://t.me/mychan", "@mychan"},
		{"http link", "http://t.me/mychan", "@mychan"},
		{"bare t.me link", "t.me/mychan", "@mychan"},
		{"link with trailing slash", "https://t.me/mychan/", "@mychan"},
		{"numeric supergroup id", "-1001234567890", "-1001234567890"},
		{"positive numeric id", "1234567890", "1234567890"},
		{"bare handle", "mychan", "@mychan"},
		{"already prefixed", "@mychan", "@mychan"},
		{"surrounding whitespace", "  @mychan ", "@mychan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.ref)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.yaml")
	content := `channels:
  - "@melochov"
  - "https://t.me/abks07"
  - "-1001234567890"
include:
  - "скидка"
exclude:
  - "вакансия"
  - "резюме"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	list, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(list.Channels) != 3 {
		t.Errorf("len(Channels) = %d, want 3", len(list.Channels))
	}
	if len(list.Include) != 1 || list.Include[0] != "скидка" {
		t.Errorf("Include = %v, want [скидка]", list.Include)
	}
	if len(list.Exclude) != 2 {
		t.Errorf("len(Exclude) = %d, want 2", len(list.Exclude))
	}
}

func TestLoad_EmptyChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.yaml")
	if err := os.WriteFile(path, []byte("channels: []\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for empty channel list, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}
