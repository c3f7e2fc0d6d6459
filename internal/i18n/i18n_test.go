package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestNewSelectsCatalog(t *testing.T) {
	tests := []struct {
		name    string
		locales []string
		want    language.Tag
	}{
		{"no preference", nil, language.English},
		{"german", []string{"de"}, language.German},
		{"regional german", []string{"de-AT"}, language.German},
		{"posix locale", []string{"de_DE.UTF-8"}, language.German},
		{"C locale", []string{"C"}, language.English},
		{"unsupported falls back", []string{"ja"}, language.English},
		{"first supported wins", []string{"fr", "de", "en"}, language.German},
		{"garbage skipped", []string{"not a locale!!", "de"}, language.German},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(tt.locales...)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if tr.Language().String() != tt.want.String() {
				t.Errorf("Language() = %v, want %v", tr.Language(), tt.want)
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	en, err := New("en")
	if err != nil {
		t.Fatal(err)
	}
	de, err := New("de")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		tr   *Translator
		key  string
		want string
	}{
		{"english title", en, "config.module.remoteHardware.title", "Remote Hardware"},
		{"german title", de, "config.module.remoteHardware.title", "Remote-Hardware"},
		{"german discard", de, "config.discardChanges", "Änderungen verwerfen"},
		{"missing key", de, "config.module.unknown.title", "config.module.unknown.title"},
		{"nil translator", nil, "config.discardChanges", "config.discardChanges"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.T(tt.key); got != tt.want {
				t.Errorf("T(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	all, err := LoadCatalogs()
	if err != nil {
		t.Fatalf("LoadCatalogs() error = %v", err)
	}

	en := all["en"]
	for tag, c := range all {
		for key := range en.messages {
			if _, ok := c.messages[key]; !ok {
				t.Errorf("%s catalog missing %q", tag, key)
			}
		}
		for key := range c.messages {
			if _, ok := en.messages[key]; !ok {
				t.Errorf("%s catalog has %q not present in English", tag, key)
			}
		}
	}
}
