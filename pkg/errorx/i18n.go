package errorx

import (
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// NewBundle loads every TOML locale file found under dir in the given
// filesystem. English is the default language and the fallback for
// missing keys.
func NewBundle(fsys fs.FS, dir string) (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(fsys, dir+"/"+entry.Name()); err != nil {
			return nil, fmt.Errorf("load locale %s: %w", entry.Name(), err)
		}
	}

	return bundle, nil
}

// Localize resolves a message id against the localizer, falling back to
// the provided default when the key is unknown.
func Localize(localizer *i18n.Localizer, messageID, fallback string, args map[string]any) string {
	if localizer == nil || messageID == "" {
		return fallback
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: args,
	})
	if err != nil {
		return fallback
	}

	return msg
}
