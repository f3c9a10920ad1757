package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Translator resolves message keys to format strings loaded from a locale file.
type Translator struct {
	translations map[string]string
}

// NewTranslator loads locales/<langCode>.yaml from fsys.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := path.Join("locales", fmt.Sprintf("%s.yaml", langCode))
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}
	return newTranslatorFromBytes(data)
}

// MustDefault returns the embedded English translator. The embedded file is part
// of the binary, so failure here is a build defect.
func MustDefault() *Translator {
	t, err := NewTranslator(LocalesFS, "en")
	if err != nil {
		panic(err)
	}
	return t
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

// T returns the translation for key, formatted with args. Unknown keys are
// returned verbatim so a missing entry is visible rather than silent.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}
