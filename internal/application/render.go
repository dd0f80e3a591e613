package application

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf16"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/keysign/internal/config"
	"github.com/eugenenazirov/keysign/internal/signing"
)

const maskedSecret = "********"

type identityView struct {
	Variant         string `yaml:"variant" json:"variant"`
	KeyAlias        string `yaml:"keyAlias" json:"keyAlias"`
	KeyPassword     string `yaml:"keyPassword" json:"keyPassword"`
	StoreFile       string `yaml:"storeFile" json:"storeFile"`
	StorePassword   string `yaml:"storePassword" json:"storePassword"`
	EnableV1Signing bool   `yaml:"enableV1Signing" json:"enableV1Signing"`
	EnableV2Signing bool   `yaml:"enableV2Signing" json:"enableV2Signing"`
}

func newIdentityView(cfg signing.SigningConfig, reveal bool) identityView {
	view := identityView{
		Variant:         cfg.Variant.String(),
		KeyAlias:        cfg.Properties.KeyAlias,
		KeyPassword:     cfg.Properties.KeyPassword,
		StoreFile:       cfg.Properties.StoreFile,
		StorePassword:   cfg.Properties.StorePassword,
		EnableV1Signing: cfg.EnableV1Signing,
		EnableV2Signing: cfg.EnableV2Signing,
	}
	if !reveal {
		view.KeyPassword = maskedSecret
		view.StorePassword = maskedSecret
	}
	return view
}

// Render writes cfg using the configured output format. Passwords are masked
// unless RevealSecrets is set.
func (a *App) Render(w io.Writer, cfg signing.SigningConfig) error {
	return Render(w, cfg, a.cfg.Output, a.cfg.RevealSecrets)
}

// Render writes cfg to w as yaml, json or properties.
func Render(w io.Writer, cfg signing.SigningConfig, format string, reveal bool) error {
	view := newIdentityView(cfg, reveal)

	switch format {
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case config.OutputProperties:
		return writeProperties(w, view)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// writeProperties emits ISO-8859-1 safe output the way java.util.Properties
// stores it, so Gradle and ParseProperties read back the same values.
func writeProperties(w io.Writer, view identityView) error {
	pairs := [][2]string{
		{"variant", view.Variant},
		{signing.KeyAlias, view.KeyAlias},
		{signing.KeyPassword, view.KeyPassword},
		{signing.StoreFile, view.StoreFile},
		{signing.StorePassword, view.StorePassword},
		{"enableV1Signing", strconv.FormatBool(view.EnableV1Signing)},
		{"enableV2Signing", strconv.FormatBool(view.EnableV2Signing)},
	}

	var b strings.Builder
	for _, kv := range pairs {
		b.WriteString(escapeProperty(kv[0], true))
		b.WriteByte('=')
		b.WriteString(escapeProperty(kv[1], false))
		b.WriteByte('\n')
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write properties: %w", err)
	}
	return nil
}

// escapeProperty escapes s for a .properties file. Anything outside printable
// ASCII becomes \uXXXX, using surrogate pairs above the BMP.
func escapeProperty(s string, key bool) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\f':
			b.WriteString(`\f`)
		case r == ' ' && (key || i == 0):
			b.WriteString(`\ `)
		case strings.ContainsRune("=:#!", r):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r > 0x7e:
			if r > 0xffff {
				hi, lo := utf16.EncodeRune(r)
				fmt.Fprintf(&b, `\u%04x\u%04x`, hi, lo)
				continue
			}
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
