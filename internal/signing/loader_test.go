package signing

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validProperties = `# release keystore
keyAlias=upload
keyPassword=s3cret
storeFile=keys/upload.jks
storePassword=st0re
`

func writeProperties(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "key.properties")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write properties: %v", err)
	}
	return path
}

func TestLoadPropertiesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.properties")

	_, err := LoadProperties(path)
	if !errors.Is(err, ErrConfigurationMissing) {
		t.Fatalf("expected ErrConfigurationMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to name the path, got %v", err)
	}
}

func TestLoadPropertiesKeepsUnknownKeys(t *testing.T) {
	path := writeProperties(t, t.TempDir(), validProperties+"flavor=prod\n")

	set, err := LoadProperties(path)
	if err != nil {
		t.Fatalf("LoadProperties returned error: %v", err)
	}
	if got, ok := set.Get("flavor"); !ok || got != "prod" {
		t.Fatalf("expected flavor=prod, got %q (found=%v)", got, ok)
	}
	if want := []string{KeyAlias, KeyPassword, StoreFile, StorePassword, "flavor"}; strings.Join(set.Keys(), ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected key order: %v", set.Keys())
	}
	if got := set.Map(); len(got) != 5 || got[KeyAlias] != "upload" {
		t.Fatalf("unexpected map: %v", got)
	}
	if set.Path() != path {
		t.Fatalf("expected path %s, got %s", path, set.Path())
	}
}

func TestParsePropertiesSyntax(t *testing.T) {
	content := strings.Join([]string{
		"! bang comment",
		"keyAlias: upload",
		"keyPassword   pa${ss}",
		"storeFile = /abs/upload.jks",
		`storePassword = first\`,
		"    second",
	}, "\n")

	set, err := ParseProperties([]byte(content), "")
	if err != nil {
		t.Fatalf("ParseProperties returned error: %v", err)
	}

	props, err := PropertiesFromSet(set, LoadOptions{})
	if err != nil {
		t.Fatalf("PropertiesFromSet returned error: %v", err)
	}
	want := SigningProperties{
		KeyAlias:      "upload",
		KeyPassword:   "pa${ss}",
		StoreFile:     "/abs/upload.jks",
		StorePassword: "firstsecond",
	}
	if props != want {
		t.Fatalf("expected %+v, got %+v", want, props)
	}
}

func TestPropertiesFromSetIncomplete(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing string
	}{
		{
			name:    "missing key alias",
			content: "keyPassword=a\nstoreFile=b\nstorePassword=c\n",
			missing: "keyAlias",
		},
		{
			name:    "blank store password",
			content: "keyAlias=a\nkeyPassword=b\nstoreFile=c\nstorePassword=   \n",
			missing: "storePassword",
		},
		{
			name:    "empty file",
			content: "",
			missing: "keyAlias, keyPassword, storeFile, storePassword",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := ParseProperties([]byte(tt.content), "")
			if err != nil {
				t.Fatalf("ParseProperties returned error: %v", err)
			}
			_, err = PropertiesFromSet(set, LoadOptions{})
			if !errors.Is(err, ErrIncompleteSigningConfig) {
				t.Fatalf("expected ErrIncompleteSigningConfig, got %v", err)
			}
			if !strings.HasSuffix(err.Error(), "missing "+tt.missing) {
				t.Fatalf("expected missing %q, got %v", tt.missing, err)
			}
		})
	}
}

func TestStoreFileResolution(t *testing.T) {
	dir := t.TempDir()
	path := writeProperties(t, dir, validProperties)

	t.Run("relative to properties file", func(t *testing.T) {
		props, err := Load(path, LoadOptions{})
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if want := filepath.Join(dir, "keys", "upload.jks"); props.StoreFile != want {
			t.Fatalf("expected %s, got %s", want, props.StoreFile)
		}
	})

	t.Run("relative to module dir", func(t *testing.T) {
		moduleDir := filepath.Join(dir, "app")
		props, err := Load(path, LoadOptions{ModuleDir: moduleDir})
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if want := filepath.Join(moduleDir, "keys", "upload.jks"); props.StoreFile != want {
			t.Fatalf("expected %s, got %s", want, props.StoreFile)
		}
	})
}

func TestRequireStoreFile(t *testing.T) {
	dir := t.TempDir()
	path := writeProperties(t, dir, validProperties)

	if _, err := Load(path, LoadOptions{RequireStoreFile: true}); !errors.Is(err, ErrKeystoreMissing) {
		t.Fatalf("expected ErrKeystoreMissing, got %v", err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "keys", "upload.jks"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := Load(path, LoadOptions{RequireStoreFile: true}); !errors.Is(err, ErrKeystoreMissing) {
		t.Fatalf("expected ErrKeystoreMissing for directory, got %v", err)
	}

	if err := os.Remove(filepath.Join(dir, "keys", "upload.jks")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "keys", "upload.jks"), []byte("jks"), 0o600); err != nil {
		t.Fatalf("write keystore: %v", err)
	}
	if _, err := Load(path, LoadOptions{RequireStoreFile: true}); err != nil {
		t.Fatalf("expected keystore to be accepted, got %v", err)
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	path := writeProperties(t, t.TempDir(), validProperties)

	first, err := Load(path, LoadOptions{})
	if err != nil {
		t.Fatalf("first Load returned error: %v", err)
	}
	second, err := Load(path, LoadOptions{})
	if err != nil {
		t.Fatalf("second Load returned error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical properties, got %+v and %+v", first, second)
	}
}
