package process

import (
	"path/filepath"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"brandcss/config"
	"brandcss/state"
)

func setupTestEnvForOutputPath(t *testing.T, noDirs, transliterate bool, template string) *state.LocalEnv {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Output.Transliterate = transliterate
	cfg.Output.NameTemplate = template

	return &state.LocalEnv{
		Log:    logger,
		Cfg:    cfg,
		NoDirs: noDirs,
	}
}

var testPlugins = []string{"recolor-brand", "vendor-prefix"}

func TestBuildOutputPath(t *testing.T) {
	tests := []struct {
		name          string
		src           string
		noDirs        bool
		transliterate bool
		template      string
		expected      string
	}{
		{"no dirs", "site/theme/main.css", true, false, "", filepath.Join("/output", "main.css")},
		{"with dirs", "site/theme/main.css", false, false, "", filepath.Join("/output", "site", "theme", "main.css")},
		{"upper case extension", "MAIN.CSS", true, false, "", filepath.Join("/output", "MAIN.css")},
		{"transliterate", "Тема.css", true, true, "", filepath.Join("/output", "tema.css")},
		{"template", "theme/main.css", false, false, "{{ .Name }}.teal{{ .Ext }}", filepath.Join("/output", "theme", "main.teal.css")},
		{"template without extension", "main.css", true, false, "{{ .Name }}-{{ .Version }}", filepath.Join("/output", "main-dev.css")},
		{"template with dirs", "theme/main.css", true, false, "{{ .Dir }}/{{ .Name | upper }}", filepath.Join("/output", "theme", "MAIN.css")},
		{"template with plugins", "main.css", true, false, `{{ .Name }}.{{ join "+" .Plugins }}`, filepath.Join("/output", "main.recolor-brand+vendor-prefix.css")},
		{"template transliterate", "main.css", true, true, "Тема/{{ .Name }}", filepath.Join("/output", "tema", "main.css")},
		{"bad template", "main.css", true, false, "{{ .Name", filepath.Join("/output", "main.css")},
		{"failing template", "main.css", true, false, "{{ .Unknown }}", filepath.Join("/output", "main.css")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.noDirs, tt.transliterate, tt.template)

			result := buildOutputPath(tt.src, "/output", testPlugins, env)
			if result != tt.expected {
				t.Errorf("buildOutputPath() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestDetermineOutputDir(t *testing.T) {
	env := setupTestEnvForOutputPath(t, true, false, "")
	if got := determineOutputDir("site/theme/main.css", "/output", env); got != "/output" {
		t.Errorf("determineOutputDir() = %q, want /output", got)
	}

	env = setupTestEnvForOutputPath(t, false, false, "")
	want := filepath.Join("/output", "site", "theme")
	if got := determineOutputDir("site/theme/main.css", "/output", env); got != want {
		t.Errorf("determineOutputDir() = %q, want %q", got, want)
	}
}

func TestSplitAndCleanPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected []string
	}{
		{"simple path", filepath.Join("theme", "main"), []string{"theme", "main"}},
		{"single segment", "main", []string{"main"}},
		{"with trailing slash", filepath.Join("theme", "main") + string(filepath.Separator), []string{"theme", "main"}},
		{"parent references", filepath.Join("..", "..", "main"), []string{"main"}},
		{"empty path", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := splitAndCleanPath(tt.path); !slices.Equal(result, tt.expected) {
				t.Errorf("splitAndCleanPath() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestCleanPathSegment(t *testing.T) {
	tests := []struct {
		name          string
		segment       string
		transliterate bool
		expected      string
	}{
		{"simple segment", "theme", false, "theme"},
		{"with spaces", "Dark Theme", false, "Dark Theme"},
		{"transliterate cyrillic", "Тема", true, "tema"},
		{"only dots", "..", false, "_bad_file_name_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, true, tt.transliterate, "")
			if result := cleanPathSegment(tt.segment, env); result != tt.expected {
				t.Errorf("cleanPathSegment() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestAssemblePathWithSubdirs_EmptyPath(t *testing.T) {
	env := setupTestEnvForOutputPath(t, true, false, "")
	if result := assemblePathWithSubdirs("/output", "", env); result != "/output" {
		t.Errorf("assemblePathWithSubdirs() with empty path = %q, want /output", result)
	}
}
