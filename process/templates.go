package process

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"brandcss/config"
	"brandcss/misc"
)

// Values holds variables available for output name template expansion.
type Values struct {
	Context string
	// Name is source file name without directory and extension
	Name string
	// Ext is extension of the source file including leading dot
	Ext string
	// Dir is source directory relative to the processed directory or archive,
	// always with forward slashes, "." for top level
	Dir string
	// Source is relative source path with forward slashes
	Source  string
	Plugins []string
	Version string
}

func newValues(name config.TemplateFieldName, src string, plugins []string) Values {
	slashed := filepath.ToSlash(src)
	base := path.Base(slashed)
	ext := path.Ext(base)
	return Values{
		Context: string(name),
		Name:    strings.TrimSuffix(base, ext),
		Ext:     ext,
		Dir:     path.Dir(slashed),
		Source:  slashed,
		Plugins: plugins,
		Version: misc.GetVersion(),
	}
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
