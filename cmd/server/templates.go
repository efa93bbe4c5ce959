package main

import (
	"html/template"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// LoadTemplates parses the board templates matching glob
func LoadTemplates(glob string) *template.Template {
	tmpl := template.New("")
	files, err := filepath.Glob(glob)
	if err != nil {
		log.Fatal().Err(err).Str("glob", glob).Msg("bad TEMPLATES_GLOB")
	}
	if len(files) == 0 {
		log.Warn().Str("glob", glob).Msg("no templates found, /board will fail")
		return tmpl
	}
	return template.Must(tmpl.ParseFiles(files...))
}
