package main

import (
	"embed"

	"github.com/jeandeaual/go-locale"

	"github.com/ledmatrix/matrixstore/cmd"
	"github.com/ledmatrix/matrixstore/internal/config"
	"github.com/ledmatrix/matrixstore/internal/i18n"
)

//go:embed locales/*.json
var localeFS embed.FS

func main() {
	i18n.Init(localeFS, getLocale())
	cmd.Execute()
}

// getLocale returns the locale based on config
func getLocale() string {
	configLocale := config.GetLocale()

	// If "auto", detect system locale
	if configLocale == "auto" || configLocale == "" {
		userLocale, err := locale.GetLocale()
		if err != nil || userLocale == "" {
			return "en-US"
		}
		return userLocale
	}

	return configLocale
}
