package views

import (
	"fmt"
	"time"
)

// locale holds the user-facing strings and month abbreviations of a
// supported site locale.
type locale struct {
	Lang             string
	Months           [12]string
	Loading          string
	ExitPreview      string
	Minutes          string
	NotFoundTitle    string
	NotFoundMessage  string
	ErrorTitle       string
	ErrorMessage     string
	BackHome         string
	UnpublishedLabel string
}

var locales = map[string]locale{
	"pt-BR": {
		Lang:             "pt-BR",
		Months:           [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
		Loading:          "Carregando...",
		ExitPreview:      "Sair do modo Preview",
		Minutes:          "min",
		NotFoundTitle:    "Página não encontrada",
		NotFoundMessage:  "O post que você procura não existe.",
		ErrorTitle:       "Algo deu errado",
		ErrorMessage:     "Não foi possível carregar esta página. Tente novamente em instantes.",
		BackHome:         "Voltar para o início",
		UnpublishedLabel: "Não publicado",
	},
	"en-US": {
		Lang:             "en-US",
		Months:           [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		Loading:          "Loading...",
		ExitPreview:      "Exit preview mode",
		Minutes:          "min",
		NotFoundTitle:    "Page not found",
		NotFoundMessage:  "The post you are looking for does not exist.",
		ErrorTitle:       "Something went wrong",
		ErrorMessage:     "This page could not be loaded. Please try again shortly.",
		BackHome:         "Back to home",
		UnpublishedLabel: "Unpublished",
	},
}

// DefaultLocale is used when SiteConfig.Locale is empty or unsupported.
const DefaultLocale = "pt-BR"

func localeFor(tag string) locale {
	if l, ok := locales[tag]; ok {
		return l
	}
	return locales[DefaultLocale]
}

// SupportedLocale reports whether tag has translations.
func SupportedLocale(tag string) bool {
	_, ok := locales[tag]
	return ok
}

// FormatDate formats t as "dd MMM yyyy" with month abbreviations of the
// locale, e.g. "25 mar 2021" for pt-BR.
func FormatDate(t time.Time, tag string) string {
	l := localeFor(tag)
	return fmt.Sprintf("%02d %s %d", t.Day(), l.Months[t.Month()-1], t.Year())
}
