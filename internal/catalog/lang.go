package catalog

import (
	"strings"

	"golang.org/x/text/language"
)

// Lang identifies one of the supported rendering languages.
type Lang string

// Supported languages.
const (
	English    Lang = "en"
	Portuguese Lang = "pt-BR"
	French     Lang = "fr-CA"
)

// Base is the canonical language persisted challenges are stored in.
const Base = English

var supported = []Lang{English, Portuguese, French}

// Supported returns every language the catalog has templates for, base first.
func Supported() []Lang {
	return append([]Lang(nil), supported...)
}

func (l Lang) String() string {
	return string(l)
}

// NormalizeLang maps an arbitrary language tag onto the supported set.
// Any Portuguese variant renders as pt-BR and any French variant as fr-CA;
// unknown or malformed tags fall back to Base.
func NormalizeLang(raw string) Lang {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Base
	}
	tag, err := language.Parse(raw)
	if err != nil {
		prefix, _, _ := strings.Cut(strings.ReplaceAll(raw, "_", "-"), "-")
		return fromBase(strings.ToLower(prefix))
	}
	base, _ := tag.Base()
	return fromBase(base.String())
}

// Negotiate picks the response language. An explicit query value wins, then
// the highest-weighted Accept-Language preference, then Base.
func Negotiate(query, acceptLanguage string) Lang {
	if strings.TrimSpace(query) != "" {
		return NormalizeLang(query)
	}
	if strings.TrimSpace(acceptLanguage) == "" {
		return Base
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Base
	}
	return NormalizeLang(tags[0].String())
}

func fromBase(base string) Lang {
	switch base {
	case "pt":
		return Portuguese
	case "fr":
		return French
	default:
		return English
	}
}
