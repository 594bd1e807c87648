package checks

import "regexp"

// The detectors are deliberately shallow: target pages come from arbitrary
// site builders and CMSs, so substring/regex matching over decoded text is
// the only strategy that survives unpredictable markup. The pattern lists
// below are data; the matching engine lives in checks.go.

// bannerPattern pairs a concept label with the regex that detects it.
type bannerPattern struct {
	Concept string
	re      *regexp.Regexp
}

// Cookie-consent indicators, accent-insensitive where French spelling
// varies. Quebec sites commonly say "témoins" rather than "cookies".
var bannerPatterns = []bannerPattern{
	{"cookie", regexp.MustCompile(`(?i)cookies?`)},
	{"temoins", regexp.MustCompile(`(?i)t[ée]moins`)},
	{"consent", regexp.MustCompile(`(?i)consent(ement)?`)},
	{"banner", regexp.MustCompile(`(?i)banni[èe]re|banner`)},
	{"consent-management", regexp.MustCompile(`(?i)gestion du consentement|consent management`)},
	{"loi-25", regexp.MustCompile(`(?i)loi\s*25`)},
	{"accept", regexp.MustCompile(`(?i)accept(er|ez)?`)},
	{"reject", regexp.MustCompile(`(?i)refuser|reject`)},
}

// Privacy-policy phrases matched case-insensitively against page text and
// anchor text/hrefs. Both accented and unaccented spellings appear in the
// wild, so each French phrase is listed twice.
var policyPhrases = []string{
	"privacy policy",
	"politique de confidentialité",
	"politique de confidentialite",
	"protection des renseignements personnels",
	"vie privée",
	"vie privee",
}

// Well-known privacy-policy paths probed (in order) when no phrase is found
// on the page itself.
var policyPaths = []string{
	"/privacy",
	"/privacy-policy",
	"/confidentialite",
	"/politique-de-confidentialite",
	"/politique-confidentialite",
	"/vie-privee",
	"/fr/confidentialite",
	"/en/privacy",
}

// Privacy-related mailbox local-parts, combined with the target's own
// domain to form candidate contact addresses.
var contactLocalParts = []string{
	"privacy",
	"confidentialite",
	"dpo",
	"rgpd",
	"vie-privee",
	"protection",
}

// Third-party tracker hosts reported (informationally) when referenced
// anywhere in the raw markup.
var trackerDomains = []string{
	"google-analytics.com",
	"googletagmanager.com",
	"doubleclick.net",
	"googlesyndication.com",
	"facebook.com",
	"amazon-adsystem.com",
	"hotjar.com",
	"mixpanel.com",
	"segment.com",
	"intercom.io",
	"hubspot.com",
}

// Response headers worth surfacing in the scan details.
var securityHeaderNames = []string{
	"Strict-Transport-Security",
	"Content-Security-Policy",
	"X-Frame-Options",
	"X-Content-Type-Options",
}
