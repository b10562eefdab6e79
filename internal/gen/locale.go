package gen

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// localeData holds the name and mailbox-provider tables for one locale.
type localeData struct {
	firstNames []string
	lastNames  []string
	domains    []string
}

var locales = map[string]localeData{
	"en_US": {
		firstNames: []string{
			"James", "Mary", "Robert", "Patricia", "John", "Jennifer",
			"Michael", "Linda", "David", "Elizabeth", "William", "Barbara",
			"Richard", "Susan", "Joseph", "Jessica", "Thomas", "Sarah",
			"Christopher", "Karen",
		},
		lastNames: []string{
			"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia",
			"Miller", "Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez",
			"Gonzalez", "Wilson", "Anderson", "Thomas", "Taylor", "Moore",
		},
		domains: []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com", "aol.com"},
	},
	"fr_FR": {
		firstNames: []string{
			"Jean", "Marie", "Pierre", "Sophie", "Michel", "Nathalie",
			"Philippe", "Isabelle", "Alain", "Catherine", "Nicolas", "Camille",
			"Julien", "Claire", "Antoine", "Juliette",
		},
		lastNames: []string{
			"Martin", "Bernard", "Dubois", "Thomas", "Robert", "Richard",
			"Petit", "Durand", "Leroy", "Moreau", "Simon", "Laurent",
			"Lefebvre", "Michel", "Garcia", "Roux",
		},
		domains: []string{"orange.fr", "free.fr", "sfr.fr", "laposte.net", "gmail.com"},
	},
	"de_DE": {
		firstNames: []string{
			"Hans", "Anna", "Peter", "Ursula", "Wolfgang", "Monika",
			"Klaus", "Petra", "Jürgen", "Sabine", "Thomas", "Claudia",
			"Stefan", "Katrin", "Andreas", "Nicole",
		},
		lastNames: []string{
			"Müller", "Schmidt", "Schneider", "Fischer", "Weber", "Meyer",
			"Wagner", "Becker", "Schulz", "Hoffmann", "Koch", "Bauer",
			"Richter", "Klein", "Wolf", "Schröder",
		},
		domains: []string{"gmx.de", "web.de", "t-online.de", "freenet.de", "gmail.com"},
	},
}

// SupportedLocales lists the locale identifiers Generate accepts.
func SupportedLocales() []string {
	return []string{"de_DE", "en_US", "fr_FR"}
}

// resolveLocales validates the requested identifiers, both as BCP 47 tags
// and against the built-in tables, and returns the matching data sets.
func resolveLocales(names []string) ([]localeData, error) {
	if len(names) == 0 {
		names = []string{"en_US"}
	}
	out := make([]localeData, 0, len(names))
	for _, name := range names {
		tag := strings.ReplaceAll(name, "_", "-")
		if _, err := language.Parse(tag); err != nil {
			return nil, fmt.Errorf("gen: locale %q is not a valid language tag: %w", name, err)
		}
		data, ok := locales[name]
		if !ok {
			return nil, fmt.Errorf("gen: locale %q is not supported (have %s)",
				name, strings.Join(SupportedLocales(), ", "))
		}
		out = append(out, data)
	}
	return out, nil
}
