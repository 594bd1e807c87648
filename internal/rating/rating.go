// Package rating turns the count of passed compliance checks into a
// qualitative, explainable tier. Rate is pure: identical inputs always give
// identical output, which the governor's cache relies on.
package rating

// Tier is one of four ordered rating buckets, worst to best.
type Tier string

const (
	TierCritical         Tier = "CRITICAL"
	TierInsufficient     Tier = "INSUFFICIENT"
	TierNeedsImprovement Tier = "NEEDS_IMPROVEMENT"
	TierBasicsDetected   Tier = "BASICS_DETECTED"
)

// Rank returns the tier's position in the total order (0 = worst). Useful
// for comparing tiers.
func (t Tier) Rank() int {
	switch t {
	case TierInsufficient:
		return 1
	case TierNeedsImprovement:
		return 2
	case TierBasicsDetected:
		return 3
	default:
		return 0
	}
}

// Rating is the derived qualitative outcome of a scan.
type Rating struct {
	Tier    Tier   `json:"tier"`
	Color   string `json:"color"`
	Icon    string `json:"icon"`
	Message string `json:"message"`
}

// NotTestedCriteria are the deeper compliance criteria this shallow scan
// deliberately does not evaluate. Shipped verbatim with every response.
var NotTestedCriteria = []string{
	"Registre des incidents de confidentialité",
	"Évaluation des facteurs relatifs à la vie privée (ÉFVP)",
	"Politique de conservation et de destruction des données",
	"Ententes avec les fournisseurs traitant des renseignements personnels",
	"Mécanisme de retrait du consentement",
	"Processus de réponse aux demandes d'accès",
	"Chiffrement des données stockées",
	"Désignation d'un responsable de la protection des renseignements personnels",
}

// disclaimer is appended verbatim to every tier message.
const disclaimer = " 8 critères plus approfondis n'ont pas été évalués par cette analyse automatique."

var tiers = map[Tier]Rating{
	TierCritical: {
		Tier:    TierCritical,
		Color:   "red",
		Icon:    "🚨",
		Message: "Aucune ou presque aucune mesure de conformité de base n'a été détectée. Votre site présente un risque élevé au regard de la Loi 25." + disclaimer,
	},
	TierInsufficient: {
		Tier:    TierInsufficient,
		Color:   "orange",
		Icon:    "⚠️",
		Message: "Des éléments de base sont présents, mais des mesures essentielles manquent encore." + disclaimer,
	},
	TierNeedsImprovement: {
		Tier:    TierNeedsImprovement,
		Color:   "yellow",
		Icon:    "🟡",
		Message: "La plupart des éléments de base sont en place. Quelques points restent à corriger." + disclaimer,
	},
	TierBasicsDetected: {
		Tier:    TierBasicsDetected,
		Color:   "green",
		Icon:    "✅",
		Message: "Les éléments de base de la conformité ont été détectés sur votre site." + disclaimer,
	},
}

// Rate maps a pass count (0–4) to its tier. Total over its domain; counts
// outside the range clamp to the nearest tier.
func Rate(passed int) Rating {
	switch {
	case passed <= 1:
		return tiers[TierCritical]
	case passed == 2:
		return tiers[TierInsufficient]
	case passed == 3:
		return tiers[TierNeedsImprovement]
	default:
		return tiers[TierBasicsDetected]
	}
}
