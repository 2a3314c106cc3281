// Package i18n provides the message catalog for the quote builder UI and
// Accept-Language negotiation.
package i18n

import (
	"context"

	"golang.org/x/text/language"
)

// DefaultLang is used when negotiation finds no supported language.
const DefaultLang = "en"

var supported = []language.Tag{language.English, language.French}

var matcher = language.NewMatcher(supported)

var messages = map[string]map[string]string{
	"en": {
		"required":             "Required",
		"invalid_number":       "Not a number",
		"must_be_positive":     "Must be greater than zero",
		"must_not_be_negative": "Must not be negative",
		"unknown_product":      "Unknown product",
		"index_out_of_range":   "No such line",
		"read_only_field":      "This field cannot be edited",
		"invalid_password":     "Incorrect password",
		"internal_error":       "Something went wrong",
		"invalid_body":         "Malformed request",
		"line":                 "Line",
		"field":                "Field",
		"catalog_unavailable":  "The product catalog could not be loaded; only hourly services are available.",

		"title":                "Quote Calculator",
		"login":                "Sign in",
		"logout":               "Sign out",
		"password":             "Password",
		"product":              "Product",
		"products":             "Products",
		"services":             "Hourly services",
		"quantity":             "Quantity",
		"unit_price":           "Unit price",
		"term":                 "Term",
		"line_total":           "Line total",
		"add":                  "Add",
		"update":               "Update",
		"remove":               "Remove",
		"clear":                "Clear quote",
		"empty_quote":          "No items yet.",
		"monthly_recurring":    "Monthly recurring",
		"one_time":             "One-time",
		"projected_first_year": "Projected first year",
	},
	"fr": {
		"required":             "Requis",
		"invalid_number":       "Nombre invalide",
		"must_be_positive":     "Doit être supérieur à zéro",
		"must_not_be_negative": "Ne doit pas être négatif",
		"unknown_product":      "Produit inconnu",
		"index_out_of_range":   "Ligne introuvable",
		"read_only_field":      "Ce champ n'est pas modifiable",
		"invalid_password":     "Mot de passe incorrect",
		"internal_error":       "Une erreur est survenue",
		"invalid_body":         "Requête invalide",
		"line":                 "Ligne",
		"field":                "Champ",
		"catalog_unavailable":  "Le catalogue n'a pas pu être chargé ; seuls les services horaires sont disponibles.",

		"title":                "Calculateur de devis",
		"login":                "Connexion",
		"logout":               "Déconnexion",
		"password":             "Mot de passe",
		"product":              "Produit",
		"products":             "Produits",
		"services":             "Services horaires",
		"quantity":             "Quantité",
		"unit_price":           "Prix unitaire",
		"term":                 "Périodicité",
		"line_total":           "Total ligne",
		"add":                  "Ajouter",
		"update":               "Modifier",
		"remove":               "Supprimer",
		"clear":                "Vider le devis",
		"empty_quote":          "Aucune ligne.",
		"monthly_recurring":    "Mensuel récurrent",
		"one_time":             "Ponctuel",
		"projected_first_year": "Projection première année",
	},
}

// T returns the message for code in lang. Unknown languages fall back to
// DefaultLang; unknown codes are returned unchanged.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[DefaultLang][code]; ok {
		return s
	}
	return code
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return DefaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLang
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLang
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// Supported reports whether lang has a message table.
func Supported(lang string) bool {
	_, ok := messages[lang]
	return ok
}

type langKey struct{}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFromContext returns the negotiated language, DefaultLang if none.
func LangFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(langKey{}).(string); ok && l != "" {
		return l
	}
	return DefaultLang
}
