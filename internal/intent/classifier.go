package intent

import (
	"strings"

	apperrors "eweb-intent/internal/common/errors"
)

type classificationRule struct {
	keywords []string
	kind     IntentKind
}

// classificationRules are evaluated top to bottom and the first match wins,
// so a query mentioning both "stock" and "sale" is a stock lookup.
var classificationRules = []classificationRule{
	{keywords: []string{"inventory", "stock"}, kind: SupplierStock},
	{keywords: []string{"sale"}, kind: SalesHistory},
}

// Classify maps query text to an intent by case-insensitive substring match.
// It fails with UNRECOGNIZED_INTENT when no rule matches.
func Classify(text string) (IntentKind, error) {
	lower := strings.ToLower(text)
	for _, rule := range classificationRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.kind, nil
			}
		}
	}
	return "", apperrors.NewUnrecognizedIntentError(text)
}
