package domain

// CurrencyRef selects a currency at the API boundary: either a specific
// currency id or the catalog's configured default. The zero value means
// "default", so callers never pass empty strings with implied meaning.
type CurrencyRef struct {
	id string
}

// DefaultCurrency refers to the catalog's configured default currency.
func DefaultCurrency() CurrencyRef { return CurrencyRef{} }

// CurrencyByID refers to a specific currency.
func CurrencyByID(id string) CurrencyRef { return CurrencyRef{id: id} }

// ID returns the selected currency id, or false when the ref is the default.
func (r CurrencyRef) ID() (string, bool) {
	if r.id == "" {
		return "", false
	}
	return r.id, true
}
