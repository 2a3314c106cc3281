package quote

// Differs reports whether candidate is a different view of canonical: a
// different row count, or any row whose reference, name, term, unit, quantity
// or unit price changed. Line totals are ignored.
func Differs(canonical Ledger, candidate []LineItem) bool {
	if len(candidate) != len(canonical.items) {
		return true
	}
	for i, item := range canonical.items {
		if !item.sameAs(candidate[i]) {
			return true
		}
	}
	return false
}

// Reconcile folds an edited view back into the canonical ledger. When the
// views match, canonical is returned as is and changed is false. Otherwise the
// candidate becomes the ledger through ReplaceAll: rows missing from it are
// deleted, extra rows are kept as new lines, and every total is recomputed.
func Reconcile(canonical Ledger, candidate []LineItem) (next Ledger, changed bool, err error) {
	if !Differs(canonical, candidate) {
		return canonical, false, nil
	}
	next, err = canonical.ReplaceAll(candidate)
	if err != nil {
		return canonical, false, err
	}
	return next, true, nil
}
