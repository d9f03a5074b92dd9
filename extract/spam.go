package extract

// spamThreshold returns the configured threshold, or the spec.md §4.7
// default of 100 when unset.
func spamThreshold(ectx *Context) int {
	if ectx.SpamDomainThreshold <= 0 {
		return 100
	}
	return ectx.SpamDomainThreshold
}

// dampenSpamKeyed implements the spam-adaptation rule from spec.md §4.7:
// count registrable domains (via keyFn) across items; any domain
// accounting for >= threshold entries in this single list has its items
// dropped. Returns the surviving items and the set of newly-identified
// spam domains, which the caller folds into the in-memory evil set for
// this ingest.
func dampenSpamKeyed[T any](ectx *Context, items []T, keyFn func(T) string) (kept []T, spamDomains map[string]struct{}) {
	counts := map[string]int{}
	for _, item := range items {
		counts[ectx.BaseDomainOf(keyFn(item))]++
	}

	threshold := spamThreshold(ectx)
	spamDomains = map[string]struct{}{}
	for domain, count := range counts {
		if count >= threshold {
			spamDomains[domain] = struct{}{}
		}
	}

	if len(spamDomains) == 0 {
		return items, spamDomains
	}

	if ectx.OnSpamDomain != nil {
		for domain := range spamDomains {
			ectx.OnSpamDomain(domain)
		}
	}

	for _, item := range items {
		domain := ectx.BaseDomainOf(keyFn(item))
		if _, spam := spamDomains[domain]; spam {
			continue
		}
		kept = append(kept, item)
	}
	return kept, spamDomains
}
