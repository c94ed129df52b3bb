package engine

import "slices"

// SubscriptionIndex maps state keys to the rules that depend on them. It
// also records which provider owns each key; the set of owned keys is the
// key universe and is fixed once providers are registered.
//
// Rules are referenced by their index in the engine's rule arena.
type SubscriptionIndex struct {
	owners map[string]string
	subs   map[string][]int
}

// NewSubscriptionIndex creates an empty index.
func NewSubscriptionIndex() *SubscriptionIndex {
	return &SubscriptionIndex{
		owners: make(map[string]string),
		subs:   make(map[string][]int),
	}
}

// Claim registers keys as supplied by provider. Keys already owned by
// another provider stay with their first owner and are returned as
// conflicts.
func (x *SubscriptionIndex) Claim(provider string, keys []string) (conflicts []string) {
	for _, k := range keys {
		if owner, ok := x.owners[k]; ok && owner != provider {
			conflicts = append(conflicts, k)
			continue
		}
		x.owners[k] = provider
	}
	return conflicts
}

// Owner returns the provider that owns key.
func (x *SubscriptionIndex) Owner(key string) (string, bool) {
	p, ok := x.owners[key]
	return p, ok
}

// Known reports whether key is part of the key universe.
func (x *SubscriptionIndex) Known(key string) bool {
	_, ok := x.owners[key]
	return ok
}

// Keys returns the key universe in sorted order.
func (x *SubscriptionIndex) Keys() []string {
	keys := make([]string, 0, len(x.owners))
	for k := range x.owners {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Subscribe indexes rule under every key. Either all keys are indexed or,
// if one is unknown, none are and that key is returned.
func (x *SubscriptionIndex) Subscribe(rule int, keys []string) (unknown string, ok bool) {
	for _, k := range keys {
		if !x.Known(k) {
			return k, false
		}
	}
	for _, k := range keys {
		if !slices.Contains(x.subs[k], rule) {
			x.subs[k] = append(x.subs[k], rule)
		}
	}
	return "", true
}

// Rules returns the rules subscribed to key in subscription order.
func (x *SubscriptionIndex) Rules(key string) []int {
	return x.subs[key]
}

// Subscribed reports whether rule appears under any key.
func (x *SubscriptionIndex) Subscribed(rule int) bool {
	for _, rules := range x.subs {
		if slices.Contains(rules, rule) {
			return true
		}
	}
	return false
}
