package services

import (
	"sort"
	"strings"

	"family-ledger/internal/models"

	"github.com/google/uuid"
)

// Categorizer assigns a category to a normalized entry by matching the
// family's category tags against the entry description. Matching is
// case-insensitive substring containment; when several categories match,
// the one with the longest matching tag wins so "supermarket" beats "super".
type Categorizer struct {
	defaultCategoryID uuid.UUID
	rules             []categoryRule
}

type categoryRule struct {
	categoryID uuid.UUID
	tag        string
}

// NewCategorizer builds a categorizer over a family's category set. The
// default category is the fallback for entries no tag matches; every
// family is expected to have exactly one.
func NewCategorizer(categories []models.Category, defaultCategoryID uuid.UUID) *Categorizer {
	rules := make([]categoryRule, 0)
	for _, c := range categories {
		for _, tag := range c.Tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			rules = append(rules, categoryRule{categoryID: c.ID, tag: tag})
		}
	}

	// Longest tag first so the most specific match is found first.
	// Ties break alphabetically to keep assignment deterministic.
	sort.Slice(rules, func(i, j int) bool {
		if len(rules[i].tag) != len(rules[j].tag) {
			return len(rules[i].tag) > len(rules[j].tag)
		}
		return rules[i].tag < rules[j].tag
	})

	return &Categorizer{
		defaultCategoryID: defaultCategoryID,
		rules:             rules,
	}
}

// Resolve returns the category for a description, falling back to the
// family default when no tag matches.
func (c *Categorizer) Resolve(description string) uuid.UUID {
	haystack := strings.ToLower(description)
	for _, rule := range c.rules {
		if strings.Contains(haystack, rule.tag) {
			return rule.categoryID
		}
	}
	return c.defaultCategoryID
}

// DefaultCategoryID exposes the fallback category.
func (c *Categorizer) DefaultCategoryID() uuid.UUID {
	return c.defaultCategoryID
}
