package models

import "fmt"

// RuleKey is one of the bounded set of per-match rule settings.
type RuleKey string

const (
	RuleScoring     RuleKey = "scoring"      // e.g. "best_of_3", "first_to_21"
	RuleMatchFormat RuleKey = "match_format" // e.g. "singles", "doubles", "5v5"
	RuleEquipment   RuleKey = "equipment"    // e.g. "bring_own_racket"
	RuleNotes       RuleKey = "notes"        // free-form note shown to joiners
)

// Rules is a typed key-value map of match rules. Only the keys above
// are accepted; anything else is rejected at creation time.
type Rules map[RuleKey]string

func (r Rules) Validate() error {
	for key := range r {
		switch key {
		case RuleScoring, RuleMatchFormat, RuleEquipment, RuleNotes:
		default:
			return fmt.Errorf("unknown rule key %q", key)
		}
	}
	return nil
}
