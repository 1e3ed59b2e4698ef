// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import "github.com/danielhkuo/live-poll/models"

// ComputeTallies groups votes by question and option and counts them.
// Input order does not matter. Options are counted verbatim, including
// ones the catalog does not know about.
func ComputeTallies(votes []models.Vote) models.Tally {
	result := make(models.Tally)

	for _, vote := range votes {
		// Best effort: a record without an option only loses its own key
		if vote.SelectedOption == "" {
			continue
		}

		options, ok := result[vote.QuestionID]
		if !ok {
			options = make(map[string]int)
			result[vote.QuestionID] = options
		}
		options[vote.SelectedOption]++
	}

	return result
}

// Total returns the number of votes counted for a question
func Total(t models.Tally, questionID int) int {
	total := 0
	for _, count := range t[questionID] {
		total += count
	}
	return total
}

// Equal reports whether two tallies hold exactly the same counts
func Equal(a, b models.Tally) bool {
	if len(a) != len(b) {
		return false
	}
	for questionID, optionsA := range a {
		optionsB, ok := b[questionID]
		if !ok || len(optionsA) != len(optionsB) {
			return false
		}
		for option, count := range optionsA {
			if optionsB[option] != count {
				return false
			}
		}
	}
	return true
}
