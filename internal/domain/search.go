package domain

import (
	"sort"
	"strings"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Position bonus (earlier is better)
	ScorePositionBonus = 10.0

	// Exact title match bonus
	ScoreExactTitleBonus = 200.0

	// Category matches count for less than title matches
	ScoreCategoryWeight = 0.2
)

// SearchResult is a bookmark with its match score.
type SearchResult struct {
	Bookmark Bookmark `json:"bookmark"`
	Score    float64  `json:"score"`
}

// ScoreBookmark scores a bookmark against a query: title first, category as a bonus.
func ScoreBookmark(queryStr string, bookmark Bookmark) float64 {
	queryStr = strings.ToLower(strings.TrimSpace(queryStr))
	if queryStr == "" {
		return 0.0
	}

	score := scoreText(queryStr, strings.ToLower(bookmark.Title))
	if score >= ScoreExactMatch+ScoreExactTitleBonus {
		return score
	}

	category := strings.ToLower(CategoryOrDefault(bookmark.Category))
	return score + scoreText(queryStr, category)*ScoreCategoryWeight
}

// scoreText is the lexical scorer shared by title and category.
func scoreText(queryStr, text string) float64 {
	if text == "" {
		return 0.0
	}

	// Exact match (highest score)
	if queryStr == text {
		return ScoreExactMatch + ScoreExactTitleBonus
	}

	// Prefix match
	if strings.HasPrefix(text, queryStr) {
		return ScorePrefixMatch
	}

	// Substring match
	if index := strings.Index(text, queryStr); index >= 0 {
		// Earlier substring matches get higher score
		substringBonus := ScorePositionBonus * (1.0 - float64(index)/float64(len(text)))
		return ScoreSubstringMatch + substringBonus
	}

	// Word-based match: every query word appears somewhere
	queryWords := strings.Fields(queryStr)
	if len(queryWords) > 1 {
		allMatch := true
		for _, word := range queryWords {
			if !strings.Contains(text, word) {
				allMatch = false
				break
			}
		}
		if allMatch {
			return ScoreFuzzyMatch
		}
	}

	// Character similarity
	similarity := calculateSimilarity(queryStr, text)
	if similarity > 0.5 {
		return ScoreFuzzyMatch * similarity
	}

	return 0.0
}

// calculateSimilarity is the share of query runes that appear in s2.
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0.0
	}

	matches, total := 0, 0
	for _, c := range s1 {
		total++
		if strings.ContainsRune(s2, c) {
			matches++
		}
	}

	return float64(matches) / float64(total)
}

// Search ranks the bookmarks matching query, best first.
// Ties keep list order.
func Search(queryStr string, bookmarks []Bookmark) []SearchResult {
	results := make([]SearchResult, 0, len(bookmarks))

	for _, bookmark := range bookmarks {
		score := ScoreBookmark(queryStr, bookmark)

		// Skip bookmarks with zero score (no match)
		if score == 0.0 {
			continue
		}

		results = append(results, SearchResult{
			Bookmark: bookmark,
			Score:    score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}
