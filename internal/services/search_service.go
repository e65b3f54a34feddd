package services

import (
	"log"
	"sort"
	"strings"

	"clubcare/internal/models"

	"gorm.io/gorm"
)

type catalogHit struct {
	Medicine models.Medicine
	Score    float64
}

// SearchService finds catalog entries for the app's search box: Postgres
// full-text search first, with a plain substring fallback for terms the FTS
// parser gets nothing out of
type SearchService struct {
	db *gorm.DB
}

func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{db: db}
}

// SearchCatalog returns published medicines ranked by relevance
func (s *SearchService) SearchCatalog(searchTerm string, limit, offset int) ([]models.Medicine, error) {
	cleanTerm := strings.TrimSpace(searchTerm)
	if cleanTerm == "" {
		return []models.Medicine{}, nil
	}

	var hits []catalogHit

	ftsHits, err := s.fullTextSearch(cleanTerm, limit+offset)
	if err != nil {
		log.Printf("FTS catalog search error: %v", err)
	} else {
		hits = append(hits, ftsHits...)
	}

	partialHits, err := s.partialSearch(cleanTerm)
	if err != nil {
		log.Printf("Partial catalog search error: %v", err)
	} else {
		hits = append(hits, partialHits...)
	}

	ranked := dedupeAndRank(hits)

	start := offset
	end := offset + limit
	if start >= len(ranked) {
		return []models.Medicine{}, nil
	}
	if end > len(ranked) {
		end = len(ranked)
	}

	results := make([]models.Medicine, 0, end-start)
	for _, hit := range ranked[start:end] {
		results = append(results, hit.Medicine)
	}
	return results, nil
}

// fullTextSearch ranks entries with Postgres FTS over name and description
func (s *SearchService) fullTextSearch(searchTerm string, limit int) ([]catalogHit, error) {
	tsquery := prepareTsquery(searchTerm)
	if tsquery == "" {
		return nil, nil
	}

	var rows []struct {
		models.Medicine
		Rank float64
	}
	err := s.db.Raw(`
		SELECT m.*,
		       ts_rank_cd(to_tsvector('english', m.name || ' ' || coalesce(m.description, '')),
		                  to_tsquery('english', ?), 1) AS rank
		FROM medicine m
		WHERE to_tsvector('english', m.name || ' ' || coalesce(m.description, ''))
		      @@ to_tsquery('english', ?)
		  AND m.published = true
		  AND m.deleted_at IS NULL
		ORDER BY rank DESC
		LIMIT ?
	`, tsquery, tsquery, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	hits := make([]catalogHit, 0, len(rows))
	for _, row := range rows {
		hits = append(hits, catalogHit{Medicine: row.Medicine, Score: row.Rank * 100})
	}
	return hits, nil
}

// partialSearch is the low-priority substring fallback
func (s *SearchService) partialSearch(searchTerm string) ([]catalogHit, error) {
	pattern := "%" + strings.ToLower(searchTerm) + "%"

	var rows []models.Medicine
	err := s.db.
		Where("published = ?", true).
		Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern, pattern).
		Limit(20).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	hits := make([]catalogHit, 0, len(rows))
	for _, row := range rows {
		score := 1.0
		if strings.Contains(strings.ToLower(row.Name), strings.ToLower(searchTerm)) {
			score = 3.0
		}
		hits = append(hits, catalogHit{Medicine: row, Score: score})
	}
	return hits, nil
}

// prepareTsquery converts user input to prefix-matching tsquery terms
func prepareTsquery(searchTerm string) string {
	terms := strings.Fields(strings.ToLower(searchTerm))
	if len(terms) == 0 {
		return ""
	}

	processed := make([]string, len(terms))
	for i, term := range terms {
		processed[i] = term + ":*"
	}
	return strings.Join(processed, " | ")
}

// dedupeAndRank keeps each entry's best score and sorts descending
func dedupeAndRank(hits []catalogHit) []catalogHit {
	best := make(map[uint]catalogHit)
	for _, hit := range hits {
		existing, ok := best[hit.Medicine.ID]
		if !ok || hit.Score > existing.Score {
			best[hit.Medicine.ID] = hit
		}
	}

	ranked := make([]catalogHit, 0, len(best))
	for _, hit := range best {
		ranked = append(ranked, hit)
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}
