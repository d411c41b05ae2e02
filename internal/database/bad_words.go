package database

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"spellinghive/internal/logger"
)

// BadWordsURL is the public word list used to screen generated content
const BadWordsURL = "https://raw.githubusercontent.com/LDNOOBW/List-of-Dirty-Naughty-Obscene-and-Otherwise-Bad-Words/refs/heads/master/en"

// SeedBadWords fetches the bad words list and stores it, unless already populated
func (db *DB) SeedBadWords(ctx context.Context, url string, log *logger.Logger) error {
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM bad_words"); err != nil {
		return fmt.Errorf("failed to check bad words count: %w", err)
	}

	if count > 0 {
		log.Info("Bad words filter already populated", "count", count)
		return nil
	}

	log.Info("Downloading bad words list", "url", url)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download bad words list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status code from bad words URL: %d", resp.StatusCode)
	}

	added, err := db.LoadBadWords(ctx, resp.Body)
	if err != nil {
		return err
	}

	log.Info("Bad words filter populated", "count", added)
	return nil
}

// LoadBadWords inserts one word per line from r, skipping blanks and duplicates
func (db *DB) LoadBadWords(ctx context.Context, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	added := 0

	err := db.RunInTx(ctx, func(ctx context.Context) error {
		q := db.Querier(ctx)
		seen := make(map[string]bool)
		for scanner.Scan() {
			word := strings.TrimSpace(strings.ToLower(scanner.Text()))
			if word == "" || seen[word] {
				continue
			}
			seen[word] = true

			if _, err := q.ExecContext(ctx, "INSERT INTO bad_words (word) VALUES (?)", word); err != nil {
				return fmt.Errorf("failed to insert bad word: %w", err)
			}
			added++
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("error reading bad words: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// FindBadWords returns the words from the list that appear in the filter
func (db *DB) FindBadWords(ctx context.Context, words []string) ([]string, error) {
	if len(words) == 0 {
		return nil, nil
	}

	clean := make([]string, 0, len(words))
	for _, w := range words {
		clean = append(clean, strings.TrimSpace(strings.ToLower(w)))
	}

	query, args, err := sqlx.In("SELECT word FROM bad_words WHERE word IN (?)", clean)
	if err != nil {
		return nil, fmt.Errorf("failed to build bad word query: %w", err)
	}

	var found []string
	if err := db.Querier(ctx).SelectContext(ctx, &found, query, args...); err != nil {
		return nil, fmt.Errorf("failed to check bad words: %w", err)
	}
	return found, nil
}
