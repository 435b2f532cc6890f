// Package seed populates an empty store from an external JSON source.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"placehold/internal/auth"
	"placehold/internal/models"
	"placehold/internal/observability"
	"placehold/internal/repository"

	"gorm.io/gorm"
)

// record mirrors the shape of the remote source: a JSONPlaceholder-style
// user object without credentials.
type record struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
	Address  struct {
		Street  string `json:"street"`
		Suite   string `json:"suite"`
		City    string `json:"city"`
		Zipcode string `json:"zipcode"`
		Geo     struct {
			Lat string `json:"lat"`
			Lng string `json:"lng"`
		} `json:"geo"`
	} `json:"address"`
	Company struct {
		Name        string `json:"name"`
		CatchPhrase string `json:"catchPhrase"`
		BS          string `json:"bs"`
	} `json:"company"`
}

// Seeder performs the one-shot startup population of the user store.
type Seeder struct {
	repo     repository.UserRepository
	client   *http.Client
	url      string
	password string
}

// NewSeeder returns a Seeder reading from url. Every seeded user gets the
// same default password.
func NewSeeder(db *gorm.DB, url, defaultPassword string) *Seeder {
	return &Seeder{
		repo:     repository.NewUserRepository(db),
		client:   &http.Client{Timeout: 10 * time.Second},
		url:      url,
		password: defaultPassword,
	}
}

// Run seeds the store. It is a no-op when any user already exists. Each
// fetched record is committed as its own transaction, so a failure partway
// through leaves a partial but internally consistent set of users. Errors are
// returned for the caller to log; they must never be fatal to the host
// process.
func (s *Seeder) Run(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed guard check failed: %w", err)
	}
	if count > 0 {
		slog.Info("seeder: store already populated, skipping", slog.Int64("users", count))
		return nil
	}

	records, err := s.fetch(ctx)
	if err != nil {
		return err
	}

	// One bcrypt round for the shared default credential, not one per user.
	hash, err := auth.HashPassword(s.password)
	if err != nil {
		return fmt.Errorf("failed to hash default password: %w", err)
	}

	created := 0
	for _, rec := range records {
		user := &models.User{
			Name:         rec.Name,
			Username:     rec.Username,
			Email:        rec.Email,
			PasswordHash: hash,
			Phone:        rec.Phone,
			Website:      rec.Website,
			Address: models.Address{
				Street:  rec.Address.Street,
				Suite:   rec.Address.Suite,
				City:    rec.Address.City,
				Zipcode: rec.Address.Zipcode,
				Geo: models.Geo{
					Lat: rec.Address.Geo.Lat,
					Lng: rec.Address.Geo.Lng,
				},
			},
			Company: models.Company{
				Name:        rec.Company.Name,
				CatchPhrase: rec.Company.CatchPhrase,
				BS:          rec.Company.BS,
			},
		}

		if err := s.repo.Create(ctx, user); err != nil {
			return fmt.Errorf("seeding aborted after %d users: create %q: %w", created, rec.Username, err)
		}
		created++
		observability.SeededUsers.Inc()
	}

	slog.Info("seeder: finished", slog.Int("created", created))
	return nil
}

func (s *Seeder) fetch(ctx context.Context) ([]record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seed data: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("seed source returned status %d", resp.StatusCode)
	}

	var records []record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode seed data: %w", err)
	}
	return records, nil
}
