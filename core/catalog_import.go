package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Catalog is a parsed seed document: actors first, then movies referencing
// them by name.
type Catalog struct {
	Actors []CatalogActor
	Movies []CatalogMovie
}

// CatalogActor is a seed entry for the actors table.
type CatalogActor struct {
	Name  string
	Bio   string
	Birth *time.Time
	Death *time.Time
}

// CatalogMovie is a seed entry for the movies table. Actors holds names that
// must be declared in the catalog's actors section.
type CatalogMovie struct {
	Title       string
	Description string
	Genre       Genre
	Director    Director
	ImagePath   string
	Featured    bool
	Rating      *float64
	ReleaseDate *time.Time
	Actors      []string
}

type catalogDoc struct {
	Actors []struct {
		Name  string `yaml:"name"`
		Bio   string `yaml:"bio"`
		Birth string `yaml:"birth"`
		Death string `yaml:"death"`
	} `yaml:"actors"`
	Movies []struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		Genre       struct {
			Name        string `yaml:"name"`
			Description string `yaml:"description"`
		} `yaml:"genre"`
		Director struct {
			Name string `yaml:"name"`
			Bio  string `yaml:"bio"`
		} `yaml:"director"`
		ImagePath   string   `yaml:"image_path"`
		Featured    bool     `yaml:"featured"`
		Rating      *float64 `yaml:"rating"`
		ReleaseDate string   `yaml:"release_date"`
		Actors      []string `yaml:"actors"`
	} `yaml:"movies"`
}

// ParseCatalog converts a YAML seed document into a validated Catalog.
func ParseCatalog(b []byte) (Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Catalog{}, fmt.Errorf("invalid catalog yaml: %w", err)
	}

	var cat Catalog
	seenActors := map[string]struct{}{}
	for i, a := range doc.Actors {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return Catalog{}, fmt.Errorf("actors[%d]: name is required", i)
		}
		if _, dup := seenActors[name]; dup {
			return Catalog{}, fmt.Errorf("actors[%d]: duplicate actor %q", i, name)
		}
		seenActors[name] = struct{}{}

		birth, err := parseCatalogDate(a.Birth)
		if err != nil {
			return Catalog{}, fmt.Errorf("actors[%d] (%s): birth: %w", i, name, err)
		}
		death, err := parseCatalogDate(a.Death)
		if err != nil {
			return Catalog{}, fmt.Errorf("actors[%d] (%s): death: %w", i, name, err)
		}
		cat.Actors = append(cat.Actors, CatalogActor{
			Name:  name,
			Bio:   strings.TrimSpace(a.Bio),
			Birth: birth,
			Death: death,
		})
	}

	seenTitles := map[string]struct{}{}
	for i, m := range doc.Movies {
		title := strings.TrimSpace(m.Title)
		if title == "" {
			return Catalog{}, fmt.Errorf("movies[%d]: title is required", i)
		}
		if _, dup := seenTitles[title]; dup {
			return Catalog{}, fmt.Errorf("movies[%d]: duplicate title %q", i, title)
		}
		seenTitles[title] = struct{}{}
		if strings.TrimSpace(m.Description) == "" {
			return Catalog{}, fmt.Errorf("movies[%d] (%s): description is required", i, title)
		}

		release, err := parseCatalogDate(m.ReleaseDate)
		if err != nil {
			return Catalog{}, fmt.Errorf("movies[%d] (%s): release_date: %w", i, title, err)
		}

		var names []string
		for _, actorName := range m.Actors {
			actorName = strings.TrimSpace(actorName)
			if actorName == "" {
				continue
			}
			if _, ok := seenActors[actorName]; !ok {
				return Catalog{}, fmt.Errorf("movies[%d] (%s): actor %q is not declared in the actors section", i, title, actorName)
			}
			names = append(names, actorName)
		}

		cat.Movies = append(cat.Movies, CatalogMovie{
			Title:       title,
			Description: strings.TrimSpace(m.Description),
			Genre:       Genre{Name: strings.TrimSpace(m.Genre.Name), Description: strings.TrimSpace(m.Genre.Description)},
			Director:    Director{Name: strings.TrimSpace(m.Director.Name), Bio: strings.TrimSpace(m.Director.Bio)},
			ImagePath:   strings.TrimSpace(m.ImagePath),
			Featured:    m.Featured,
			Rating:      m.Rating,
			ReleaseDate: release,
			Actors:      names,
		})
	}

	if len(cat.Movies) == 0 {
		return Catalog{}, errors.New("catalog contains no movies")
	}
	return cat, nil
}

func parseCatalogDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return &t, nil
}

// SeedCatalog loads the catalog into the store. Existing actors and movies
// are kept as-is, so reseeding is safe.
func SeedCatalog(ctx context.Context, movies MovieRepository, actors ActorRepository, cat Catalog) error {
	actorIDs := make(map[string]int64, len(cat.Actors))
	for _, a := range cat.Actors {
		id, err := actors.Create(ctx, ActorRecord{Name: a.Name, Bio: a.Bio, Birth: a.Birth, Death: a.Death})
		if err != nil {
			return fmt.Errorf("seed actor %s: %w", a.Name, err)
		}
		actorIDs[a.Name] = id
	}

	for _, m := range cat.Movies {
		movieID, err := movies.Create(ctx, MovieInput{
			Title:       m.Title,
			Description: m.Description,
			Genre:       m.Genre,
			Director:    m.Director,
			ImagePath:   m.ImagePath,
			Featured:    m.Featured,
			Rating:      m.Rating,
			ReleaseDate: m.ReleaseDate,
		})
		if err != nil {
			return fmt.Errorf("seed movie %s: %w", m.Title, err)
		}
		for pos, actorName := range m.Actors {
			if err := movies.LinkActor(ctx, movieID, actorIDs[actorName], pos); err != nil {
				return fmt.Errorf("link %s to %s: %w", actorName, m.Title, err)
			}
		}
	}
	return nil
}
