package core

import (
	"context"
	"strings"
	"testing"
)

const sampleCatalog = `
actors:
  - name: Leonardo DiCaprio
    bio: American actor
    birth: "1974-11-11"
  - name: Joseph Gordon-Levitt
    bio: American actor
movies:
  - title: Inception
    description: A thief steals secrets through dream-sharing technology.
    genre:
      name: Thriller
      description: Tense and suspenseful.
    director:
      name: Christopher Nolan
      bio: British-American director.
    image_path: inception.png
    featured: true
    rating: 8.8
    release_date: "2010-07-16"
    actors:
      - Leonardo DiCaprio
      - Joseph Gordon-Levitt
`

func TestParseCatalog(t *testing.T) {
	cat, err := ParseCatalog([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cat.Actors) != 2 || len(cat.Movies) != 1 {
		t.Fatalf("got %d actors, %d movies", len(cat.Actors), len(cat.Movies))
	}
	m := cat.Movies[0]
	if m.Title != "Inception" || m.Genre.Name != "Thriller" || m.Director.Name != "Christopher Nolan" {
		t.Fatalf("unexpected movie: %+v", m)
	}
	if m.Rating == nil || *m.Rating != 8.8 {
		t.Fatalf("rating = %v", m.Rating)
	}
	if m.ReleaseDate == nil || m.ReleaseDate.Format("2006-01-02") != "2010-07-16" {
		t.Fatalf("release date = %v", m.ReleaseDate)
	}
	if len(m.Actors) != 2 {
		t.Fatalf("actors = %v", m.Actors)
	}
	if cat.Actors[0].Birth == nil || cat.Actors[0].Birth.Format("2006-01-02") != "1974-11-11" {
		t.Fatalf("actor birth = %v", cat.Actors[0].Birth)
	}
}

func TestParseCatalogRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "undeclared actor",
			yaml: "movies:\n  - title: X\n    description: d\n    actors: [Nobody]\n",
			want: "not declared",
		},
		{
			name: "missing title",
			yaml: "movies:\n  - description: d\n",
			want: "title is required",
		},
		{
			name: "missing description",
			yaml: "movies:\n  - title: X\n",
			want: "description is required",
		},
		{
			name: "duplicate title",
			yaml: "movies:\n  - title: X\n    description: d\n  - title: X\n    description: d\n",
			want: "duplicate title",
		},
		{
			name: "bad date",
			yaml: "movies:\n  - title: X\n    description: d\n    release_date: 16/07/2010\n",
			want: "YYYY-MM-DD",
		},
		{
			name: "empty catalog",
			yaml: "actors: []\nmovies: []\n",
			want: "no movies",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tc.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want substring %q", err, tc.want)
			}
		})
	}
}

func TestSeedCatalogIsRepeatable(t *testing.T) {
	cat, err := ParseCatalog([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	movies := newMemMovieRepo()
	actors := newMemActorRepo(movies)
	ctx := context.Background()

	if err := SeedCatalog(ctx, movies, actors, cat); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := SeedCatalog(ctx, movies, actors, cat); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	if len(movies.movies) != 1 {
		t.Fatalf("got %d movies after reseeding, want 1", len(movies.movies))
	}
	if len(actors.actors) != 2 {
		t.Fatalf("got %d actors after reseeding, want 2", len(actors.actors))
	}
}
