package core

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// NewRouter constructs the Gin engine with routes wired. Registration, login,
// and the landing/health endpoints are public; everything else sits behind
// the bearer-token gate.
func NewRouter(cfg Config, tokens *TokenManager, authService AuthService,
	users UserRepository, movies MovieRepository, actors ActorRepository,
	cache *CatalogCache) *gin.Engine {

	r := gin.Default()

	r.Use(CORSMiddleware(cfg))
	r.Use(RequestTimeoutMiddleware(cfg.RequestTimeout))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to the world of movies!")
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/login", func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
			return
		}

		record, err := authService.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				// Same response for unknown username and wrong password.
				respondError(c, http.StatusBadRequest, "INVALID_CREDENTIALS", "incorrect username or password")
				return
			}
			respondStoreError(c, err)
			return
		}

		token, err := tokens.Issue(Identity{
			ID:        record.ID,
			Username:  record.Username,
			Email:     record.Email,
			CreatedAt: record.CreatedAt,
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to issue token")
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": userResponse(record), "token": token})
	})

	r.POST("/users", func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Email    string `json:"email"`
			Birthday string `json:"birthday"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
			return
		}

		fields := map[string]string{}
		if msg := validateUsername(req.Username); msg != "" {
			fields["username"] = msg
		}
		if req.Password == "" {
			fields["password"] = "password is required"
		}
		if msg := validateEmail(req.Email); msg != "" {
			fields["email"] = msg
		}
		birthDate, msg := parseBirthday(req.Birthday)
		if msg != "" {
			fields["birthday"] = msg
		}
		if len(fields) > 0 {
			respondValidationError(c, fields)
			return
		}

		hash, err := HashPassword(req.Password, cfg.BcryptCost)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to hash password")
			return
		}

		created, err := users.Create(c.Request.Context(), req.Username, hash, req.Email, birthDate)
		if err != nil {
			if errors.Is(err, ErrAlreadyExists) {
				respondError(c, http.StatusConflict, "CONFLICT", "username already exists")
				return
			}
			respondStoreError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user": userResponse(created)})
	})

	authed := r.Group("/")
	authed.Use(AuthRequired(tokens, users))
	{
		authed.GET("/users", func(c *gin.Context) {
			page, perPage, err := parsePagination(c.Query("page"), c.Query("per_page"))
			if err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
				return
			}
			items, total, err := users.List(c.Request.Context(), page, perPage)
			if err != nil {
				respondStoreError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"items":       items,
				"page":        page,
				"per_page":    perPage,
				"total_items": total,
				"total_pages": calcTotalPages(total, perPage),
			})
		})

		authed.PUT("/users/:username", func(c *gin.Context) {
			identity, ok := requireSelf(c)
			if !ok {
				return
			}

			var req struct {
				Username *string `json:"username"`
				Password *string `json:"password"`
				Email    *string `json:"email"`
				Birthday *string `json:"birthday"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
				return
			}

			current, err := users.FindByUsername(c.Request.Context(), identity.Username)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					respondError(c, http.StatusNotFound, "NOT_FOUND", "user not found")
					return
				}
				respondStoreError(c, err)
				return
			}

			fields := map[string]string{}
			upd := UserUpdate{
				Username:     current.Username,
				PasswordHash: current.PasswordHash,
				Email:        current.Email,
				BirthDate:    current.BirthDate,
			}
			if req.Username != nil {
				if msg := validateUsername(*req.Username); msg != "" {
					fields["username"] = msg
				} else {
					upd.Username = *req.Username
				}
			}
			if req.Email != nil {
				if msg := validateEmail(*req.Email); msg != "" {
					fields["email"] = msg
				} else {
					upd.Email = *req.Email
				}
			}
			if req.Birthday != nil {
				birthDate, msg := parseBirthday(*req.Birthday)
				if msg != "" {
					fields["birthday"] = msg
				} else {
					upd.BirthDate = birthDate
				}
			}
			if req.Password != nil {
				if len(*req.Password) < 6 {
					fields["password"] = "password must be at least 6 characters"
				} else {
					hash, err := HashPassword(*req.Password, cfg.BcryptCost)
					if err != nil {
						respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to hash password")
						return
					}
					upd.PasswordHash = hash
				}
			}
			if len(fields) > 0 {
				respondValidationError(c, fields)
				return
			}

			updated, err := users.Update(c.Request.Context(), identity.Username, upd)
			if err != nil {
				if errors.Is(err, ErrAlreadyExists) {
					respondError(c, http.StatusConflict, "CONFLICT", "username already exists")
					return
				}
				if errors.Is(err, ErrNotFound) {
					respondError(c, http.StatusNotFound, "NOT_FOUND", "user not found")
					return
				}
				respondStoreError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"user": userResponse(updated)})
		})

		authed.DELETE("/users/:username", func(c *gin.Context) {
			identity, ok := requireSelf(c)
			if !ok {
				return
			}
			if err := users.Delete(c.Request.Context(), identity.Username); err != nil {
				if errors.Is(err, ErrNotFound) {
					respondError(c, http.StatusNotFound, "NOT_FOUND", identity.Username+" was not found")
					return
				}
				respondStoreError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"message": identity.Username + " was deleted."})
		})

		authed.GET("/users/:username/movies", func(c *gin.Context) {
			identity, ok := requireSelf(c)
			if !ok {
				return
			}
			record, err := users.FindByUsername(c.Request.Context(), identity.Username)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					respondError(c, http.StatusNotFound, "NOT_FOUND", "user not found")
					return
				}
				respondStoreError(c, err)
				return
			}
			favorites := record.FavoriteMovies
			if favorites == nil {
				favorites = []int64{}
			}
			c.JSON(http.StatusOK, gin.H{
				"username":       record.Username,
				"favoriteMovies": favorites,
			})
		})

		authed.POST("/users/:username/movies/:movieId", func(c *gin.Context) {
			identity, ok := requireSelf(c)
			if !ok {
				return
			}
			movieID, err := strconv.ParseInt(c.Param("movieId"), 10, 64)
			if err != nil || movieID <= 0 {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid movie id")
				return
			}

			exists, err := movies.Exists(c.Request.Context(), movieID)
			if err != nil {
				respondStoreError(c, err)
				return
			}
			if !exists {
				respondError(c, http.StatusNotFound, "NOT_FOUND", "movie not found")
				return
			}

			record, err := users.AddFavorite(c.Request.Context(), identity.Username, movieID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					respondError(c, http.StatusNotFound, "NOT_FOUND", "user not found")
					return
				}
				respondStoreError(c, err)
				return
			}
			c.JSON(http.StatusCreated, gin.H{"user": userResponse(record)})
		})

		authed.DELETE("/users/:username/movies/:movieId", func(c *gin.Context) {
			identity, ok := requireSelf(c)
			if !ok {
				return
			}
			movieID, err := strconv.ParseInt(c.Param("movieId"), 10, 64)
			if err != nil || movieID <= 0 {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid movie id")
				return
			}

			record, err := users.RemoveFavorite(c.Request.Context(), identity.Username, movieID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					respondError(c, http.StatusNotFound, "NOT_FOUND", identity.Username+" was not found")
					return
				}
				respondStoreError(c, err)
				return
			}
			favorites := record.FavoriteMovies
			if favorites == nil {
				favorites = []int64{}
			}
			c.JSON(http.StatusOK, gin.H{
				"username":       record.Username,
				"favoriteMovies": favorites,
			})
		})

		authed.GET("/movies", func(c *gin.Context) {
			page, perPage, err := parsePagination(c.Query("page"), c.Query("per_page"))
			if err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
				return
			}

			ctx := c.Request.Context()
			list, hit := cache.GetMovieList(ctx, page, perPage)
			if !hit {
				items, total, err := movies.List(ctx, page, perPage)
				if err != nil {
					respondStoreError(c, err)
					return
				}
				list = CachedMovieList{Items: items, Total: total}
				cache.SetMovieList(ctx, page, perPage, list)
			}

			c.JSON(http.StatusOK, gin.H{
				"movies":      list.Items,
				"page":        page,
				"per_page":    perPage,
				"total_items": list.Total,
				"total_pages": calcTotalPages(list.Total, perPage),
			})
		})

		authed.GET("/movies/:title", func(c *gin.Context) {
			movie, ok := lookupMovie(c, movies, cache)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, movie)
		})

		authed.GET("/movies/:title/rating", func(c *gin.Context) {
			movie, ok := lookupMovie(c, movies, cache)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, gin.H{"title": movie.Title, "rating": movie.Rating})
		})

		authed.GET("/movies/:title/releaseyear", func(c *gin.Context) {
			movie, ok := lookupMovie(c, movies, cache)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, gin.H{"title": movie.Title, "releaseYear": movie.ReleaseDate})
		})

		authed.GET("/genres/:name", func(c *gin.Context) {
			genre, err := movies.FindGenre(c.Request.Context(), c.Param("name"))
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					respondError(c, http.StatusNotFound, "NOT_FOUND", "no movies found for this genre")
					return
				}
				respondStoreError(c, err)
				return
			}
			c.JSON(http.StatusOK, genre)
		})

		authed.GET("/directors/:name", func(c *gin.Context) {
			director, err := movies.FindDirector(c.Request.Context(), c.Param("name"))
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					respondError(c, http.StatusNotFound, "NOT_FOUND", "director not found")
					return
				}
				respondStoreError(c, err)
				return
			}
			c.JSON(http.StatusOK, director)
		})

		authed.GET("/actors/:name/movies", func(c *gin.Context) {
			ctx := c.Request.Context()
			actor, err := actors.FindByName(ctx, c.Param("name"))
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					respondError(c, http.StatusNotFound, "NOT_FOUND", "actor not found")
					return
				}
				respondStoreError(c, err)
				return
			}

			actorMovies, err := actors.MoviesByActor(ctx, actor.ID)
			if err != nil {
				respondStoreError(c, err)
				return
			}
			if len(actorMovies) == 0 {
				respondError(c, http.StatusNotFound, "NOT_FOUND", "no movies found for this actor")
				return
			}
			c.JSON(http.StatusOK, gin.H{"actor": actor.Name, "movies": actorMovies})
		})
	}

	return r
}

// lookupMovie resolves the :title parameter through the cache with a store
// fallback. On failure it writes the response and returns ok=false.
func lookupMovie(c *gin.Context, movies MovieRepository, cache *CatalogCache) (*MovieRecord, bool) {
	ctx := c.Request.Context()
	title := strings.TrimSpace(c.Param("title"))

	if movie, hit := cache.GetMovie(ctx, title); hit {
		return movie, true
	}

	movie, err := movies.FindByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "movie not found")
			return nil, false
		}
		respondStoreError(c, err)
		return nil, false
	}
	cache.SetMovie(ctx, title, *movie)
	return movie, true
}
