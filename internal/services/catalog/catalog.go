package catalog

import (
	"context"
	"errors"
	"log/slog"

	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/services/ratings"
	"reviewhub/proj/internal/storage"
)

type CategoryStorage interface {
	Insert(ctx context.Context, name, slug string) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context, search string, filters filters.Filters) ([]models.Category, int, error)
	Delete(ctx context.Context, slug string) error
}

type GenreStorage interface {
	Insert(ctx context.Context, name, slug string) (*models.Genre, error)
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	List(ctx context.Context, search string, filters filters.Filters) ([]models.Genre, int, error)
	Delete(ctx context.Context, slug string) error
}

type TitleStorage interface {
	Get(ctx context.Context, id int64) (*models.Title, error)
	List(ctx context.Context, f filters.TitleFilters) ([]models.Title, int, error)
	Insert(ctx context.Context, name string, year int32, description *string, categoryID *int64, genreIDs []int64) (*models.Title, error)
	Update(ctx context.Context, title *models.Title, genreIDs []int64, replaceGenres bool) (*models.Title, error)
	Delete(ctx context.Context, id int64) error
}

type ScoreStorage interface {
	ScoresForTitle(ctx context.Context, titleID int64) ([]int, error)
}

type CatalogService struct {
	log        *slog.Logger
	categories CategoryStorage
	genres     GenreStorage
	titles     TitleStorage
	scores     ScoreStorage
}

func New(log *slog.Logger, categories CategoryStorage, genres GenreStorage, titles TitleStorage, scores ScoreStorage) *CatalogService {
	return &CatalogService{
		log:        log,
		categories: categories,
		genres:     genres,
		titles:     titles,
		scores:     scores,
	}
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, slug string) (*models.Category, error) {
	const op = "catalog.CatalogService.CreateCategory"
	log := s.log.With("op", op, "slug", slug)
	category, err := s.categories.Insert(ctx, name, slug)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("category already exists")
			return nil, ErrCategoryAlreadyExists
		}
		log.Error(err.Error())
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context, search string, filters filters.Filters) ([]models.Category, int, error) {
	const op = "catalog.CatalogService.ListCategories"
	categories, total, err := s.categories.List(ctx, search, filters)
	if err != nil {
		s.log.With("op", op).Error(err.Error())
		return nil, 0, err
	}
	return categories, total, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	const op = "catalog.CatalogService.DeleteCategory"
	log := s.log.With("op", op, "slug", slug)
	if err := s.categories.Delete(ctx, slug); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("category not found")
			return ErrCategoryNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}

func (s *CatalogService) CreateGenre(ctx context.Context, name, slug string) (*models.Genre, error) {
	const op = "catalog.CatalogService.CreateGenre"
	log := s.log.With("op", op, "slug", slug)
	genre, err := s.genres.Insert(ctx, name, slug)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("genre already exists")
			return nil, ErrGenreAlreadyExists
		}
		log.Error(err.Error())
		return nil, err
	}
	return genre, nil
}

func (s *CatalogService) ListGenres(ctx context.Context, search string, filters filters.Filters) ([]models.Genre, int, error) {
	const op = "catalog.CatalogService.ListGenres"
	genres, total, err := s.genres.List(ctx, search, filters)
	if err != nil {
		s.log.With("op", op).Error(err.Error())
		return nil, 0, err
	}
	return genres, total, nil
}

func (s *CatalogService) DeleteGenre(ctx context.Context, slug string) error {
	const op = "catalog.CatalogService.DeleteGenre"
	log := s.log.With("op", op, "slug", slug)
	if err := s.genres.Delete(ctx, slug); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("genre not found")
			return ErrGenreNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}

// TitleInput references category and genres by slug, the way writes arrive
// on the wire. Nil pointers mean "not supplied" so PATCH can stay partial.
type TitleInput struct {
	Name        *string
	Year        *int32
	Description *string
	Category    *string
	Genres      *[]string
}

func (s *CatalogService) GetTitle(ctx context.Context, id int64) (*models.Title, error) {
	const op = "catalog.CatalogService.GetTitle"
	log := s.log.With("op", op, "id", id)
	title, err := s.titles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("title not found")
			return nil, ErrTitleNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	if err := s.attachRating(ctx, title); err != nil {
		log.Error(err.Error())
		return nil, err
	}
	return title, nil
}

func (s *CatalogService) ListTitles(ctx context.Context, f filters.TitleFilters) ([]models.Title, int, error) {
	const op = "catalog.CatalogService.ListTitles"
	log := s.log.With("op", op)
	titles, total, err := s.titles.List(ctx, f)
	if err != nil {
		log.Error(err.Error())
		return nil, 0, err
	}
	for i := range titles {
		if err := s.attachRating(ctx, &titles[i]); err != nil {
			log.Error(err.Error())
			return nil, 0, err
		}
	}
	return titles, total, nil
}

func (s *CatalogService) CreateTitle(ctx context.Context, input TitleInput) (*models.Title, error) {
	const op = "catalog.CatalogService.CreateTitle"
	log := s.log.With("op", op, "name", input.Name)
	categoryID, err := s.resolveCategory(ctx, input.Category)
	if err != nil {
		return nil, err
	}
	var genreIDs []int64
	if input.Genres != nil {
		genreIDs, err = s.resolveGenres(ctx, *input.Genres)
		if err != nil {
			return nil, err
		}
	}
	title, err := s.titles.Insert(ctx, *input.Name, *input.Year, input.Description, categoryID, genreIDs)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	if err := s.attachRating(ctx, title); err != nil {
		log.Error(err.Error())
		return nil, err
	}
	return title, nil
}

func (s *CatalogService) UpdateTitle(ctx context.Context, id int64, input TitleInput) (*models.Title, error) {
	const op = "catalog.CatalogService.UpdateTitle"
	log := s.log.With("op", op, "id", id)
	title, err := s.titles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("title not found")
			return nil, ErrTitleNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	if input.Name != nil {
		title.Name = *input.Name
	}
	if input.Year != nil {
		title.Year = *input.Year
	}
	if input.Description != nil {
		title.Description = input.Description
	}
	if input.Category != nil {
		categoryID, err := s.resolveCategory(ctx, input.Category)
		if err != nil {
			return nil, err
		}
		title.Category = &models.Category{ID: *categoryID}
	}
	var genreIDs []int64
	replaceGenres := input.Genres != nil
	if replaceGenres {
		genreIDs, err = s.resolveGenres(ctx, *input.Genres)
		if err != nil {
			return nil, err
		}
	}
	updated, err := s.titles.Update(ctx, title, genreIDs, replaceGenres)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTitleNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	if err := s.attachRating(ctx, updated); err != nil {
		log.Error(err.Error())
		return nil, err
	}
	return updated, nil
}

func (s *CatalogService) DeleteTitle(ctx context.Context, id int64) error {
	const op = "catalog.CatalogService.DeleteTitle"
	log := s.log.With("op", op, "id", id)
	if err := s.titles.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("title not found")
			return ErrTitleNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}

// attachRating recomputes the derived rating from a fresh review scan;
// the value is never cached or stored.
func (s *CatalogService) attachRating(ctx context.Context, title *models.Title) error {
	scores, err := s.scores.ScoresForTitle(ctx, title.ID)
	if err != nil {
		return err
	}
	title.Rating = ratings.Compute(scores)
	return nil
}

func (s *CatalogService) resolveCategory(ctx context.Context, slug *string) (*int64, error) {
	if slug == nil {
		return nil, nil
	}
	category, err := s.categories.GetBySlug(ctx, *slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category.ID, nil
}

func (s *CatalogService) resolveGenres(ctx context.Context, slugs []string) ([]int64, error) {
	genres, err := s.genres.GetBySlugs(ctx, slugs)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}
	ids := make([]int64, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	return ids, nil
}
