package feedback

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"reviewhub/proj/internal/domain/fields"
	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTitleStorage struct {
	titles map[int64]*models.Title
}

func (s *fakeTitleStorage) Get(ctx context.Context, id int64) (*models.Title, error) {
	title, ok := s.titles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return title, nil
}

type fakeReviewStorage struct {
	reviews map[int64]*models.Review
	nextID  int64
	// forces the unique-index conflict path even when the
	// pre-check saw nothing
	conflictOnInsert bool
}

func (s *fakeReviewStorage) Insert(ctx context.Context, titleID, authorID int64, text string, score int) (*models.Review, error) {
	if s.conflictOnInsert {
		return nil, storage.ErrConflict
	}
	for _, r := range s.reviews {
		if r.TitleID == titleID && r.AuthorID == authorID {
			return nil, storage.ErrConflict
		}
	}
	s.nextID++
	review := &models.Review{
		ID:       s.nextID,
		TitleID:  titleID,
		AuthorID: authorID,
		Text:     text,
		Score:    score,
		PubDate:  time.Now(),
	}
	s.reviews[review.ID] = review
	return review, nil
}

func (s *fakeReviewStorage) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, ok := s.reviews[reviewID]
	if !ok || review.TitleID != titleID {
		return nil, storage.ErrNotFound
	}
	return review, nil
}

func (s *fakeReviewStorage) ListForTitle(ctx context.Context, titleID int64, filters filters.Filters) ([]models.Review, int, error) {
	var out []models.Review
	for _, r := range s.reviews {
		if r.TitleID == titleID {
			out = append(out, *r)
		}
	}
	return out, len(out), nil
}

func (s *fakeReviewStorage) ExistsForAuthor(ctx context.Context, titleID, authorID int64) (bool, error) {
	for _, r := range s.reviews {
		if r.TitleID == titleID && r.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeReviewStorage) Update(ctx context.Context, review *models.Review) (*models.Review, error) {
	if _, ok := s.reviews[review.ID]; !ok {
		return nil, storage.ErrNotFound
	}
	s.reviews[review.ID] = review
	return review, nil
}

func (s *fakeReviewStorage) Delete(ctx context.Context, titleID, reviewID int64) error {
	review, ok := s.reviews[reviewID]
	if !ok || review.TitleID != titleID {
		return storage.ErrNotFound
	}
	delete(s.reviews, reviewID)
	return nil
}

type fakeCommentStorage struct {
	comments map[int64]*models.Comment
	nextID   int64
}

func (s *fakeCommentStorage) Insert(ctx context.Context, reviewID, authorID int64, text string) (*models.Comment, error) {
	s.nextID++
	comment := &models.Comment{
		ID:       s.nextID,
		ReviewID: reviewID,
		AuthorID: authorID,
		Text:     text,
		PubDate:  time.Now(),
	}
	s.comments[comment.ID] = comment
	return comment, nil
}

func (s *fakeCommentStorage) Get(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	comment, ok := s.comments[commentID]
	if !ok || comment.ReviewID != reviewID {
		return nil, storage.ErrNotFound
	}
	return comment, nil
}

func (s *fakeCommentStorage) ListForReview(ctx context.Context, reviewID int64, filters filters.Filters) ([]models.Comment, int, error) {
	var out []models.Comment
	for _, c := range s.comments {
		if c.ReviewID == reviewID {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func (s *fakeCommentStorage) Update(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if _, ok := s.comments[comment.ID]; !ok {
		return nil, storage.ErrNotFound
	}
	s.comments[comment.ID] = comment
	return comment, nil
}

func (s *fakeCommentStorage) Delete(ctx context.Context, reviewID, commentID int64) error {
	comment, ok := s.comments[commentID]
	if !ok || comment.ReviewID != reviewID {
		return storage.ErrNotFound
	}
	delete(s.comments, commentID)
	return nil
}

const testTitleID = 1

func newTestService(t *testing.T) (*FeedbackService, *fakeReviewStorage, *fakeCommentStorage) {
	t.Helper()
	titles := &fakeTitleStorage{titles: map[int64]*models.Title{
		testTitleID: {ID: testTitleID, Name: "Test Title", Year: 2000},
	}}
	reviews := &fakeReviewStorage{reviews: make(map[int64]*models.Review)}
	comments := &fakeCommentStorage{comments: make(map[int64]*models.Comment)}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, titles, reviews, comments), reviews, comments
}

func regularUser(id int64) *models.User {
	return &models.User{ID: id, Username: "test", Role: fields.RoleUser}
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()
	t.Run("Success", func(t *testing.T) {
		service, _, _ := newTestService(t)
		review, err := service.CreateReview(ctx, regularUser(1), testTitleID, "great", 9)
		require.NoError(t, err)
		assert.Equal(t, 9, review.Score)
	})
	t.Run("Anonymous", func(t *testing.T) {
		service, _, _ := newTestService(t)
		_, err := service.CreateReview(ctx, models.AnonymousUser, testTitleID, "great", 9)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
	t.Run("UnknownTitle", func(t *testing.T) {
		service, _, _ := newTestService(t)
		_, err := service.CreateReview(ctx, regularUser(1), 404, "great", 9)
		assert.ErrorIs(t, err, ErrTitleNotFound)
	})
	t.Run("SecondReviewFromSameAuthor", func(t *testing.T) {
		service, _, _ := newTestService(t)
		_, err := service.CreateReview(ctx, regularUser(1), testTitleID, "great", 9)
		require.NoError(t, err)
		_, err = service.CreateReview(ctx, regularUser(1), testTitleID, "changed my mind", 2)
		assert.ErrorIs(t, err, ErrReviewAlreadyExists)
	})
	t.Run("SecondAuthorAllowed", func(t *testing.T) {
		service, _, _ := newTestService(t)
		_, err := service.CreateReview(ctx, regularUser(1), testTitleID, "great", 9)
		require.NoError(t, err)
		_, err = service.CreateReview(ctx, regularUser(2), testTitleID, "meh", 4)
		assert.NoError(t, err)
	})
	t.Run("ConstraintConflictMapped", func(t *testing.T) {
		// Simulates a duplicate slipping in between the pre-check and
		// the insert.
		service, reviews, _ := newTestService(t)
		reviews.conflictOnInsert = true
		_, err := service.CreateReview(ctx, regularUser(1), testTitleID, "great", 9)
		assert.ErrorIs(t, err, ErrReviewAlreadyExists)
	})
}

func TestUpdateReview(t *testing.T) {
	ctx := context.Background()
	newText := "updated"
	t.Run("AuthorCanUpdate", func(t *testing.T) {
		service, _, _ := newTestService(t)
		review, err := service.CreateReview(ctx, regularUser(1), testTitleID, "great", 9)
		require.NoError(t, err)
		updated, err := service.UpdateReview(ctx, regularUser(1), testTitleID, review.ID, &newText, nil)
		require.NoError(t, err)
		assert.Equal(t, "updated", updated.Text)
		assert.Equal(t, 9, updated.Score)
	})
	t.Run("ModeratorCannotUpdate", func(t *testing.T) {
		service, _, _ := newTestService(t)
		review, err := service.CreateReview(ctx, regularUser(1), testTitleID, "great", 9)
		require.NoError(t, err)
		moderator := &models.User{ID: 2, Username: "mod", Role: fields.RoleModerator}
		_, err = service.UpdateReview(ctx, moderator, testTitleID, review.ID, &newText, nil)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
	t.Run("UnknownReview", func(t *testing.T) {
		service, _, _ := newTestService(t)
		_, err := service.UpdateReview(ctx, regularUser(1), testTitleID, 404, &newText, nil)
		assert.ErrorIs(t, err, ErrReviewNotFound)
	})
}

func TestDeleteReview(t *testing.T) {
	ctx := context.Background()
	t.Run("AuthorCanDelete", func(t *testing.T) {
		service, _, _ := newTestService(t)
		review, err := service.CreateReview(ctx, regularUser(1), testTitleID, "great", 9)
		require.NoError(t, err)
		require.NoError(t, service.DeleteReview(ctx, regularUser(1), testTitleID, review.ID))
		_, err = service.GetReview(ctx, testTitleID, review.ID)
		assert.ErrorIs(t, err, ErrReviewNotFound)
	})
	t.Run("ModeratorCanDelete", func(t *testing.T) {
		service, _, _ := newTestService(t)
		review, err := service.CreateReview(ctx, regularUser(1), testTitleID, "great", 9)
		require.NoError(t, err)
		moderator := &models.User{ID: 2, Username: "mod", Role: fields.RoleModerator}
		assert.NoError(t, service.DeleteReview(ctx, moderator, testTitleID, review.ID))
	})
	t.Run("AdminCannotDeleteForeign", func(t *testing.T) {
		service, _, _ := newTestService(t)
		review, err := service.CreateReview(ctx, regularUser(1), testTitleID, "great", 9)
		require.NoError(t, err)
		admin := &models.User{ID: 2, Username: "admin", Role: fields.RoleAdmin}
		assert.ErrorIs(t, service.DeleteReview(ctx, admin, testTitleID, review.ID), ErrPermissionDenied)
	})
	t.Run("OtherUserCannotDelete", func(t *testing.T) {
		service, _, _ := newTestService(t)
		review, err := service.CreateReview(ctx, regularUser(1), testTitleID, "great", 9)
		require.NoError(t, err)
		assert.ErrorIs(t, service.DeleteReview(ctx, regularUser(2), testTitleID, review.ID), ErrPermissionDenied)
	})
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	setup := func(t *testing.T) (*FeedbackService, *models.Review) {
		service, _, _ := newTestService(t)
		review, err := service.CreateReview(ctx, regularUser(1), testTitleID, "great", 9)
		require.NoError(t, err)
		return service, review
	}
	t.Run("CreateAndGet", func(t *testing.T) {
		service, review := setup(t)
		comment, err := service.CreateComment(ctx, regularUser(2), testTitleID, review.ID, "agreed")
		require.NoError(t, err)
		got, err := service.GetComment(ctx, testTitleID, review.ID, comment.ID)
		require.NoError(t, err)
		assert.Equal(t, "agreed", got.Text)
	})
	t.Run("CreateUnderUnknownReview", func(t *testing.T) {
		service, _ := setup(t)
		_, err := service.CreateComment(ctx, regularUser(2), testTitleID, 404, "agreed")
		assert.ErrorIs(t, err, ErrReviewNotFound)
	})
	t.Run("UpdateByForeignUserRejected", func(t *testing.T) {
		service, review := setup(t)
		comment, err := service.CreateComment(ctx, regularUser(2), testTitleID, review.ID, "agreed")
		require.NoError(t, err)
		newText := "edited"
		_, err = service.UpdateComment(ctx, regularUser(3), testTitleID, review.ID, comment.ID, &newText)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
	t.Run("ModeratorCanDelete", func(t *testing.T) {
		service, review := setup(t)
		comment, err := service.CreateComment(ctx, regularUser(2), testTitleID, review.ID, "agreed")
		require.NoError(t, err)
		moderator := &models.User{ID: 5, Username: "mod", Role: fields.RoleModerator}
		assert.NoError(t, service.DeleteComment(ctx, moderator, testTitleID, review.ID, comment.ID))
	})
	t.Run("CascadeScopedLookup", func(t *testing.T) {
		// A comment id under the wrong review must read as absent.
		service, review := setup(t)
		comment, err := service.CreateComment(ctx, regularUser(2), testTitleID, review.ID, "agreed")
		require.NoError(t, err)
		_, err = service.GetComment(ctx, testTitleID, review.ID+100, comment.ID)
		assert.ErrorIs(t, err, ErrReviewNotFound)
	})
}
