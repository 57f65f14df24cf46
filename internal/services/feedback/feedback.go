package feedback

import (
	"context"
	"errors"
	"log/slog"

	"reviewhub/proj/internal/authz"
	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/storage"
)

type TitleStorage interface {
	Get(ctx context.Context, id int64) (*models.Title, error)
}

type ReviewStorage interface {
	Insert(ctx context.Context, titleID, authorID int64, text string, score int) (*models.Review, error)
	Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	ListForTitle(ctx context.Context, titleID int64, filters filters.Filters) ([]models.Review, int, error)
	ExistsForAuthor(ctx context.Context, titleID, authorID int64) (bool, error)
	Update(ctx context.Context, review *models.Review) (*models.Review, error)
	Delete(ctx context.Context, titleID, reviewID int64) error
}

type CommentStorage interface {
	Insert(ctx context.Context, reviewID, authorID int64, text string) (*models.Comment, error)
	Get(ctx context.Context, reviewID, commentID int64) (*models.Comment, error)
	ListForReview(ctx context.Context, reviewID int64, filters filters.Filters) ([]models.Comment, int, error)
	Update(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	Delete(ctx context.Context, reviewID, commentID int64) error
}

type FeedbackService struct {
	log      *slog.Logger
	titles   TitleStorage
	reviews  ReviewStorage
	comments CommentStorage
}

func New(log *slog.Logger, titles TitleStorage, reviews ReviewStorage, comments CommentStorage) *FeedbackService {
	return &FeedbackService{
		log:      log,
		titles:   titles,
		reviews:  reviews,
		comments: comments,
	}
}

func (s *FeedbackService) ListReviews(ctx context.Context, titleID int64, filters filters.Filters) ([]models.Review, int, error) {
	const op = "feedback.FeedbackService.ListReviews"
	log := s.log.With("op", op, "title_id", titleID)
	if _, err := s.getTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	reviews, total, err := s.reviews.ListForTitle(ctx, titleID, filters)
	if err != nil {
		log.Error(err.Error())
		return nil, 0, err
	}
	return reviews, total, nil
}

func (s *FeedbackService) GetReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	const op = "feedback.FeedbackService.GetReview"
	log := s.log.With("op", op, "title_id", titleID, "review_id", reviewID)
	review, err := s.reviews.Get(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("review not found")
			return nil, ErrReviewNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return review, nil
}

// CreateReview enforces the one-review-per-(author, title) rule twice: an
// explicit pre-check for the friendly validation failure, and the unique
// index underneath for the concurrent-writer case.
func (s *FeedbackService) CreateReview(ctx context.Context, requester *models.User, titleID int64, text string, score int) (*models.Review, error) {
	const op = "feedback.FeedbackService.CreateReview"
	log := s.log.With("op", op, "title_id", titleID)
	if !authz.CanCreateFeedback(requester) {
		return nil, ErrPermissionDenied
	}
	if _, err := s.getTitle(ctx, titleID); err != nil {
		return nil, err
	}
	exists, err := s.reviews.ExistsForAuthor(ctx, titleID, requester.ID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	if exists {
		log.Info("duplicate review rejected", "author_id", requester.ID)
		return nil, ErrReviewAlreadyExists
	}
	review, err := s.reviews.Insert(ctx, titleID, requester.ID, text, score)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("duplicate review rejected by constraint", "author_id", requester.ID)
			return nil, ErrReviewAlreadyExists
		}
		log.Error(err.Error())
		return nil, err
	}
	return review, nil
}

func (s *FeedbackService) UpdateReview(ctx context.Context, requester *models.User, titleID, reviewID int64, text *string, score *int) (*models.Review, error) {
	const op = "feedback.FeedbackService.UpdateReview"
	log := s.log.With("op", op, "title_id", titleID, "review_id", reviewID)
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if !authz.CanUpdateFeedback(requester, review.AuthorID) {
		log.Info("update of foreign review rejected")
		return nil, ErrPermissionDenied
	}
	if text != nil {
		review.Text = *text
	}
	if score != nil {
		review.Score = *score
	}
	updated, err := s.reviews.Update(ctx, review)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return updated, nil
}

func (s *FeedbackService) DeleteReview(ctx context.Context, requester *models.User, titleID, reviewID int64) error {
	const op = "feedback.FeedbackService.DeleteReview"
	log := s.log.With("op", op, "title_id", titleID, "review_id", reviewID)
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if !authz.CanDeleteFeedback(requester, review.AuthorID) {
		log.Info("delete of foreign review rejected")
		return ErrPermissionDenied
	}
	if err := s.reviews.Delete(ctx, titleID, reviewID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrReviewNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}

func (s *FeedbackService) ListComments(ctx context.Context, titleID, reviewID int64, filters filters.Filters) ([]models.Comment, int, error) {
	const op = "feedback.FeedbackService.ListComments"
	log := s.log.With("op", op, "title_id", titleID, "review_id", reviewID)
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	comments, total, err := s.comments.ListForReview(ctx, reviewID, filters)
	if err != nil {
		log.Error(err.Error())
		return nil, 0, err
	}
	return comments, total, nil
}

func (s *FeedbackService) GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	const op = "feedback.FeedbackService.GetComment"
	log := s.log.With("op", op, "review_id", reviewID, "comment_id", commentID)
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.Get(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("comment not found")
			return nil, ErrCommentNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return comment, nil
}

func (s *FeedbackService) CreateComment(ctx context.Context, requester *models.User, titleID, reviewID int64, text string) (*models.Comment, error) {
	const op = "feedback.FeedbackService.CreateComment"
	log := s.log.With("op", op, "title_id", titleID, "review_id", reviewID)
	if !authz.CanCreateFeedback(requester) {
		return nil, ErrPermissionDenied
	}
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.Insert(ctx, reviewID, requester.ID, text)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	return comment, nil
}

func (s *FeedbackService) UpdateComment(ctx context.Context, requester *models.User, titleID, reviewID, commentID int64, text *string) (*models.Comment, error) {
	const op = "feedback.FeedbackService.UpdateComment"
	log := s.log.With("op", op, "review_id", reviewID, "comment_id", commentID)
	comment, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if !authz.CanUpdateFeedback(requester, comment.AuthorID) {
		log.Info("update of foreign comment rejected")
		return nil, ErrPermissionDenied
	}
	if text != nil {
		comment.Text = *text
	}
	updated, err := s.comments.Update(ctx, comment)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return updated, nil
}

func (s *FeedbackService) DeleteComment(ctx context.Context, requester *models.User, titleID, reviewID, commentID int64) error {
	const op = "feedback.FeedbackService.DeleteComment"
	log := s.log.With("op", op, "review_id", reviewID, "comment_id", commentID)
	comment, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if !authz.CanDeleteFeedback(requester, comment.AuthorID) {
		log.Info("delete of foreign comment rejected")
		return ErrPermissionDenied
	}
	if err := s.comments.Delete(ctx, reviewID, commentID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrCommentNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}

func (s *FeedbackService) getTitle(ctx context.Context, titleID int64) (*models.Title, error) {
	title, err := s.titles.Get(ctx, titleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTitleNotFound
		}
		s.log.Error(err.Error())
		return nil, err
	}
	return title, nil
}
