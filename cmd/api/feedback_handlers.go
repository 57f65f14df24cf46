package main

import (
	"errors"
	"net/http"

	libvalidator "reviewhub/proj/internal/lib/validator"
	"reviewhub/proj/internal/services/feedback"
)

type createReviewInput struct {
	Text  string `json:"text" validate:"required"`
	Score *int   `json:"score" validate:"required,min=1,max=10"`
}

type updateReviewInput struct {
	Text  *string `json:"text"`
	Score *int    `json:"score" validate:"omitempty,min=1,max=10"`
}

type createCommentInput struct {
	Text string `json:"text" validate:"required"`
}

type updateCommentInput struct {
	Text *string `json:"text"`
}

func (app *Application) listReviews(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	f := defaultFilters([]string{"pub_date"}, "-pub_date")
	if !app.decodeQuery(w, r, &f) {
		return
	}
	reviews, total, err := app.Services.Feedback.ListReviews(r.Context(), titleID, f)
	if err != nil {
		app.handleFeedbackErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"reviews": reviews, "total_records": total}, "")
}

func (app *Application) getReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	review, err := app.Services.Feedback.GetReview(r.Context(), titleID, reviewID)
	if err != nil {
		app.handleFeedbackErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"review": review}, "")
}

func (app *Application) createReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	var input createReviewInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if validationErrs := libvalidator.ValidateStruct(app.validator, input); validationErrs != nil {
		app.Http.UnprocessableEntity(w, r, validationErrs)
		return
	}
	review, err := app.Services.Feedback.CreateReview(r.Context(), app.userFromContext(r), titleID, input.Text, *input.Score)
	if err != nil {
		app.handleFeedbackErr(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"review": review}, "Review successfully created")
}

func (app *Application) updateReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	var input updateReviewInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if validationErrs := libvalidator.ValidateStruct(app.validator, input); validationErrs != nil {
		app.Http.UnprocessableEntity(w, r, validationErrs)
		return
	}
	review, err := app.Services.Feedback.UpdateReview(r.Context(), app.userFromContext(r), titleID, reviewID, input.Text, input.Score)
	if err != nil {
		app.handleFeedbackErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"review": review}, "Review successfully updated")
}

func (app *Application) deleteReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	if err := app.Services.Feedback.DeleteReview(r.Context(), app.userFromContext(r), titleID, reviewID); err != nil {
		app.handleFeedbackErr(w, r, err)
		return
	}
	app.Http.NoContent(w, r, "")
}

func (app *Application) listComments(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	f := defaultFilters([]string{"pub_date"}, "-pub_date")
	if !app.decodeQuery(w, r, &f) {
		return
	}
	comments, total, err := app.Services.Feedback.ListComments(r.Context(), titleID, reviewID, f)
	if err != nil {
		app.handleFeedbackErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"comments": comments, "total_records": total}, "")
}

func (app *Application) getComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	commentID, ok := app.extractIDParam(w, r, "commentID")
	if !ok {
		return
	}
	comment, err := app.Services.Feedback.GetComment(r.Context(), titleID, reviewID, commentID)
	if err != nil {
		app.handleFeedbackErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"comment": comment}, "")
}

func (app *Application) createComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	var input createCommentInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	if validationErrs := libvalidator.ValidateStruct(app.validator, input); validationErrs != nil {
		app.Http.UnprocessableEntity(w, r, validationErrs)
		return
	}
	comment, err := app.Services.Feedback.CreateComment(r.Context(), app.userFromContext(r), titleID, reviewID, input.Text)
	if err != nil {
		app.handleFeedbackErr(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"comment": comment}, "Comment successfully created")
}

func (app *Application) updateComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	commentID, ok := app.extractIDParam(w, r, "commentID")
	if !ok {
		return
	}
	var input updateCommentInput
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	comment, err := app.Services.Feedback.UpdateComment(r.Context(), app.userFromContext(r), titleID, reviewID, commentID, input.Text)
	if err != nil {
		app.handleFeedbackErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"comment": comment}, "Comment successfully updated")
}

func (app *Application) deleteComment(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := app.extractIDParam(w, r, "reviewID")
	if !ok {
		return
	}
	commentID, ok := app.extractIDParam(w, r, "commentID")
	if !ok {
		return
	}
	if err := app.Services.Feedback.DeleteComment(r.Context(), app.userFromContext(r), titleID, reviewID, commentID); err != nil {
		app.handleFeedbackErr(w, r, err)
		return
	}
	app.Http.NoContent(w, r, "")
}

func (app *Application) handleFeedbackErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, feedback.ErrTitleNotFound),
		errors.Is(err, feedback.ErrReviewNotFound),
		errors.Is(err, feedback.ErrCommentNotFound):
		app.Http.NotFound(w, r, err.Error())
	case errors.Is(err, feedback.ErrPermissionDenied):
		app.Http.Forbidden(w, r, "You do not have permission to perform this action")
	case errors.Is(err, feedback.ErrReviewAlreadyExists):
		app.Http.UnprocessableEntity(w, r, map[string]string{"non_field_errors": err.Error()})
	default:
		app.Http.ServerError(w, r, err, "")
	}
}
