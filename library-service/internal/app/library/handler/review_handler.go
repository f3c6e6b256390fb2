package handler

import (
	"errors"
	"net/http"

	"bookery/library-service/internal/app/library/entity"
	"bookery/library-service/internal/app/library/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ReviewHandler struct {
	reviewService service.ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService service.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// SubmitReview обрабатывает POST /books/:book_id/reviews
// 201 + отзыв, либо 400/401/404/409 согласно причине отказа
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	bookID, err := uuid.Parse(c.Param("book_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid book ID"})
		return
	}

	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: formatValidationError(err)})
		return
	}

	review, err := h.reviewService.SubmitReview(c.Request.Context(), userID, bookID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookNotFound):
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Book not found"})
		case errors.Is(err, service.ErrAlreadyReviewed):
			c.JSON(http.StatusConflict, entity.ErrorResponse{Error: "Already reviewed", Message: "You have already reviewed this book"})
		case errors.Is(err, service.ErrTimeout):
			c.JSON(http.StatusConflict, entity.ErrorResponse{Error: "Conflict", Message: "Submission timed out, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Failed to submit review"})
		}
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GetBookReviews обрабатывает GET /books/:book_id/reviews
// Отзывы возвращаются в порядке создания
func (h *ReviewHandler) GetBookReviews(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("book_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid book ID"})
		return
	}

	reviews, err := h.reviewService.GetReviewsByBook(c.Request.Context(), bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Failed to get reviews"})
		return
	}

	c.JSON(http.StatusOK, entity.ReviewListResponse{
		Reviews: reviews,
		Total:   len(reviews),
	})
}

// GetReview обрабатывает GET /reviews/:review_id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("review_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid review ID"})
		return
	}

	review, err := h.reviewService.GetReview(c.Request.Context(), reviewID)
	if err != nil {
		if errors.Is(err, service.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Review not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Failed to get review"})
		return
	}

	c.JSON(http.StatusOK, review)
}

// UpdateReview обрабатывает PATCH /reviews/:review_id
// Менять отзыв может только его автор
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	reviewID, err := uuid.Parse(c.Param("review_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid review ID"})
		return
	}

	var req entity.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: formatValidationError(err)})
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), reviewID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Review not found"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, entity.ErrorResponse{Error: "Access denied"})
		case errors.Is(err, service.ErrTimeout):
			c.JSON(http.StatusConflict, entity.ErrorResponse{Error: "Conflict", Message: "Update timed out, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Failed to update review"})
		}
		return
	}

	c.JSON(http.StatusOK, review)
}

// DeleteReview обрабатывает DELETE /reviews/:review_id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	reviewID, err := uuid.Parse(c.Param("review_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid review ID"})
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), reviewID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Review not found"})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusForbidden, entity.ErrorResponse{Error: "Access denied"})
		case errors.Is(err, service.ErrTimeout):
			c.JSON(http.StatusConflict, entity.ErrorResponse{Error: "Conflict", Message: "Delete timed out, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Failed to delete review"})
		}
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Review deleted successfully",
	})
}

// GetUserReviews обрабатывает GET /users/:user_id/reviews
func (h *ReviewHandler) GetUserReviews(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	reviews, err := h.reviewService.GetUserReviews(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Failed to get user reviews"})
		return
	}

	c.JSON(http.StatusOK, entity.ReviewListResponse{
		Reviews: reviews,
		Total:   len(reviews),
	})
}

// callerID извлекает ID аутентифицированного пользователя из контекста Gin
// При отсутствии или некорректном значении сам пишет ответ и возвращает false
func callerID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Unauthorized"})
		return uuid.Nil, false
	}

	str, ok := raw.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "Invalid user ID"})
		return uuid.Nil, false
	}

	id, err := uuid.Parse(str)
	if err != nil {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "Invalid user ID in token"})
		return uuid.Nil, false
	}

	return id, true
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
