package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ride-share-booking/internal/model"
	"github.com/iliyamo/ride-share-booking/internal/repository"
)

// ReviewHandler manages ride reviews for signed-in users.  Reviews are
// independent of seat accounting; only authorship is enforced on
// mutation.
type ReviewHandler struct {
	Reviews *repository.ReviewRepo
	Rides   *repository.RideRepo
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(v *repository.ReviewRepo, r *repository.RideRepo) *ReviewHandler {
	if v == nil || r == nil {
		panic("nil repository passed to NewReviewHandler")
	}
	return &ReviewHandler{Reviews: v, Rides: r}
}

type reviewReq struct {
	RideID  uint64 `json:"ride_id" form:"ride_id"`
	Rating  int    `json:"rating" form:"rating"`
	Comment string `json:"comment" form:"comment"`
}

// Create handles POST /v1/reviews.
func (h *ReviewHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil || req.RideID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}
	ctx := c.Request().Context()
	if _, err := h.Rides.GetByID(ctx, req.RideID); err != nil {
		if err == repository.ErrRideNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ride_not_found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	rv := &model.Review{
		RideID:   req.RideID,
		AuthorID: userID,
		Rating:   req.Rating,
		Comment:  strings.TrimSpace(req.Comment),
	}
	if err := h.Reviews.Create(ctx, rv); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create review failed"})
	}
	return c.JSON(http.StatusCreated, rv)
}

// List handles GET /v1/my-reviews.  Alongside the caller's reviews it
// returns the rides they booked but have not reviewed yet.
func (h *ReviewHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	reviews, err := h.Reviews.ListByAuthor(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	pending, err := h.Reviews.RidesToReview(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reviews":         reviews,
		"rides_to_review": pending,
	})
}

// Update handles PUT /v1/reviews/:id.  Author-only.
func (h *ReviewHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}
	if err := h.Reviews.Update(c.Request().Context(), reviewID, userID, req.Rating, strings.TrimSpace(req.Comment)); err != nil {
		return writeReviewRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": reviewID})
}

// Delete handles DELETE /v1/reviews/:id.  Author-only.
func (h *ReviewHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reviewID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}
	if err := h.Reviews.Delete(c.Request().Context(), reviewID, userID); err != nil {
		return writeReviewRepoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func writeReviewRepoError(c echo.Context, err error) error {
	switch err {
	case repository.ErrReviewNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "review_not_found"})
	case repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
