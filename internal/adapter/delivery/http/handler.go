package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/bookmarks/internal/entity"
	"github.com/vadimbarashkov/bookmarks/pkg/response"
	"github.com/vadimbarashkov/bookmarks/pkg/sanitize"
)

const greeting = "Howdy, pardner."

var bookmarkNotFoundResponse = response.NewError("Bookmark not found.")

type ctxKey struct{}

var bookmarkCtxKey ctxKey

type bookmarkUseCase interface {
	ListBookmarks(ctx context.Context) ([]entity.Bookmark, error)
	CreateBookmark(ctx context.Context, b entity.Bookmark) (*entity.Bookmark, error)
	GetBookmark(ctx context.Context, id int64) (*entity.Bookmark, error)
	ModifyBookmark(ctx context.Context, id int64, patch entity.BookmarkPatch) error
	RemoveBookmark(ctx context.Context, id int64) error
}

func handleGreeting(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.PlainText(w, r, greeting)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, response.NotFoundResponse)
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusMethodNotAllowed)
	render.JSON(w, r, response.MethodNotAllowedResponse)
}

func serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	httplog.LogEntrySetField(r.Context(), "op", slog.StringValue(op))
	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, response.ServerErrorResponse)
}

// decodeJSON reads a JSON object from body into v. An empty body leaves v
// untouched.
func decodeJSON(body io.Reader, v any) error {
	if err := render.DecodeJSON(body, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

type bookmarkHandler struct {
	useCase  bookmarkUseCase
	validate *validator.Validate
	policy   *sanitize.Policy
}

func newBookmarkHandler(useCase bookmarkUseCase, validate *validator.Validate, policy *sanitize.Policy) *bookmarkHandler {
	return &bookmarkHandler{
		useCase:  useCase,
		validate: validate,
		policy:   policy,
	}
}

// bookmarkCtx resolves the {id} path parameter to a stored bookmark and puts
// it in the request context. Unknown or malformed ids end the request with 404.
func (h *bookmarkHandler) bookmarkCtx(next http.Handler) http.Handler {
	const op = "adapter.delivery.http.bookmarkHandler.bookmarkCtx"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, bookmarkNotFoundResponse)
			return
		}

		httplog.LogEntrySetField(r.Context(), "bookmark_id", slog.Int64Value(id))

		b, err := h.useCase.GetBookmark(r.Context(), id)
		if err != nil {
			if errors.Is(err, entity.ErrBookmarkNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, bookmarkNotFoundResponse)
				return
			}

			serverError(w, r, op, err)
			return
		}

		ctx := context.WithValue(r.Context(), bookmarkCtxKey, b)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bookmarkFromContext(ctx context.Context) *entity.Bookmark {
	b, _ := ctx.Value(bookmarkCtxKey).(*entity.Bookmark)
	return b
}

func (h *bookmarkHandler) listBookmarks(w http.ResponseWriter, r *http.Request) {
	const op = "adapter.delivery.http.bookmarkHandler.listBookmarks"

	bookmarks, err := h.useCase.ListBookmarks(r.Context())
	if err != nil {
		serverError(w, r, op, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toBookmarkResponses(bookmarks, h.policy))
}

func (h *bookmarkHandler) createBookmark(w http.ResponseWriter, r *http.Request) {
	const op = "adapter.delivery.http.bookmarkHandler.createBookmark"

	var req createBookmarkRequest

	if err := decodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidJSONResponse)
		return
	}

	req.normalize()

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	b, err := h.useCase.CreateBookmark(r.Context(), req.toEntity())
	if err != nil {
		if errors.Is(err, entity.ErrConstraintViolation) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, constraintResponse)
			return
		}

		serverError(w, r, op, err)
		return
	}

	httplog.LogEntrySetField(r.Context(), "bookmark_id", slog.Int64Value(b.ID))

	w.Header().Set("Location", fmt.Sprintf("/bookmarks/%d", b.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toBookmarkResponse(b, h.policy))
}

func (h *bookmarkHandler) getBookmark(w http.ResponseWriter, r *http.Request) {
	b := bookmarkFromContext(r.Context())

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toBookmarkResponse(b, h.policy))
}

func (h *bookmarkHandler) modifyBookmark(w http.ResponseWriter, r *http.Request) {
	const op = "adapter.delivery.http.bookmarkHandler.modifyBookmark"

	var req patchBookmarkRequest

	if err := decodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidJSONResponse)
		return
	}

	req.normalize()

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	patch := req.toPatch()
	if patch.IsEmpty() {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, emptyPatchResponse)
		return
	}

	b := bookmarkFromContext(r.Context())

	if err := h.useCase.ModifyBookmark(r.Context(), b.ID, patch); err != nil {
		if errors.Is(err, entity.ErrConstraintViolation) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, constraintResponse)
			return
		}

		serverError(w, r, op, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *bookmarkHandler) removeBookmark(w http.ResponseWriter, r *http.Request) {
	const op = "adapter.delivery.http.bookmarkHandler.removeBookmark"

	b := bookmarkFromContext(r.Context())

	if err := h.useCase.RemoveBookmark(r.Context(), b.ID); err != nil {
		serverError(w, r, op, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
