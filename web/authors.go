package web

import (
	"net/http"
	"time"

	"github.com/nasermirzaei89/blotter/contents"
)

type authorResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	PhoneNumber *string    `json:"phone_number"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

func newAuthorResponse(author *contents.Author) authorResponse {
	return authorResponse{
		ID:          author.ID,
		Name:        author.Name,
		PhoneNumber: author.PhoneNumber,
		CreatedAt:   author.CreatedAt,
		UpdatedAt:   author.UpdatedAt,
	}
}

type createAuthorRequest struct {
	Name        string  `json:"name"`
	PhoneNumber *string `json:"phone_number"`
}

type updateAuthorRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phone_number"`
}

func (h *Handler) HandleCreateAuthor() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createAuthorRequest

		err := decodeJSON(w, r, &req)
		if err != nil {
			writeErrorMessage(w, r, http.StatusBadRequest, "Bad Request")

			return
		}

		author, err := h.contentsSvc.CreateAuthor(r.Context(), contents.CreateAuthorRequest{
			Name:        req.Name,
			PhoneNumber: req.PhoneNumber,
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusCreated, newAuthorResponse(author))
	})
}

func (h *Handler) HandleListAuthors() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authors, err := h.contentsSvc.ListAuthors(r.Context())
		if err != nil {
			writeError(w, r, err)

			return
		}

		res := make([]authorResponse, 0, len(authors))
		for _, author := range authors {
			res = append(res, newAuthorResponse(author))
		}

		writeJSON(w, r, http.StatusOK, res)
	})
}

func (h *Handler) HandleGetAuthor() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		author, err := h.contentsSvc.GetAuthor(r.Context(), r.PathValue("authorId"))
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, newAuthorResponse(author))
	})
}

func (h *Handler) HandleUpdateAuthor() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req updateAuthorRequest

		err := decodeJSON(w, r, &req)
		if err != nil {
			writeErrorMessage(w, r, http.StatusBadRequest, "Bad Request")

			return
		}

		author, err := h.contentsSvc.UpdateAuthor(r.Context(), r.PathValue("authorId"), contents.UpdateAuthorRequest{
			Name:        req.Name,
			PhoneNumber: req.PhoneNumber,
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, newAuthorResponse(author))
	})
}

func (h *Handler) HandleDeleteAuthor() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h.contentsSvc.DeleteAuthor(r.Context(), r.PathValue("authorId"))
		if err != nil {
			writeError(w, r, err)

			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
