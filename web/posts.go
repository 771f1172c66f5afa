package web

import (
	"net/http"
	"time"

	"github.com/nasermirzaei89/blotter/contents"
)

type postResponse struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Summary   *string    `json:"summary"`
	Category  string     `json:"category"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func newPostResponse(post *contents.Post) postResponse {
	return postResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Summary:   post.Summary,
		Category:  string(post.Category),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

type createPostRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Summary  *string `json:"summary"`
	Category string  `json:"category"`
}

type updatePostRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Summary  *string `json:"summary"`
	Category *string `json:"category"`
}

func (h *Handler) HandleCreatePost() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createPostRequest

		err := decodeJSON(w, r, &req)
		if err != nil {
			writeErrorMessage(w, r, http.StatusBadRequest, "Bad Request")

			return
		}

		post, err := h.contentsSvc.CreatePost(r.Context(), contents.CreatePostRequest{
			Title:    req.Title,
			Content:  req.Content,
			Summary:  req.Summary,
			Category: contents.Category(req.Category),
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusCreated, newPostResponse(post))
	})
}

func (h *Handler) HandleListPosts() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.contentsSvc.ListPosts(r.Context())
		if err != nil {
			writeError(w, r, err)

			return
		}

		res := make([]postResponse, 0, len(posts))
		for _, post := range posts {
			res = append(res, newPostResponse(post))
		}

		writeJSON(w, r, http.StatusOK, res)
	})
}

func (h *Handler) HandleGetPost() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		post, err := h.contentsSvc.GetPost(r.Context(), r.PathValue("postId"))
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, newPostResponse(post))
	})
}

func (h *Handler) HandleUpdatePost() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req updatePostRequest

		err := decodeJSON(w, r, &req)
		if err != nil {
			writeErrorMessage(w, r, http.StatusBadRequest, "Bad Request")

			return
		}

		var category *contents.Category
		if req.Category != nil {
			c := contents.Category(*req.Category)
			category = &c
		}

		post, err := h.contentsSvc.UpdatePost(r.Context(), r.PathValue("postId"), contents.UpdatePostRequest{
			Title:    req.Title,
			Content:  req.Content,
			Summary:  req.Summary,
			Category: category,
		})
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, newPostResponse(post))
	})
}

func (h *Handler) HandleDeletePost() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h.contentsSvc.DeletePost(r.Context(), r.PathValue("postId"))
		if err != nil {
			writeError(w, r, err)

			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
