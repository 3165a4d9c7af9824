package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordbomb/internal/api/apierr"
	"github.com/mcoot/wordbomb/internal/api/response"
	"github.com/mcoot/wordbomb/internal/services/dictionary"
)

// WordHandler exposes the dictionary for clients that want to check a word
// before playing it
type WordHandler struct {
	dictionary dictionary.ServiceInterface
}

// NewWordHandler creates a new word handler
func NewWordHandler(dictionary dictionary.ServiceInterface) *WordHandler {
	return &WordHandler{dictionary: dictionary}
}

// Check handles GET /api/v1/words/{word}
func (h *WordHandler) Check(w http.ResponseWriter, r *http.Request) {
	word := mux.Vars(r)["word"]
	if word == "" {
		WriteError(w, apierr.NewInvalidRequestError("word is required"))
		return
	}

	response.JSON(w, http.StatusOK, response.WordCheck{
		Word:       word,
		Normalized: h.dictionary.Normalize(word),
		Valid:      h.dictionary.IsValid(word),
	})
}
