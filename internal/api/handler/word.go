package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordsession/internal/api/apierr"
	"github.com/mcoot/wordsession/internal/api/response"
	"github.com/mcoot/wordsession/internal/model"
	"github.com/mcoot/wordsession/internal/services/dictionary"
)

// WordHandler serves word legality from the local word list
type WordHandler struct {
	dictionary dictionary.ServiceInterface
}

// NewWordHandler creates a new word handler
func NewWordHandler(dict dictionary.ServiceInterface) *WordHandler {
	return &WordHandler{dictionary: dict}
}

// Check handles GET /api/v1/validate-word/{word}
func (h *WordHandler) Check(w http.ResponseWriter, r *http.Request) {
	if !h.dictionary.IsLoaded() {
		apierr.WriteError(w, model.ErrDictionaryNotLoaded)
		return
	}
	word := mux.Vars(r)["word"]
	response.JSON(w, http.StatusOK, response.WordCheckResponse{
		Word:    word,
		IsValid: h.dictionary.IsValidWord(word),
	})
}

// Health handles GET /api/v1/health
func (h *WordHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{
		Status:          "ok",
		DictionaryWords: h.dictionary.WordCount(),
	})
}
