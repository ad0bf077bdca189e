package api

import (
	"net/http"

	"github.com/phrazzld/taskapi/internal/api/shared"
)

// Root handles GET / with a fixed greeting.
func Root(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, GreetingResponse{Hello: "World"})
}
