package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordbomb/internal/api/apierr"
	"github.com/mcoot/wordbomb/internal/model"
)

// WriteError writes the JSON error envelope for err
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// roomCode reads the {code} path variable, accepting lower case input
func roomCode(r *http.Request) (model.RoomCode, error) {
	return model.ParseRoomCode(mux.Vars(r)["code"])
}
