package handlers

import (
	"net/http"

	"github.com/fncall/codec"
)

func HandleFunctionCall(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := codec.DecodeCallRequest(r.Body)
		if err != nil {
			codec.WriteError(w, http.StatusBadRequest, "Invalid request: "+err.Error(), nil)
			return
		}

		code, resp := svc.Call(r.Context(), req)
		if code != http.StatusOK {
			codec.WriteError(w, code, resp.Error, resp.Messages)
			return
		}
		codec.WriteMessages(w, resp.Messages)
	}
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}
