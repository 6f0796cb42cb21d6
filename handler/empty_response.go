package handler

import "net/http"

type emptyResponse int

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(int(e))
	return nil
}

// Empty answers 204 No Content.
func Empty() Response { return emptyResponse(http.StatusNoContent) }

// Status answers with code and no body.
func Status(code int) Response { return emptyResponse(code) }
