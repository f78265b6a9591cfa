package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/questx-lab/social-discord/pkg/errorx"
)

var errMethodNotAllowed = errorx.New(errorx.BadRequest, "Method not allowed")

// parseRequest fills req with the query parameters of a GET request or the JSON body of other
// requests. Query parameters are matched by the json tags of req.
func parseRequest(r *http.Request, req any) error {
	if r.Method == http.MethodGet {
		params := map[string]string{}
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}

		b, err := json.Marshal(params)
		if err != nil {
			return errorx.New(errorx.BadRequest, "Invalid query")
		}

		if err := json.Unmarshal(b, req); err != nil {
			return errorx.New(errorx.BadRequest, "Invalid query")
		}

		return nil
	}

	if r.Body == nil {
		return nil
	}

	err := json.NewDecoder(r.Body).Decode(req)
	if err != nil && !errors.Is(err, io.EOF) {
		return errorx.New(errorx.BadRequest, "Invalid body")
	}

	return nil
}
