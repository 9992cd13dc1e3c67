package via

import (
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Formats a generated action can respond with.
const (
	FormatJSON = "json"
	FormatHTML = "html"
)

var contentTypes = map[string]string{
	FormatJSON: "application/json",
	FormatHTML: "text/html",
}

// HandlerFunc is the signature of a generated action.
type HandlerFunc func(*Context) error

// Handler adapts a generated action to http.HandlerFunc. The formats
// list the representations the action may respond with, most
// preferred first; an empty list means JSON only.
func Handler(fn HandlerFunc, formats ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := &Context{Request: r, Writer: w, formats: formats}
		if err := fn(ctx); err != nil {
			writeError(w, err)
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case IsNotFound(err):
		status = http.StatusNotFound
	case IsBadRequest(err):
		status = http.StatusBadRequest
	case IsFormatError(err):
		status = http.StatusNotAcceptable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// ActionResult is the placeholder payload generated handlers respond
// with until real behavior replaces them.
type ActionResult struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
	ID       any    `json:"id,omitempty"`
	Payload  any    `json:"payload,omitempty"`
}

// PolyRef points at one record out of a closed set of resource types.
type PolyRef[ID any] struct {
	Type string `json:"type"`
	ID   ID     `json:"id"`
}

// String returns the reference in type/id form.
func (r PolyRef[ID]) String() string {
	return fmt.Sprintf("%s/%v", r.Type, r.ID)
}

// Context wraps the request and response writer handed to a generated
// action.
type Context struct {
	Request *http.Request
	Writer  http.ResponseWriter

	formats []string
}

// Param returns the named route parameter.
func (c *Context) Param(name string) string {
	return chi.URLParam(c.Request, name)
}

// ParamInt64 returns the named route parameter parsed as an integer.
func (c *Context) ParamInt64(name string) (int64, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, NewBadRequestError("param "+name, err)
	}
	return v, nil
}

// ParamUUID returns the named route parameter parsed as a UUID.
func (c *Context) ParamUUID(name string) (uuid.UUID, error) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.UUID{}, NewBadRequestError("param "+name, err)
	}
	return v, nil
}

// Bind decodes the JSON request body into v.
func (c *Context) Bind(v any) error {
	defer c.Request.Body.Close()
	if err := json.NewDecoder(c.Request.Body).Decode(v); err != nil {
		return NewBadRequestError("body", err)
	}
	return nil
}

// Respond writes v in the representation negotiated from the Accept
// header. A request that accepts none of the action's formats fails
// with a FormatError.
func (c *Context) Respond(v any) error {
	format, err := c.negotiate()
	if err != nil {
		return err
	}
	switch format {
	case FormatHTML:
		return c.respondHTML(v)
	default:
		return c.respondJSON(v)
	}
}

func (c *Context) negotiate() (string, error) {
	allowed := c.formats
	if len(allowed) == 0 {
		allowed = []string{FormatJSON}
	}
	accept := c.Request.Header.Get("Accept")
	if accept == "" {
		return allowed[0], nil
	}
	for _, part := range strings.Split(accept, ",") {
		mt := strings.TrimSpace(part)
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = strings.TrimSpace(mt[:i])
		}
		if mt == "*/*" || mt == "" {
			return allowed[0], nil
		}
		for _, f := range allowed {
			ct := contentTypes[f]
			if ct == "" {
				continue
			}
			if mt == ct {
				return f, nil
			}
			if strings.HasSuffix(mt, "/*") && strings.HasPrefix(ct, strings.TrimSuffix(mt, "*")) {
				return f, nil
			}
		}
	}
	return "", NewFormatError(accept, allowed)
}

func (c *Context) respondJSON(v any) error {
	c.Writer.Header().Set("Content-Type", "application/json")
	c.Writer.WriteHeader(http.StatusOK)
	return json.NewEncoder(c.Writer).Encode(v)
}

func (c *Context) respondHTML(v any) error {
	title := "Response"
	if res, ok := v.(ActionResult); ok {
		title = cases.Title(language.English).String(res.Action) + " " + res.Resource
	}
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	c.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(http.StatusOK)
	_, err = fmt.Fprintf(c.Writer, "<!doctype html>\n<title>%s</title>\n<h1>%s</h1>\n<pre>%s</pre>\n",
		html.EscapeString(title), html.EscapeString(title), html.EscapeString(string(body)))
	return err
}
