// Package paste decodes and validates paste submissions for the development server.
package paste

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/icakad/icakad-go/internal/config"
)

// ValidationError holds validation failure details.
type ValidationError struct {
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(status int, msg string) error {
	return &ValidationError{StatusCode: status, Message: msg}
}

// Submission is a decoded create request.
type Submission struct {
	ID       string
	TTL      time.Duration
	Content  string
	Title    string
	Syntax   string
	Password string
}

type jsonSubmission struct {
	Content   string `json:"content"`
	Text      string `json:"text"`
	Title     string `json:"title"`
	Syntax    string `json:"syntax"`
	ExpiresIn string `json:"expires_in"`
	Password  string `json:"password"`
}

// Decode reads a create request. text/plain bodies are the content itself,
// anything else must be a JSON object. The id and ttl query parameters
// apply to both; expires_in in a JSON body wins over ttl.
func Decode(contentType string, body []byte, query url.Values) (Submission, error) {
	if len(body) > config.MaxPayloadSize {
		return Submission{}, invalid(http.StatusRequestEntityTooLarge, "payload too big")
	}

	var sub Submission
	var err error
	if sub.TTL, err = parseTTL(query.Get("ttl")); err != nil {
		return Submission{}, err
	}
	sub.ID = query.Get("id")

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "text/plain" {
		sub.Content = string(body)
	} else if len(body) > 0 {
		var raw jsonSubmission
		if err := json.Unmarshal(body, &raw); err != nil {
			return Submission{}, invalid(http.StatusBadRequest, "invalid JSON body")
		}
		sub.Content = raw.Content
		if sub.Content == "" {
			sub.Content = raw.Text
		}
		sub.Title = raw.Title
		sub.Syntax = raw.Syntax
		sub.Password = raw.Password
		if raw.ExpiresIn != "" {
			d, err := time.ParseDuration(raw.ExpiresIn)
			if err != nil || d <= 0 {
				return Submission{}, invalid(http.StatusBadRequest, "invalid expires_in")
			}
			sub.TTL = d
		}
	}

	if sub.ID != "" {
		if err := ValidateID(sub.ID); err != nil {
			return Submission{}, err
		}
	}
	if err := Validate([]byte(sub.Content)); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// Validate checks if the paste content is acceptable.
// Returns nil if valid, or a *ValidationError with appropriate status code and message.
func Validate(content []byte) error {
	if len(content) == 0 {
		return invalid(http.StatusBadRequest, "empty body")
	}

	if len(content) > config.MaxPayloadSize {
		return invalid(http.StatusRequestEntityTooLarge, "payload too big")
	}

	text := string(content)
	for _, phrase := range config.BlacklistedPhrases {
		if strings.Contains(text, phrase) {
			return invalid(http.StatusForbidden, "blacklisted phrases, antispam system")
		}
	}
	return nil
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// reserved ids would be shadowed by other routes.
var reserved = map[string]bool{"api": true, strings.TrimPrefix(config.LinksPrefix, "/"): true}

// ValidateID checks a client-requested paste id.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) || reserved[id] {
		return invalid(http.StatusBadRequest, "invalid id")
	}
	return nil
}

func parseTTL(v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds <= 0 {
		return 0, invalid(http.StatusBadRequest, "invalid ttl")
	}
	return time.Duration(seconds) * time.Second, nil
}
