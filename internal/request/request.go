package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/oggyb/wa-autoreply/internal/domain/botconfig"
	"github.com/oggyb/wa-autoreply/internal/service"
)

// maxBodyBytes bounds webhook and config request bodies.
const maxBodyBytes = 1 << 20

// WebhookRequest is the inbound message callback sent by Twilio.
// Twilio posts it as a form; JSON with the same field names is accepted too.
type WebhookRequest struct {
	From        string `json:"From" validate:"required,notblank"`
	To          string `json:"To"`
	Body        string `json:"Body" validate:"required,notblank"`
	MessageSid  string `json:"MessageSid"`
	AccountSid  string `json:"AccountSid"`
	NumMedia    string `json:"NumMedia"`
	ProfileName string `json:"ProfileName"`
}

// ErrUnsupportedMediaType is returned for bodies that are neither form nor JSON.
var ErrUnsupportedMediaType = errors.New("unsupported content type")

// DecodeWebhook reads the callback from r according to its Content-Type.
// An empty Content-Type is treated as a form, which is what Twilio sends.
func DecodeWebhook(r *http.Request) (WebhookRequest, error) {
	var req WebhookRequest

	ct := r.Header.Get("Content-Type")
	mediaType := "application/x-www-form-urlencoded"
	if ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return req, fmt.Errorf("parse content type: %w", err)
		}
		mediaType = mt
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("decode json body: %w", err)
		}
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if mediaType == "multipart/form-data" {
			if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
				return req, fmt.Errorf("parse multipart form: %w", err)
			}
		} else if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("parse form: %w", err)
		}
		f := r.PostForm
		req = WebhookRequest{
			From:        f.Get("From"),
			To:          f.Get("To"),
			Body:        f.Get("Body"),
			MessageSid:  f.Get("MessageSid"),
			AccountSid:  f.Get("AccountSid"),
			NumMedia:    f.Get("NumMedia"),
			ProfileName: f.Get("ProfileName"),
		}
	default:
		return req, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}

	req.normalize()
	return req, nil
}

// normalize trims addresses and ids. Body is kept verbatim.
func (r *WebhookRequest) normalize() {
	r.From = strings.TrimSpace(r.From)
	r.To = strings.TrimSpace(r.To)
	r.MessageSid = strings.TrimSpace(r.MessageSid)
	r.AccountSid = strings.TrimSpace(r.AccountSid)
}

// ToInbound maps the callback to the service input.
func (r WebhookRequest) ToInbound() service.InboundMessage {
	return service.InboundMessage{
		From:       r.From,
		To:         r.To,
		Body:       r.Body,
		MessageSID: r.MessageSid,
	}
}

// ConfigPatchRequest is the body of PATCH /api/config. Absent fields are
// left unchanged.
type ConfigPatchRequest struct {
	AutoReplyEnabled     *bool     `json:"autoReplyEnabled"`
	AutoReplyMessage     *string   `json:"autoReplyMessage"`
	ResponseDelaySeconds *DelayArg `json:"responseDelaySeconds" validate:"omitempty,gte=0,lte=86400"`
}

// DecodeConfigPatch parses a PATCH /api/config body.
func DecodeConfigPatch(r *http.Request) (ConfigPatchRequest, error) {
	var req ConfigPatchRequest
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("decode json body: %w", err)
	}
	return req, nil
}

// ToPatch converts the request into a domain patch.
func (r ConfigPatchRequest) ToPatch() botconfig.Patch {
	p := botconfig.Patch{
		AutoReplyEnabled: r.AutoReplyEnabled,
		AutoReplyMessage: r.AutoReplyMessage,
	}
	if r.ResponseDelaySeconds != nil {
		d := int(*r.ResponseDelaySeconds)
		p.ResponseDelaySeconds = &d
	}
	return p
}

// DelayArg is a whole number of seconds given either as a JSON number or
// as a numeric string ("5").
type DelayArg int

func (d *DelayArg) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.Abs(f) > math.MaxInt32 || f != math.Trunc(f) {
			return fmt.Errorf("responseDelaySeconds must be a whole number, got %s", string(b))
		}
		n = int(f)
	}

	*d = DelayArg(n)
	return nil
}
