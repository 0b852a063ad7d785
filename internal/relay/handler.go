package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"printcalc/internal/order"
)

const (
	ChannelEmail    = "email"
	ChannelTelegram = "telegram"
)

const maxBodyBytes = 1 << 16

// areaText accepts the area as a string or a bare number.
type areaText string

func (a *areaText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = areaText(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("area: %w", err)
		}
		*a = areaText(n.String())
	}
	return nil
}

// incoming shadows Payload.Area so older clients sending a number still decode.
type incoming struct {
	order.Payload
	Area areaText `json:"area"`
}

func decodePayload(w http.ResponseWriter, r *http.Request) (order.Payload, error) {
	in := incoming{Payload: order.Payload{Quantity: 1}}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return order.Payload{}, err
	}
	in.Payload.Area = string(in.Area)
	return in.Payload, nil
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, error)
}

// Recorder counts deliveries per channel.
type Recorder interface {
	Relayed(channel string, ok bool)
}

type Options struct {
	// Mailer nil means SMTP credentials are not configured.
	Mailer   Mailer
	Notifier Notifier
	Limiter  RateLimiter
	Limit    int64
	Window   time.Duration
	Recorder Recorder
	Logger   *zap.Logger
}

// Handler receives order payloads, mails them and posts a channel
// notification.
type Handler struct {
	opts Options
}

func NewHandler(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Handler{opts: opts}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORS(w)

	switch r.Method {
	case http.MethodOptions:
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "Method not allowed"})
		return
	}

	ctx := r.Context()
	logger := h.opts.Logger

	if !h.allow(ctx, clientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": "Too many requests"})
		return
	}

	payload, err := decodePayload(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{"error": "Request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid JSON: " + err.Error()})
		return
	}

	if h.opts.Mailer == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "SMTP credentials not configured"})
		return
	}

	if err := h.opts.Mailer.Send(ctx, NewLetter(payload)); err != nil {
		h.record(ChannelEmail, false)
		logger.Error("Failed to send order email",
			zap.String("name", payload.Name),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to send email"})
		return
	}
	h.record(ChannelEmail, true)

	if h.opts.Notifier != nil {
		if err := h.opts.Notifier.Notify(ctx, payload); err != nil {
			h.record(ChannelTelegram, false)
			logger.Error("Failed to send channel notification",
				zap.String("name", payload.Name),
				zap.Error(err))
		} else {
			h.record(ChannelTelegram, true)
		}
	}

	logger.Info("Order relayed",
		zap.String("name", payload.Name),
		zap.String("material", payload.Material),
		zap.Float64("total_price", payload.TotalPrice))

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Order sent successfully",
	})
}

// allow fails open when the limiter errors.
func (h *Handler) allow(ctx context.Context, ip string) bool {
	if h.opts.Limiter == nil || h.opts.Limit <= 0 {
		return true
	}

	ok, err := h.opts.Limiter.Allow(ctx, "ratelimit:relay:"+ip, h.opts.Limit, h.opts.Window)
	if err != nil {
		h.opts.Logger.Warn("Rate limiter unavailable",
			zap.String("ip", ip),
			zap.Error(err))
		return true
	}
	return ok
}

func (h *Handler) record(channel string, ok bool) {
	if h.opts.Recorder != nil {
		h.opts.Recorder.Relayed(channel, ok)
	}
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
