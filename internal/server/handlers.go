package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"printcalc/internal/order"
	"printcalc/internal/pricing"
	"printcalc/internal/report"
	"printcalc/pkg/api"
)

type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, payload any) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, error)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func writeFile(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type quoteResponse struct {
	pricing.Breakdown
	Size         string `json:"size"`
	AreaText     string `json:"area_text"`
	TotalText    string `json:"total_text"`
	MaterialName string `json:"material_name"`
}

func newQuoteResponse(b pricing.Breakdown) quoteResponse {
	return quoteResponse{
		Breakdown:    b,
		Size:         order.FormatSize(b.Params.Width, b.Params.Height),
		AreaText:     order.FormatArea(b.Area),
		TotalText:    order.FormatRub(b.Total) + " ₽",
		MaterialName: b.MaterialName(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleMaterials(w http.ResponseWriter, _ *http.Request) {
	catalog := s.engine.Catalog()
	writeJSON(w, http.StatusOK, map[string]any{
		"default":   catalog.DefaultID(),
		"materials": catalog.Materials(),
		"defaults":  s.engine.NewParams(),
	})
}

func (s *Server) handleMaterialsExport(w http.ResponseWriter, r *http.Request) {
	data, err := report.PriceList(s.engine.Catalog())
	if err != nil {
		s.logger.Error("Failed to build price list",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build price list")
		return
	}
	writeFile(w, "materials.xlsx", report.ContentType, data)
}

func (s *Server) quote(w http.ResponseWriter, r *http.Request) (orderRequest, pricing.Breakdown, bool) {
	req, err := decodeOrder(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return req, pricing.Breakdown{}, false
	}

	b := s.engine.Compute(req.params(s.engine.Catalog().DefaultID()))
	s.metrics.Quote()
	return req, b, true
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	_, b, ok := s.quote(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newQuoteResponse(b))
}

func (s *Server) handleQuoteExport(w http.ResponseWriter, r *http.Request) {
	_, b, ok := s.quote(w, r)
	if !ok {
		return
	}

	data, err := report.Estimate(b, s.now())
	if err != nil {
		s.logger.Error("Failed to build estimate",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build estimate")
		return
	}
	writeFile(w, "estimate.xlsx", report.ContentType, data)
}

// submission validates the order form. It writes the 400 response itself.
func (s *Server) submission(w http.ResponseWriter, r *http.Request) (order.Submission, bool) {
	req, b, ok := s.quote(w, r)
	if !ok {
		return order.Submission{}, false
	}

	if b.Material == nil {
		s.metrics.Submission("invalid")
		writeError(w, http.StatusBadRequest, "unknown material: "+b.Params.MaterialID)
		return order.Submission{}, false
	}

	sub, err := order.NewSubmission(req.contact(), b)
	if err != nil {
		s.metrics.Submission("invalid")
		var verr *order.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "invalid order",
				"fields": verr.Fields,
			})
			return order.Submission{}, false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return order.Submission{}, false
	}
	return sub, true
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := RequestIDFrom(ctx)

	sub, ok := s.submission(w, r)
	if !ok {
		return
	}

	if !s.allow(ctx, clientIP(r)) {
		s.metrics.Submission("rate_limited")
		writeError(w, http.StatusTooManyRequests, "too many orders, try again later")
		return
	}

	if s.submitter == nil {
		s.metrics.Submission("unreachable")
		writeJSON(w, http.StatusServiceUnavailable, order.Outcome{Message: order.MessageConnectFailed})
		return
	}

	err := s.submitter.SubmitOrder(ctx, sub.Payload())
	outcome := order.OutcomeOf(err)
	if err != nil {
		label := "unreachable"
		var submitErr *api.SubmitError
		if errors.As(err, &submitErr) {
			label = "rejected"
		}
		s.metrics.Submission(label)
		s.logger.Warn("Order submission failed",
			zap.String("request_id", reqID),
			zap.String("outcome", label),
			zap.Error(err))
		writeJSON(w, http.StatusBadGateway, outcome)
		return
	}

	s.metrics.Submission("sent")
	s.logger.Info("Order submitted",
		zap.String("request_id", reqID),
		zap.String("material", sub.Breakdown.Params.MaterialID),
		zap.Float64("total", sub.Breakdown.Total))
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleOrderLink(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.submission(w, r)
	if !ok {
		return
	}

	link, err := order.DeepLink(s.cfg.Order.DeepLinkBase, sub)
	if err != nil {
		s.logger.Error("Failed to build deep link",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build link")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"url":     link,
		"message": order.Message(sub),
	})
}

// allow fails open when the limiter errors.
func (s *Server) allow(ctx context.Context, ip string) bool {
	limit := s.cfg.Order.RateLimit
	if s.limiter == nil || limit <= 0 {
		return true
	}

	ok, err := s.limiter.Allow(ctx, "ratelimit:orders:"+ip, limit, s.cfg.Order.RateLimitWindow)
	if err != nil {
		s.logger.Warn("Rate limiter unavailable",
			zap.String("ip", ip),
			zap.Error(err))
		return true
	}
	return ok
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
