package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-faster/sdk/zctx"
	"github.com/klauspost/pgzip"
	"go.uber.org/zap"

	"github.com/tamilyouth/preorder-api/internal/export"
)

// ExportOrders streams the full order book as a CSV download. The body is
// gzip-compressed when the client advertises support for it.
func (h *Handler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bestellungen.csv"`)

	var out io.Writer = w
	if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.Header().Set("Content-Encoding", "gzip")
		gz := pgzip.NewWriter(w)
		defer gz.Close()
		out = gz
	}

	if err := export.WriteCSV(out, orders); err != nil {
		// Headers are already out, so all we can do is log.
		zctx.From(r.Context()).Error("write csv export", zap.Error(err))
	}
}
