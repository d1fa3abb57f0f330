package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"pharmapos/m/domain"
	"pharmapos/m/internal/ledger"
	"pharmapos/m/internal/report"
	"pharmapos/m/internal/sales"
	"pharmapos/m/internal/store"
)

type ctxKey string

const ctxUserID ctxKey = "userID"

// Handler bundles dependencies for HTTP handlers. The domain components
// own all invariants; handlers only translate requests and errors.
type Handler struct {
	db        *sqlx.DB
	medicines *store.MedicineStore
	sales     *ledger.SalesLedger
	processor *sales.Processor
	reports   *report.Generator
	secret    string
}

// New constructs a Handler.
func New(db *sqlx.DB, medicines *store.MedicineStore, salesLedger *ledger.SalesLedger, processor *sales.Processor, reports *report.Generator, secret string) *Handler {
	return &Handler{
		db:        db,
		medicines: medicines,
		sales:     salesLedger,
		processor: processor,
		reports:   reports,
		secret:    secret,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Post("/auth/login", h.login)

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/medicines", func(r chi.Router) {
			r.Get("/", h.listMedicines)
			r.Get("/search", h.searchMedicines)
			r.Get("/low-stock", h.lowStock)
			r.Post("/", h.addMedicine)
			r.Put("/{id}", h.updateMedicine)
			r.Delete("/{id}", h.deleteMedicine)
		})

		pr.Route("/sales", func(r chi.Router) {
			r.Post("/", h.completeSale)
			r.Get("/history", h.salesHistory)
		})

		pr.Get("/reports/{kind}", h.generateReport)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Authentication

type authClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(userID int64) (string, error) {
	claims := authClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok {
			respondError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var user domain.User
	err := h.db.Get(&user, `SELECT id, username, password FROM users WHERE username = ?`, req.Username)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.generateToken(user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}

	user.Password = ""
	respondJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

// Medicine handlers

type medicineRequest struct {
	Name      string  `json:"name"`
	Batch     string  `json:"batch_number"`
	Expiry    string  `json:"expiry_date"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"price"`
}

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	meds, err := h.medicines.ListAll()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, meds)
}

func (h *Handler) searchMedicines(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	meds, err := h.medicines.FindByNameOrBatch(query)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, meds)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	threshold := int64(10)
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "threshold must be a non-negative integer")
			return
		}
		threshold = parsed
	}
	meds, err := h.medicines.ListLowStock(threshold)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, meds)
}

func (h *Handler) addMedicine(w http.ResponseWriter, r *http.Request) {
	var req medicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.medicines.Add(req.Name, req.Batch, req.Expiry, req.Quantity, req.UnitPrice)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	var req medicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.medicines.Update(id, req.Name, req.Batch, req.Expiry, req.Quantity, req.UnitPrice); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	if err := h.medicines.Remove(id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Sales handlers

type saleRequest struct {
	MedicineID int64 `json:"medicine_id"`
	Quantity   int64 `json:"quantity"`
}

func (h *Handler) completeSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := h.processor.CompleteSale(req.MedicineID, req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

func (h *Handler) salesHistory(w http.ResponseWriter, r *http.Request) {
	limit := int64(100)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	records, err := h.sales.Recent(limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// Report handlers

func (h *Handler) generateReport(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	asText := r.URL.Query().Get("format") == "text"

	switch kind {
	case "daily", "weekly", "monthly":
		end := time.Now()
		if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
			parsed, err := time.Parse(domain.DateLayout, raw)
			if err != nil {
				respondError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
				return
			}
			end = parsed
		}
		var start, stop, title string
		switch kind {
		case "daily":
			start, stop = report.DailyRange(end)
			title = "Daily Sales Report - " + stop
		case "weekly":
			start, stop = report.WeeklyRange(end)
			title = "Weekly Sales Report - " + start + " to " + stop
		case "monthly":
			start, stop = report.MonthlyRange(end)
			title = "Monthly Sales Report - " + start + " to " + stop
		}
		rep, err := h.reports.Sales(start, stop)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		if asText {
			respondText(w, report.RenderSales(title, rep))
			return
		}
		respondJSON(w, http.StatusOK, rep)

	case "inventory":
		rep, err := h.reports.Inventory()
		if err != nil {
			respondDomainError(w, err)
			return
		}
		if asText {
			respondText(w, report.RenderInventory(rep))
			return
		}
		respondJSON(w, http.StatusOK, rep)

	case "expired":
		asOf := strings.TrimSpace(r.URL.Query().Get("as_of"))
		if asOf == "" {
			asOf = time.Now().Format(domain.DateLayout)
		}
		rep, err := h.reports.Expired(asOf)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		if asText {
			respondText(w, report.RenderExpired(rep))
			return
		}
		respondJSON(w, http.StatusOK, rep)

	default:
		respondError(w, http.StatusBadRequest, "report kind must be one of daily, weekly, monthly, inventory, expired")
	}
}

// Helpers

// respondDomainError maps the error taxonomy onto status codes, keeping
// each class a distinct, actionable message.
func respondDomainError(w http.ResponseWriter, err error) {
	var (
		validation   *domain.ValidationError
		notFound     *domain.NotFoundError
		insufficient *domain.InsufficientStockError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &validation):
		respondError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &insufficient):
		respondError(w, http.StatusConflict, insufficient.Error())
	default:
		respondError(w, http.StatusInternalServerError, "store failure, transaction aborted: "+err.Error())
	}
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
