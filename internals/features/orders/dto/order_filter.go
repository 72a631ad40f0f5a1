package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"eca_backend/internals/apperr"
	ordermodel "eca_backend/internals/features/orders/model"
	refmodel "eca_backend/internals/features/reference/model"
)

// Two distinct overdue windows exist on purpose: "late" is the short
// awaiting-return urgency, "retard" the long overdue-processing one with its
// completed-status exclusion. They are separate filters, never merged.
// TODO(billing review): confirm the 30-day window with the ECA coordinators,
// it predates the retard filter and may have been meant as 90 too.
const (
	LateWindowDays   = 30
	RetardWindowDays = 90
)

// OrderListFilter composes the list-view predicates. Every member is
// optional; absence constrains nothing.
type OrderListFilter struct {
	Search        string
	StatusID      *uint
	BillingStatus *ordermodel.BillingStatus
	IsDuplication *bool
	NeedsReturn   bool
	Late          bool
	Retard        *bool
	ReceivedFrom  *time.Time
	ReceivedTo    *time.Time
}

// ParseOrderListFilter reads the query string. retard=true and retard=false in
// one request are mutually exclusive views and rejected outright.
func ParseOrderListFilter(c *fiber.Ctx) (*OrderListFilter, error) {
	f := &OrderListFilter{
		Search: strings.TrimSpace(c.Query("search")),
	}

	if v := c.Query("status_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, apperr.Validation("invalid filter", map[string]string{"status_id": "must be an integer"})
		}
		u := uint(id)
		f.StatusID = &u
	}

	if v := c.Query("billing_status"); v != "" {
		bs := ordermodel.BillingStatus(strings.ToUpper(v))
		switch bs {
		case ordermodel.BillingStatusUnbilled, ordermodel.BillingStatusBilled, ordermodel.BillingStatusPaid:
			f.BillingStatus = &bs
		default:
			return nil, apperr.Validation("invalid filter", map[string]string{"billing_status": "must be UNBILLED, BILLED or PAID"})
		}
	}

	if v := c.Query("is_duplication"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, apperr.Validation("invalid filter", map[string]string{"is_duplication": "must be a boolean"})
		}
		f.IsDuplication = &b
	}

	f.NeedsReturn = c.Query("needs_return") == "true"
	f.Late = c.Query("late") == "true"

	retardVals := c.Context().QueryArgs().PeekMulti("retard")
	seenTrue, seenFalse := false, false
	for _, rv := range retardVals {
		b, err := strconv.ParseBool(string(rv))
		if err != nil {
			return nil, apperr.Validation("invalid filter", map[string]string{"retard": "must be a boolean"})
		}
		if b {
			seenTrue = true
		} else {
			seenFalse = true
		}
	}
	if seenTrue && seenFalse {
		return nil, apperr.Validation("invalid filter", map[string]string{"retard": "true and false are mutually exclusive"})
	}
	if seenTrue || seenFalse {
		b := seenTrue
		f.Retard = &b
	}

	if v := c.Query("received_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, apperr.Validation("invalid filter", map[string]string{"received_from": "must be an ISO-8601 date"})
		}
		f.ReceivedFrom = &t
	}
	if v := c.Query("received_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, apperr.Validation("invalid filter", map[string]string{"received_to": "must be an ISO-8601 date"})
		}
		f.ReceivedTo = &t
	}

	return f, nil
}

// retardClause is the retard=true predicate. retard=false is applied as its
// literal NOT so the two views partition the order set with no gap or overlap.
const retardClause = "(orders.request_received_date < ? AND orders.status_id NOT IN (SELECT id FROM statuses WHERE code = ?))"

// Apply composes the WHERE clauses onto q. The overdue thresholds are derived
// from the caller's wall clock, never persisted, so lateness is always
// relative to the moment of the read.
func (f *OrderListFilter) Apply(q *gorm.DB, now time.Time) *gorm.DB {
	if f.Search != "" {
		pat := "%" + f.Search + "%"
		q = q.Joins("JOIN users AS aveugle ON aveugle.id = orders.aveugle_id").
			Joins("JOIN ouvrages ON ouvrages.id = orders.ouvrage_id").
			Where("(aveugle.full_name ILIKE ? OR aveugle.email ILIKE ? OR ouvrages.title ILIKE ? OR ouvrages.author ILIKE ?)",
				pat, pat, pat, pat)
	}
	if f.StatusID != nil {
		q = q.Where("orders.status_id = ?", *f.StatusID)
	}
	if f.BillingStatus != nil {
		q = q.Where("orders.billing_status = ?", *f.BillingStatus)
	}
	if f.IsDuplication != nil {
		q = q.Where("orders.is_duplication = ?", *f.IsDuplication)
	}
	if f.NeedsReturn {
		q = q.Where("orders.lent_physical_book = TRUE AND orders.closure_date IS NULL")
	}
	if f.Late {
		q = q.Where("orders.request_received_date < ?", now.AddDate(0, 0, -LateWindowDays))
	}
	if f.Retard != nil {
		threshold := now.AddDate(0, 0, -RetardWindowDays)
		if *f.Retard {
			q = q.Where(retardClause, threshold, refmodel.StatusCodeTermine)
		} else {
			q = q.Where("NOT "+retardClause, threshold, refmodel.StatusCodeTermine)
		}
	}
	if f.ReceivedFrom != nil {
		q = q.Where("orders.request_received_date >= ?", *f.ReceivedFrom)
	}
	if f.ReceivedTo != nil {
		q = q.Where("orders.request_received_date <= ?", *f.ReceivedTo)
	}
	return q
}
