package controller_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"eca_backend/internals/constants"
	billmodel "eca_backend/internals/features/bills/model"
	ordermodel "eca_backend/internals/features/orders/model"
	refmodel "eca_backend/internals/features/reference/model"
	"eca_backend/internals/testutil"
)

type env struct {
	db  *gorm.DB
	app *fiber.App
	tok string

	patron         uint
	otherPatron    uint
	ouvrage        uint
	stateBrouillon uint
}

func newEnv(t *testing.T) *env {
	db := testutil.OpenTestDB(t)
	e := &env{
		db:  db,
		app: testutil.NewTestApp(t, db),
		tok: testutil.Token(t, 1, constants.RoleAdmin),
	}
	e.patron = testutil.CreateUser(t, db, constants.RoleAveugle, "Hélène Martin")
	e.otherPatron = testutil.CreateUser(t, db, constants.RoleAveugle, "Robert Petit")
	e.ouvrage = testutil.CreateOuvrage(t, db, "Vingt mille lieues sous les mers", "Jules Verne")
	e.stateBrouillon = testutil.BillStateID(t, db, refmodel.BillStateCodeBrouillon)
	return e
}

func (e *env) createOrder(t *testing.T, patron uint, cost string) uint {
	t.Helper()
	code, resp := testutil.DoJSON(t, e.app, "POST", "/api/a/orders", map[string]any{
		"aveugle_id":            patron,
		"ouvrage_id":            e.ouvrage,
		"request_received_date": "2026-02-01T00:00:00Z",
		"status_id":             testutil.StatusID(t, e.db, "recu"),
		"media_format_id":       testutil.MediaFormatID(t, e.db, "cd"),
		"delivery_method":       "mail",
		"cost":                  cost,
	}, e.tok)
	require.Equal(t, http.StatusCreated, code, "create order: %v", resp)
	return uint(resp["data"].(map[string]any)["id"].(float64))
}

func (e *env) createBill(t *testing.T, patron uint, amount string) uint {
	t.Helper()
	code, resp := testutil.DoJSON(t, e.app, "POST", "/api/a/bills", map[string]any{
		"aveugle_id":     patron,
		"state_id":       e.stateBrouillon,
		"invoice_amount": amount,
	}, e.tok)
	require.Equal(t, http.StatusCreated, code, "create bill: %v", resp)
	return uint(resp["data"].(map[string]any)["id"].(float64))
}

func (e *env) attach(t *testing.T, billID uint, orderIDs ...uint) (int, map[string]any) {
	t.Helper()
	return testutil.DoJSON(t, e.app, "POST", fmt.Sprintf("/api/a/bills/%d/orders", billID),
		map[string]any{"order_ids": orderIDs}, e.tok)
}

func (e *env) loadOrder(t *testing.T, id uint) ordermodel.OrderModel {
	t.Helper()
	var o ordermodel.OrderModel
	require.NoError(t, e.db.First(&o, id).Error)
	return o
}

// Intake to payment: two 10.50 orders on one 21.00 bill, paid in full. The
// fan-out flips exactly the attached orders and nothing else.
func TestBillLifecycle(t *testing.T) {
	e := newEnv(t)

	o1 := e.createOrder(t, e.patron, "10.50")
	o2 := e.createOrder(t, e.patron, "10.50")
	outside := e.createOrder(t, e.patron, "5.00")

	bill := e.createBill(t, e.patron, "21.00")

	code, resp := e.attach(t, bill, o1, o2)
	require.Equal(t, http.StatusOK, code, "%v", resp)

	for _, id := range []uint{o1, o2} {
		o := e.loadOrder(t, id)
		require.Equal(t, ordermodel.BillingStatusBilled, o.BillingStatus)
		require.NotNil(t, o.BillID)
		require.Equal(t, bill, *o.BillID)
	}
	require.Equal(t, ordermodel.BillingStatusUnbilled, e.loadOrder(t, outside).BillingStatus)

	code, resp = testutil.DoJSON(t, e.app, "POST", fmt.Sprintf("/api/a/bills/%d/pay", bill), nil, e.tok)
	require.Equal(t, http.StatusOK, code, "%v", resp)

	var b billmodel.BillModel
	require.NoError(t, e.db.First(&b, bill).Error)
	require.NotNil(t, b.PaymentDate)
	require.Equal(t, testutil.BillStateID(t, e.db, refmodel.BillStateCodePayee), b.StateID)
	require.True(t, b.InvoiceAmount.Equal(decimal.RequireFromString("21.00")))

	require.Equal(t, ordermodel.BillingStatusPaid, e.loadOrder(t, o1).BillingStatus)
	require.Equal(t, ordermodel.BillingStatusPaid, e.loadOrder(t, o2).BillingStatus)
	require.Equal(t, ordermodel.BillingStatusUnbilled, e.loadOrder(t, outside).BillingStatus)

	// paying twice is a conflict
	code, _ = testutil.DoJSON(t, e.app, "POST", fmt.Sprintf("/api/a/bills/%d/pay", bill), nil, e.tok)
	require.Equal(t, http.StatusConflict, code)
}

func TestBillAttachIsAllOrNone(t *testing.T) {
	e := newEnv(t)

	billed := e.createOrder(t, e.patron, "10.00")
	firstBill := e.createBill(t, e.patron, "10.00")
	code, _ := e.attach(t, firstBill, billed)
	require.Equal(t, http.StatusOK, code)

	fresh := e.createOrder(t, e.patron, "4.00")
	secondBill := e.createBill(t, e.patron, "14.00")

	code, resp := e.attach(t, secondBill, fresh, billed)
	require.Equal(t, http.StatusConflict, code)
	require.EqualValues(t, billed, resp["errors"].(map[string]any)["order_id"])

	// the valid half of the batch was rolled back with the rest
	o := e.loadOrder(t, fresh)
	require.Equal(t, ordermodel.BillingStatusUnbilled, o.BillingStatus)
	require.Nil(t, o.BillID)
}

func TestBillAttachRejectsOtherPatron(t *testing.T) {
	e := newEnv(t)

	order := e.createOrder(t, e.otherPatron, "9.00")
	bill := e.createBill(t, e.patron, "9.00")

	code, resp := e.attach(t, bill, order)
	require.Equal(t, http.StatusConflict, code)
	require.EqualValues(t, order, resp["errors"].(map[string]any)["order_id"])
	require.Equal(t, ordermodel.BillingStatusUnbilled, e.loadOrder(t, order).BillingStatus)
}

func TestBillAttachUnknownOrder(t *testing.T) {
	e := newEnv(t)
	bill := e.createBill(t, e.patron, "1.00")

	code, resp := e.attach(t, bill, 9999)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, resp["errors"].(map[string]any), "order_ids")
}

func TestBillPatchCannotReachPaidState(t *testing.T) {
	e := newEnv(t)
	bill := e.createBill(t, e.patron, "5.00")
	payee := testutil.BillStateID(t, e.db, refmodel.BillStateCodePayee)

	code, _ := testutil.DoJSON(t, e.app, "PATCH", fmt.Sprintf("/api/a/bills/%d", bill),
		map[string]any{"state_id": payee}, e.tok)
	require.Equal(t, http.StatusConflict, code)

	emise := testutil.BillStateID(t, e.db, refmodel.BillStateCodeEmise)
	code, resp := testutil.DoJSON(t, e.app, "PATCH", fmt.Sprintf("/api/a/bills/%d", bill),
		map[string]any{"state_id": emise, "issue_date": "2026-08-27T00:00:00Z"}, e.tok)
	require.Equal(t, http.StatusOK, code, "%v", resp)
}

func TestBillValidation(t *testing.T) {
	e := newEnv(t)

	code, resp := testutil.DoJSON(t, e.app, "POST", "/api/a/bills", map[string]any{
		"aveugle_id":     e.patron,
		"state_id":       e.stateBrouillon,
		"invoice_amount": "-3.00",
	}, e.tok)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, resp["errors"].(map[string]any), "invoice_amount")

	// issue date cannot precede creation
	code, resp = testutil.DoJSON(t, e.app, "POST", "/api/a/bills", map[string]any{
		"aveugle_id":     e.patron,
		"state_id":       e.stateBrouillon,
		"creation_date":  "2026-06-01T00:00:00Z",
		"invoice_amount": "3.00",
	}, e.tok)
	require.Equal(t, http.StatusCreated, code, "%v", resp)
	bill := uint(resp["data"].(map[string]any)["id"].(float64))

	code, resp = testutil.DoJSON(t, e.app, "PATCH", fmt.Sprintf("/api/a/bills/%d", bill),
		map[string]any{"issue_date": "2026-05-01T00:00:00Z"}, e.tok)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, resp["errors"].(map[string]any), "issue_date")
}

func TestBillDeleteGuardedByOrders(t *testing.T) {
	e := newEnv(t)

	o1 := e.createOrder(t, e.patron, "10.50")
	o2 := e.createOrder(t, e.patron, "10.50")
	bill := e.createBill(t, e.patron, "21.00")
	code, _ := e.attach(t, bill, o1, o2)
	require.Equal(t, http.StatusOK, code)

	code, resp := testutil.DoJSON(t, e.app, "DELETE", fmt.Sprintf("/api/a/bills/%d", bill), nil, e.tok)
	require.Equal(t, http.StatusConflict, code)
	require.EqualValues(t, 2, resp["errors"].(map[string]any)["order_count"])

	// empty bills delete cleanly
	empty := e.createBill(t, e.patron, "0.00")
	code, _ = testutil.DoJSON(t, e.app, "DELETE", fmt.Sprintf("/api/a/bills/%d", empty), nil, e.tok)
	require.Equal(t, http.StatusOK, code)
}

func TestBillDetailModeListsOrders(t *testing.T) {
	e := newEnv(t)

	o1 := e.createOrder(t, e.patron, "7.00")
	bill := e.createBill(t, e.patron, "7.00")
	code, _ := e.attach(t, bill, o1)
	require.Equal(t, http.StatusOK, code)

	code, resp := testutil.DoJSON(t, e.app, "GET", fmt.Sprintf("/api/a/bills/%d?mode=detailed", bill), nil, e.tok)
	require.Equal(t, http.StatusOK, code)
	orders := resp["data"].(map[string]any)["orders"].([]any)
	require.Len(t, orders, 1)
	require.Equal(t, o1, uint(orders[0].(map[string]any)["id"].(float64)))

	code, resp = testutil.DoJSON(t, e.app, "GET", fmt.Sprintf("/api/a/bills/%d", bill), nil, e.tok)
	require.Equal(t, http.StatusOK, code)
	_, present := resp["data"].(map[string]any)["orders"]
	require.False(t, present, "mode=basic does not resolve the order set")
}
