package controller_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"eca_backend/internals/constants"
	cataloguemodel "eca_backend/internals/features/catalogue/model"
	"eca_backend/internals/testutil"
)

func TestOuvrageCRUD(t *testing.T) {
	db := testutil.OpenTestDB(t)
	app := testutil.NewTestApp(t, db)
	tok := testutil.Token(t, 1, constants.RoleAdmin)

	code, resp := testutil.DoJSON(t, app, "POST", "/api/a/ouvrages", map[string]any{
		"title":  "Madame Bovary",
		"author": "Gustave Flaubert",
		"year":   1857,
	}, tok)
	require.Equal(t, http.StatusCreated, code, "%v", resp)
	id := uint(resp["data"].(map[string]any)["id"].(float64))

	code, resp = testutil.DoJSON(t, app, "GET", fmt.Sprintf("/api/a/ouvrages/%d", id), nil, tok)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Madame Bovary", resp["data"].(map[string]any)["title"])

	code, resp = testutil.DoJSON(t, app, "PATCH", fmt.Sprintf("/api/a/ouvrages/%d", id),
		map[string]any{"publisher": "Michel Lévy", "title": nil}, tok)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, resp["errors"].(map[string]any), "title")

	code, resp = testutil.DoJSON(t, app, "PATCH", fmt.Sprintf("/api/a/ouvrages/%d", id),
		map[string]any{"publisher": "Michel Lévy"}, tok)
	require.Equal(t, http.StatusOK, code, "%v", resp)

	var o cataloguemodel.OuvrageModel
	require.NoError(t, db.First(&o, id).Error)
	require.Equal(t, "Michel Lévy", *o.Publisher)
}

func TestOuvrageSearch(t *testing.T) {
	db := testutil.OpenTestDB(t)
	app := testutil.NewTestApp(t, db)
	tok := testutil.Token(t, 1, constants.RoleAdmin)

	testutil.CreateOuvrage(t, db, "La Peste", "Albert Camus")
	testutil.CreateOuvrage(t, db, "L'Étranger", "Albert Camus")
	testutil.CreateOuvrage(t, db, "Notre-Dame de Paris", "Victor Hugo")

	code, resp := testutil.DoJSON(t, app, "GET", "/api/a/ouvrages?search=camus", nil, tok)
	require.Equal(t, http.StatusOK, code)
	rows := resp["data"].(map[string]any)["ouvrages"].([]any)
	require.Len(t, rows, 2)

	code, resp = testutil.DoJSON(t, app, "GET", "/api/a/ouvrages?search=peste", nil, tok)
	require.Equal(t, http.StatusOK, code)
	rows = resp["data"].(map[string]any)["ouvrages"].([]any)
	require.Len(t, rows, 1)
	require.Equal(t, "La Peste", rows[0].(map[string]any)["title"])
}

func TestOuvrageDeleteGuardedByOrders(t *testing.T) {
	db := testutil.OpenTestDB(t)
	app := testutil.NewTestApp(t, db)
	tok := testutil.Token(t, 1, constants.RoleAdmin)

	patron := testutil.CreateUser(t, db, constants.RoleAveugle, "Georges Patron")
	ouvrage := testutil.CreateOuvrage(t, db, "Candide", "Voltaire")

	code, resp := testutil.DoJSON(t, app, "POST", "/api/a/orders", map[string]any{
		"aveugle_id":            patron,
		"ouvrage_id":            ouvrage,
		"request_received_date": "2026-03-01T00:00:00Z",
		"status_id":             testutil.StatusID(t, db, "recu"),
		"media_format_id":       testutil.MediaFormatID(t, db, "cle_usb"),
		"delivery_method":       "pickup",
	}, tok)
	require.Equal(t, http.StatusCreated, code, "%v", resp)
	orderID := uint(resp["data"].(map[string]any)["id"].(float64))

	code, resp = testutil.DoJSON(t, app, "DELETE", fmt.Sprintf("/api/a/ouvrages/%d", ouvrage), nil, tok)
	require.Equal(t, http.StatusConflict, code)
	require.EqualValues(t, 1, resp["errors"].(map[string]any)["order_count"])

	code, _ = testutil.DoJSON(t, app, "DELETE", fmt.Sprintf("/api/a/orders/%d", orderID), nil, tok)
	require.Equal(t, http.StatusOK, code)
	code, _ = testutil.DoJSON(t, app, "DELETE", fmt.Sprintf("/api/a/ouvrages/%d", ouvrage), nil, tok)
	require.Equal(t, http.StatusOK, code)
}
