package controller_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"eca_backend/internals/constants"
	usermodel "eca_backend/internals/features/users/model"
	"eca_backend/internals/testutil"
)

func TestUserCreate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	app := testutil.NewTestApp(t, db)
	tok := testutil.Token(t, 1, constants.RoleAdmin)

	code, resp := testutil.DoJSON(t, app, "POST", "/api/a/users", map[string]any{
		"full_name": "Claire Fontaine",
		"email":     "claire@example.org",
		"role":      constants.RoleLecteur,
		"password":  "s3cret-pass",
	}, tok)
	require.Equal(t, http.StatusCreated, code, "%v", resp)
	data := resp["data"].(map[string]any)
	require.Equal(t, true, data["is_active"])
	_, leaked := data["password"]
	require.False(t, leaked, "password hash never leaves the service")

	var u usermodel.UserModel
	require.NoError(t, db.Where("email = ?", "claire@example.org").First(&u).Error)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("s3cret-pass")))

	// duplicate email
	code, resp = testutil.DoJSON(t, app, "POST", "/api/a/users", map[string]any{
		"full_name": "Claire Bis",
		"email":     "claire@example.org",
		"role":      constants.RoleLecteur,
	}, tok)
	require.Equal(t, http.StatusConflict, code, "%v", resp)

	// unknown role
	code, resp = testutil.DoJSON(t, app, "POST", "/api/a/users", map[string]any{
		"full_name": "Quelqu'un",
		"email":     "q@example.org",
		"role":      "superviseur",
	}, tok)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, resp["errors"].(map[string]any), "role")
}

func TestUserListFilters(t *testing.T) {
	db := testutil.OpenTestDB(t)
	app := testutil.NewTestApp(t, db)
	tok := testutil.Token(t, 1, constants.RoleAdmin)

	testutil.CreateUser(t, db, constants.RoleLecteur, "Anne Lecteur")
	testutil.CreateUser(t, db, constants.RoleAveugle, "Bernard Patron")

	code, resp := testutil.DoJSON(t, app, "GET", "/api/a/users?role=lecteur", nil, tok)
	require.Equal(t, http.StatusOK, code)
	rows := resp["data"].(map[string]any)["users"].([]any)
	require.Len(t, rows, 1)
	require.Equal(t, "Anne Lecteur", rows[0].(map[string]any)["full_name"])

	code, resp = testutil.DoJSON(t, app, "GET", "/api/a/users?search=bernard", nil, tok)
	require.Equal(t, http.StatusOK, code)
	rows = resp["data"].(map[string]any)["users"].([]any)
	require.Len(t, rows, 1)

	code, _ = testutil.DoJSON(t, app, "GET", "/api/a/users?role=superviseur", nil, tok)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestUserPatchDeactivates(t *testing.T) {
	db := testutil.OpenTestDB(t)
	app := testutil.NewTestApp(t, db)
	tok := testutil.Token(t, 1, constants.RoleAdmin)

	id := testutil.CreateUser(t, db, constants.RoleLecteur, "Daniel Actif")

	code, resp := testutil.DoJSON(t, app, "PATCH", fmt.Sprintf("/api/a/users/%d", id),
		map[string]any{"is_active": false, "phone": "0102030405"}, tok)
	require.Equal(t, http.StatusOK, code, "%v", resp)

	var u usermodel.UserModel
	require.NoError(t, db.First(&u, id).Error)
	require.False(t, u.IsActive)
	require.Equal(t, "0102030405", *u.Phone)

	// phone can be cleared, full_name cannot
	code, _ = testutil.DoJSON(t, app, "PATCH", fmt.Sprintf("/api/a/users/%d", id),
		map[string]any{"phone": nil}, tok)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, db.First(&u, id).Error)
	require.Nil(t, u.Phone)

	code, resp = testutil.DoJSON(t, app, "PATCH", fmt.Sprintf("/api/a/users/%d", id),
		map[string]any{"full_name": nil}, tok)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, resp["errors"].(map[string]any), "full_name")
}

func TestUserDeleteGuardedByReferences(t *testing.T) {
	db := testutil.OpenTestDB(t)
	app := testutil.NewTestApp(t, db)
	tok := testutil.Token(t, 1, constants.RoleAdmin)

	patron := testutil.CreateUser(t, db, constants.RoleAveugle, "Émile Patron")
	ouvrage := testutil.CreateOuvrage(t, db, "Germinal", "Émile Zola")

	code, resp := testutil.DoJSON(t, app, "POST", "/api/a/orders", map[string]any{
		"aveugle_id":            patron,
		"ouvrage_id":            ouvrage,
		"request_received_date": "2026-03-01T00:00:00Z",
		"status_id":             testutil.StatusID(t, db, "recu"),
		"media_format_id":       testutil.MediaFormatID(t, db, "daisy"),
		"delivery_method":       "none",
	}, tok)
	require.Equal(t, http.StatusCreated, code, "%v", resp)

	code, resp = testutil.DoJSON(t, app, "DELETE", fmt.Sprintf("/api/a/users/%d", patron), nil, tok)
	require.Equal(t, http.StatusConflict, code)
	require.EqualValues(t, 1, resp["errors"].(map[string]any)["order_count"])

	unreferenced := testutil.CreateUser(t, db, constants.RoleLecteur, "Fanny Libre")
	code, _ = testutil.DoJSON(t, app, "DELETE", fmt.Sprintf("/api/a/users/%d", unreferenced), nil, tok)
	require.Equal(t, http.StatusOK, code)
}

// Staff referenced as the processor of an order or assignment are held by the
// guard too, not left to surface as a constraint failure.
func TestUserDeleteGuardedByProcessedWork(t *testing.T) {
	db := testutil.OpenTestDB(t)
	app := testutil.NewTestApp(t, db)
	tok := testutil.Token(t, 1, constants.RoleAdmin)

	patron := testutil.CreateUser(t, db, constants.RoleAveugle, "Henri Patron")
	ouvrage := testutil.CreateOuvrage(t, db, "Bel-Ami", "Guy de Maupassant")
	intake := testutil.CreateUser(t, db, constants.RoleBenevole, "Irène Accueil")
	production := testutil.CreateUser(t, db, constants.RoleBenevole, "Jacques Studio")

	code, resp := testutil.DoJSON(t, app, "POST", "/api/a/orders", map[string]any{
		"aveugle_id":            patron,
		"ouvrage_id":            ouvrage,
		"request_received_date": "2026-03-01T00:00:00Z",
		"status_id":             testutil.StatusID(t, db, "recu"),
		"media_format_id":       testutil.MediaFormatID(t, db, "mp3"),
		"delivery_method":       "mail",
		"processed_by_id":       intake,
	}, tok)
	require.Equal(t, http.StatusCreated, code, "%v", resp)
	orderID := uint(resp["data"].(map[string]any)["id"].(float64))

	code, resp = testutil.DoJSON(t, app, "POST", "/api/a/assignments", map[string]any{
		"order_id":        orderID,
		"ouvrage_id":      ouvrage,
		"processed_by_id": production,
	}, tok)
	require.Equal(t, http.StatusCreated, code, "%v", resp)

	code, resp = testutil.DoJSON(t, app, "DELETE", fmt.Sprintf("/api/a/users/%d", intake), nil, tok)
	require.Equal(t, http.StatusConflict, code)
	require.EqualValues(t, 1, resp["errors"].(map[string]any)["processed_order_count"])

	code, resp = testutil.DoJSON(t, app, "DELETE", fmt.Sprintf("/api/a/users/%d", production), nil, tok)
	require.Equal(t, http.StatusConflict, code)
	require.EqualValues(t, 1, resp["errors"].(map[string]any)["processed_assignment_count"])

	// once the order no longer points at them, the intake volunteer deletes
	code, resp = testutil.DoJSON(t, app, "PATCH", fmt.Sprintf("/api/a/orders/%d", orderID),
		map[string]any{"processed_by_id": nil}, tok)
	require.Equal(t, http.StatusOK, code, "%v", resp)
	code, _ = testutil.DoJSON(t, app, "DELETE", fmt.Sprintf("/api/a/users/%d", intake), nil, tok)
	require.Equal(t, http.StatusOK, code)
}
