package testsupport

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dokumatek/erpkit/client"
)

func TestFakeERP_RESTRoundTrip(t *testing.T) {
	server := NewFakeERP()
	defer server.Close()

	api, err := client.New(server.URL())
	if err != nil {
		t.Fatalf("client.New() failed: %v", err)
	}
	ctx := context.Background()
	path := "/api/master/departments"

	var created map[string]any
	if err := api.JSON(ctx, http.MethodPost, path, map[string]any{"name": "Dokuma"}, &created); err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("POST did not assign an id: %v", created)
	}

	var listed []map[string]any
	if err := api.JSON(ctx, http.MethodGet, path, nil, &listed); err != nil {
		t.Fatalf("GET list failed: %v", err)
	}
	if len(listed) != 1 || listed[0]["name"] != "Dokuma" {
		t.Errorf("list = %v", listed)
	}

	var patched map[string]any
	if err := api.JSON(ctx, http.MethodPatch, path+"/"+id, map[string]any{"name": "Boyahane"}, &patched); err != nil {
		t.Fatalf("PATCH failed: %v", err)
	}
	if patched["name"] != "Boyahane" || patched["id"] != id {
		t.Errorf("PATCH result = %v", patched)
	}

	var replaced map[string]any
	if err := api.JSON(ctx, http.MethodPut, path+"/"+id, map[string]any{"name": "Planlama"}, &replaced); err != nil {
		t.Fatalf("PUT failed: %v", err)
	}
	if replaced["name"] != "Planlama" {
		t.Errorf("PUT result = %v", replaced)
	}

	if err := api.JSON(ctx, http.MethodDelete, path+"/"+id, nil, nil); err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	if rows := server.Rows(path); len(rows) != 0 {
		t.Errorf("table not empty after delete: %v", rows)
	}
}

func TestFakeERP_DetailFetchAndNotFound(t *testing.T) {
	server := NewFakeERP()
	defer server.Close()

	api, err := client.New(server.URL())
	if err != nil {
		t.Fatalf("client.New() failed: %v", err)
	}
	ctx := context.Background()
	path := "/api/master/users"
	server.Seed(path, map[string]any{"id": "7", "username": "ayse"})

	var row map[string]any
	if err := api.JSON(ctx, http.MethodGet, path+"/7", nil, &row); err != nil {
		t.Fatalf("GET detail failed: %v", err)
	}
	if row["username"] != "ayse" {
		t.Errorf("detail = %v", row)
	}

	err = api.JSON(ctx, http.MethodGet, path+"/99", nil, &row)
	var httpErr *client.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestFakeERP_FailNextIsOneShot(t *testing.T) {
	server := NewFakeERP()
	defer server.Close()

	api, err := client.New(server.URL())
	if err != nil {
		t.Fatalf("client.New() failed: %v", err)
	}
	ctx := context.Background()
	path := "/api/dyehouse/recipes"

	server.FailNext(http.MethodPost, path, http.StatusConflict, "duplicate recipe")

	err = api.JSON(ctx, http.MethodPost, path, map[string]any{"chemical": "soda"}, nil)
	var httpErr *client.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *client.HTTPError, got %v", err)
	}
	if httpErr.Status != http.StatusConflict || httpErr.Message != "duplicate recipe" {
		t.Errorf("planned failure = %+v", httpErr)
	}

	if err := api.JSON(ctx, http.MethodPost, path, map[string]any{"chemical": "soda"}, nil); err != nil {
		t.Errorf("trap did not clear after firing: %v", err)
	}
}

func TestRecordingNotifier(t *testing.T) {
	n := &RecordingNotifier{}
	if _, ok := n.Last(); ok {
		t.Errorf("Last() reported an event on an empty notifier")
	}
}
