// Package masterdata wires the generic data-flow kit to the concrete ERP
// resources: master data, user administration, dye recipes, kartela
// catalogs, and planning. Each resource declares its paths, cache keys,
// entity schema, and mutations exactly once; pages consume the declarations
// instead of re-typing the mutate-invalidate-notify dance.
package masterdata

import (
	"context"
	"net/http"

	"github.com/dokumatek/erpkit/client"
	"github.com/dokumatek/erpkit/form"
	"github.com/dokumatek/erpkit/mutation"
	"github.com/dokumatek/erpkit/notify"
	"github.com/dokumatek/erpkit/query"
	"github.com/dokumatek/erpkit/view"
)

// Deps are the injected collaborators every resource operates through.
type Deps struct {
	Client   *client.Client
	Cache    *query.Cache
	Notifier notify.Notifier
}

// Resource describes one REST entity collection under
// /api/<module>/<name>. The detail key extends the list key with the
// entity id, so invalidating the list prefix refreshes detail entries too.
type Resource struct {
	deps   Deps
	module string
	name   string
}

// NewResource declares a resource collection.
func NewResource(deps Deps, module, name string) Resource {
	return Resource{deps: deps, module: module, name: name}
}

// Path returns the collection path.
func (r Resource) Path() string {
	return "/api/" + r.module + "/" + r.name
}

// DetailPath returns the path of a single entity.
func (r Resource) DetailPath(id string) string {
	return r.Path() + "/" + id
}

// ListKey is the cache key of the collection list.
func (r Resource) ListKey() query.Key {
	return query.Key{r.Path()}
}

// DetailKey is the cache key of a single entity.
func (r Resource) DetailKey(id string) query.Key {
	return query.Key{r.Path(), id}
}

// SubscribeList opens a list subscription for the collection.
func (r Resource) SubscribeList() (*query.Subscription, error) {
	return r.deps.Cache.Subscribe(r.ListKey(), r.listFetcher())
}

// SubscribeDetail opens a subscription for one entity.
func (r Resource) SubscribeDetail(id string) (*query.Subscription, error) {
	return r.deps.Cache.Subscribe(r.DetailKey(id), r.detailFetcher(id))
}

// List reads the collection through the cache without subscribing, for
// lookup tables resolved once per render.
func (r Resource) List(ctx context.Context) ([]view.Record, error) {
	data, err := query.Fetch[any](ctx, r.deps.Cache, r.ListKey(), r.listFetcher())
	if err != nil {
		return nil, err
	}
	return view.Rows(data), nil
}

func (r Resource) listFetcher() query.Fetcher {
	return func(ctx context.Context) (any, error) {
		var out any
		if err := r.deps.Client.JSON(ctx, http.MethodGet, r.Path(), nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func (r Resource) detailFetcher(id string) query.Fetcher {
	return func(ctx context.Context) (any, error) {
		var out any
		if err := r.deps.Client.JSON(ctx, http.MethodGet, r.DetailPath(id), nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
}

// UpdateInput addresses a partial or full update of one entity.
type UpdateInput struct {
	ID     string
	Values form.Values
}

// Create returns the POST mutation for the collection. Success invalidates
// the list prefix, which also covers cached detail entries.
func (r Resource) Create() *mutation.Mutation[form.Values, view.Record] {
	desc := mutation.Descriptor[form.Values, view.Record]{
		Name: "create " + r.name,
		Execute: func(ctx context.Context, input form.Values) (view.Record, error) {
			return client.JSONAs[view.Record](ctx, r.deps.Client, http.MethodPost, r.Path(), input)
		},
		Invalidates:    []query.Key{r.ListKey()},
		SuccessTitle:   "Saved",
		SuccessMessage: "The record was created.",
		ErrorTitle:     "Could not create record",
	}
	return mutation.New(desc, r.deps.Cache, r.deps.Notifier)
}

// Update returns the PATCH mutation for partial updates.
func (r Resource) Update() *mutation.Mutation[UpdateInput, view.Record] {
	return r.writeMutation(http.MethodPatch, "update "+r.name)
}

// Replace returns the PUT mutation for full replacement.
func (r Resource) Replace() *mutation.Mutation[UpdateInput, view.Record] {
	return r.writeMutation(http.MethodPut, "replace "+r.name)
}

func (r Resource) writeMutation(method, name string) *mutation.Mutation[UpdateInput, view.Record] {
	desc := mutation.Descriptor[UpdateInput, view.Record]{
		Name: name,
		Execute: func(ctx context.Context, input UpdateInput) (view.Record, error) {
			return client.JSONAs[view.Record](ctx, r.deps.Client, method, r.DetailPath(input.ID), input.Values)
		},
		Invalidates:    []query.Key{r.ListKey()},
		SuccessTitle:   "Saved",
		SuccessMessage: "The record was updated.",
		ErrorTitle:     "Could not save record",
	}
	return mutation.New(desc, r.deps.Cache, r.deps.Notifier)
}

// Delete returns the DELETE mutation. The confirm-before-destroy contract
// lives with the view (see view.ConfirmedDelete); the mutation itself only
// performs the write and the bookkeeping after it.
func (r Resource) Delete() *mutation.Mutation[string, struct{}] {
	desc := mutation.Descriptor[string, struct{}]{
		Name: "delete " + r.name,
		Execute: func(ctx context.Context, id string) (struct{}, error) {
			err := r.deps.Client.JSON(ctx, http.MethodDelete, r.DetailPath(id), nil, nil)
			return struct{}{}, err
		},
		Invalidates:    []query.Key{r.ListKey()},
		SuccessTitle:   "Deleted",
		SuccessMessage: "The record was removed.",
		ErrorTitle:     "Could not delete record",
	}
	return mutation.New(desc, r.deps.Cache, r.deps.Notifier)
}
